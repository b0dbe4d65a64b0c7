// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // asset/profile key TTL
}

type PostgresConfig struct {
	URL string `yaml:"url"`
}

type StorageConfig struct {
	Driver   string         `yaml:"driver"` // redis | postgres | memory
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type AIConfig struct {
	Provider        string `yaml:"provider"` // gemini | openai | noop
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	OpenAIKey       string `yaml:"openai_key"`
	TextModel       string `yaml:"text_model"`
	ImageModel      string `yaml:"image_model"`
	VideoModel      string `yaml:"video_model"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	HistoryWindow   int    `yaml:"history_window"` // turns sent per completion
	TokenBudget     int    `yaml:"token_budget"`   // prompt budget for the OpenAI path
}

type VideoConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxAttempts  int           `yaml:"max_attempts"`
	Resolution   string        `yaml:"resolution"`
	AspectRatio  string        `yaml:"aspect_ratio"`
	Workers      int           `yaml:"workers"`
}

type AuthConfig struct {
	CookieSecret string        `yaml:"cookie_secret"`
	CookieTTL    time.Duration `yaml:"cookie_ttl"`
	Secure       bool          `yaml:"secure"`
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"` // optional; 16/24/32 bytes enables at-rest encryption
}

type RetentionConfig struct {
	Days          int           `yaml:"days"` // 0 disables pruning
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type PersonaConfig struct {
	AssistantName  string `yaml:"assistant_name"`
	DefaultCreator string `yaml:"default_creator"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Storage   StorageConfig   `yaml:"storage"`
	AI        AIConfig        `yaml:"ai"`
	Video     VideoConfig     `yaml:"video"`
	Auth      AuthConfig      `yaml:"auth"`
	Security  SecurityConfig  `yaml:"security"`
	Retention RetentionConfig `yaml:"retention"`
	Persona   PersonaConfig   `yaml:"persona"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.ApplyDefaults()

	// Minimal validation
	switch cfg.Storage.Driver {
	case "redis":
		if cfg.Storage.Redis.URL == "" {
			return nil, errors.New("storage.redis.url is required")
		}
	case "postgres":
		if cfg.Storage.Postgres.URL == "" {
			return nil, errors.New("storage.postgres.url is required")
		}
		if cfg.Storage.Redis.URL == "" {
			return nil, errors.New("storage.redis.url is required (profile and asset keys)")
		}
	case "memory":
		if !dev {
			return nil, errors.New("storage.driver=memory is dev-only")
		}
	default:
		return nil, fmt.Errorf("unknown storage.driver %q", cfg.Storage.Driver)
	}
	if cfg.AI.Provider == "noop" && !dev {
		return nil, errors.New("ai.provider=noop is dev-only")
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields. Model names and generation parameters
// default to the values the product shipped with.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "redis"
	}
	if cfg.Storage.Redis.TTL <= 0 {
		cfg.Storage.Redis.TTL = 24 * time.Hour
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "gemini"
	}
	if cfg.AI.TextModel == "" {
		cfg.AI.TextModel = "gemini-3-pro-preview"
	}
	if cfg.AI.ImageModel == "" {
		cfg.AI.ImageModel = "gemini-2.5-flash-image"
	}
	if cfg.AI.VideoModel == "" {
		cfg.AI.VideoModel = "veo-3.1-fast-generate-preview"
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 2048
	}
	if cfg.AI.HistoryWindow <= 0 {
		cfg.AI.HistoryWindow = 20
	}
	if cfg.AI.TokenBudget <= 0 {
		cfg.AI.TokenBudget = 8000
	}
	if cfg.Video.PollInterval <= 0 {
		cfg.Video.PollInterval = 5 * time.Second
	}
	if cfg.Video.MaxAttempts <= 0 {
		cfg.Video.MaxAttempts = 120 // 10 minutes at the 5s cadence
	}
	if cfg.Video.Resolution == "" {
		cfg.Video.Resolution = "720p"
	}
	if cfg.Video.AspectRatio == "" {
		cfg.Video.AspectRatio = "16:9"
	}
	if cfg.Video.Workers <= 0 {
		cfg.Video.Workers = 4
	}
	if cfg.Auth.CookieTTL <= 0 {
		cfg.Auth.CookieTTL = 30 * 24 * time.Hour
	}
	if cfg.Retention.SweepInterval <= 0 {
		cfg.Retention.SweepInterval = time.Hour
	}
	if cfg.Persona.AssistantName == "" {
		cfg.Persona.AssistantName = "NEXT"
	}
	if cfg.Persona.DefaultCreator == "" {
		cfg.Persona.DefaultCreator = "Idhant"
	}
}
