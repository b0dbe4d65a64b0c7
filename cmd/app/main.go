// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"next-ai-chat/internal/config"
	"next-ai-chat/internal/domain/ports/adapter"
	"next-ai-chat/internal/domain/ports/repository"
	aiAdapters "next-ai-chat/internal/infra/adapters/ai"
	pg "next-ai-chat/internal/infra/db/postgres"
	"next-ai-chat/internal/infra/kv"
	"next-ai-chat/internal/infra/logging"
	"next-ai-chat/internal/infra/memory"
	"next-ai-chat/internal/infra/metrics"
	red "next-ai-chat/internal/infra/redis"
	"next-ai-chat/internal/infra/sched"
	"next-ai-chat/internal/infra/security"
	"next-ai-chat/internal/infra/web"
	"next-ai-chat/internal/infra/worker"
	"next-ai-chat/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (memory storage, noop AI allowed)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Runtime.Dev {
		log.Printf("[DEV MODE] Enabled")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	// ---- Encryption (optional) ----
	var encSvc *security.EncryptionService
	if cfg.Security.EncryptionKey != "" {
		encSvc, err = security.NewEncryptionService(cfg.Security.EncryptionKey)
		if err != nil {
			log.Fatalf("encryption: %v", err)
		}
	} else {
		log.Printf("WARNING: security.encryption_key not set; transcripts are stored in plaintext")
	}

	// ---- Storage ----
	var (
		sessionRepo repository.SessionRepository
		kvStore     repository.KVStore
		limiter     web.Limiter
	)
	switch cfg.Storage.Driver {
	case "redis":
		redisClient, err := red.NewClient(ctx, &cfg.Storage.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		sessionRepo = red.NewSessionRepo(redisClient, encSvc)
		kvStore = red.NewKVStore(redisClient)
		limiter = red.NewRateLimiter(redisClient)

	case "postgres":
		pool, err := pg.Connect(ctx, cfg.Storage.Postgres.URL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		if err := pg.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("postgres schema: %v", err)
		}
		redisClient, err := red.NewClient(ctx, &cfg.Storage.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		sessionRepo = pg.NewSessionRepo(pool, encSvc)
		kvStore = red.NewKVStore(redisClient)
		limiter = red.NewRateLimiter(redisClient)

	case "memory":
		sessionRepo = memory.NewSessionRepo()
		kvStore = memory.NewKVStore()
		// no limiter in dev

	default:
		log.Fatalf("unknown storage driver %q", cfg.Storage.Driver)
	}

	profileRepo := kv.NewProfileRepo(kvStore)
	assetStore := kv.NewAssetStore(kvStore, cfg.Storage.Redis.TTL)

	// ---- AI adapters ----
	var (
		completion adapter.CompletionAdapter
		videoGen   adapter.VideoGenerator
		gate       adapter.CredentialGate
	)
	geminiOpts := aiAdapters.GeminiOptions{
		TextModel:        cfg.AI.TextModel,
		ImageModel:       cfg.AI.ImageModel,
		VideoModel:       cfg.AI.VideoModel,
		MaxOutputTokens:  cfg.AI.MaxOutputTokens,
		AssistantName:    cfg.Persona.AssistantName,
		VideoResolution:  cfg.Video.Resolution,
		VideoAspectRatio: cfg.Video.AspectRatio,
	}
	switch cfg.AI.Provider {
	case "gemini":
		gemini, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, geminiOpts)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		completion = gemini
		videoGen = gemini
		gate = aiAdapters.NewConfigCredentialGate(cfg.AI.GeminiKey)
		log.Printf("AI provider: Gemini text=%s image=%s video=%s", cfg.AI.TextModel, cfg.AI.ImageModel, cfg.AI.VideoModel)

	case "openai":
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.TextModel, cfg.AI.TokenBudget)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		completion = oa
		// Video still goes through Gemini when a key is present; the gate
		// blocks video turns otherwise.
		gate = aiAdapters.NewConfigCredentialGate(cfg.AI.GeminiKey)
		if cfg.AI.GeminiKey != "" {
			gemini, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, geminiOpts)
			if err != nil {
				log.Fatalf("gemini adapter: %v", err)
			}
			videoGen = gemini
		} else {
			videoGen = aiAdapters.NewNoopAI()
		}
		log.Printf("AI provider: OpenAI model=%s", cfg.AI.TextModel)

	case "noop":
		noop := aiAdapters.NewNoopAI()
		completion = noop
		videoGen = noop
		gate = aiAdapters.NewConfigCredentialGate("dev")
		log.Printf("AI provider: noop")

	default:
		log.Fatalf("unknown ai provider %q", cfg.AI.Provider)
	}

	// ---- Video workers ----
	pool := worker.NewPool(cfg.Video.Workers, logger)
	pool.Start(ctx)
	defer pool.Stop()
	runner := worker.NewVideoRunner(ctx, videoGen, pool, cfg.Video.PollInterval, cfg.Video.MaxAttempts, logger)

	// ---- Use cases ----
	sessionUC := usecase.NewSessionUseCase(sessionRepo, logger)
	profileUC := usecase.NewProfileUseCase(profileRepo, cfg.Persona.DefaultCreator)
	chatUC := usecase.NewChatUseCase(sessionRepo, sessionUC, profileUC, completion, gate, runner, assetStore, cfg.AI.HistoryWindow, logger)

	// ---- Retention worker ----
	retention := sched.NewRetentionWorker(cfg.Retention.SweepInterval, cfg.Retention.Days, sessionRepo, logger)
	go func() { _ = retention.Run(ctx) }()

	// ---- HTTP server ----
	cookieSecret := cfg.Auth.CookieSecret
	if cookieSecret == "" {
		log.Printf("WARNING: auth.cookie_secret not set; falling back to dev secret (INSECURE)")
		cookieSecret = "dev-secret-change-me"
	}
	auth := web.NewAuthManager(cookieSecret, cfg.Auth.Secure, cfg.Auth.CookieTTL)

	metrics.MustRegister()
	srv := web.NewServer(chatUC, sessionUC, profileUC, assetStore, auth, limiter, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: srv.Router()}
	go func() {
		log.Printf("http listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server error: %v", err)
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Println("shutdown requested")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	cancel()
}
