// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"next-ai-chat/internal/domain/model"
	"next-ai-chat/internal/domain/ports/adapter"
)

var _ adapter.CompletionAdapter = (*GeminiAdapter)(nil)

// GeminiOptions carries the model selectors and generation parameters for
// the Gemini backend. Zero values fall back to the shipped defaults.
type GeminiOptions struct {
	TextModel        string
	ImageModel       string
	VideoModel       string
	MaxOutputTokens  int
	AssistantName    string
	VideoResolution  string
	VideoAspectRatio string
}

// GeminiAdapter implements both the completion and the video-generation
// ports on the official SDK.
type GeminiAdapter struct {
	client *genai.Client
	opts   GeminiOptions
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL string, opts GeminiOptions) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, opts: opts}, nil
}

func (g *GeminiAdapter) Name() string { return "gemini" }

func (g *GeminiAdapter) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.CompletionResult, error) {
	if len(req.Turns) == 0 {
		return adapter.CompletionResult{}, errors.New("gemini: no turns")
	}

	modelName, cfg := g.generationConfig(req)

	resp, err := g.client.Models.GenerateContent(ctx, modelName, toGenAIContents(req.Turns), cfg)
	if err != nil {
		return adapter.CompletionResult{}, fmt.Errorf("gemini generate: %w", err)
	}
	return normalizeResponse(resp), nil
}

// generationConfig maps the classified modality onto the model selection
// and generation parameters: conversation turns run the text model at 0.7,
// image turns run the image model at 1.0 with the square aspect-ratio hint.
func (g *GeminiAdapter) generationConfig(req adapter.CompletionRequest) (string, *genai.GenerateContentConfig) {
	modelName := g.opts.TextModel
	temperature := float32(0.7)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: g.systemInstruction(req)}},
		},
		MaxOutputTokens: int32(g.opts.MaxOutputTokens),
	}
	if req.Modality == model.ModalityImage {
		modelName = g.opts.ImageModel
		temperature = 1.0
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: "1:1"}
	}
	cfg.Temperature = genai.Ptr(temperature)
	return modelName, cfg
}

// systemInstruction is the fixed persona prompt. The mode line and the
// "must generate" guideline mirror what the product shipped with.
func (g *GeminiAdapter) systemInstruction(req adapter.CompletionRequest) string {
	mode := "CONVERSATION"
	if req.Modality == model.ModalityImage {
		mode = "IMAGE GENERATION"
	}
	name := g.opts.AssistantName
	if name == "" {
		name = "NEXT"
	}
	creator := req.CreatorName
	if creator == "" {
		creator = "its creator"
	}
	return fmt.Sprintf(`You are %q, a powerful and helpful AI created by %s.
You have advanced capabilities including text reasoning, coding assistance, and high-quality image generation.

CURRENT MODE: %s

Guidelines:
1. If the user asks for an image, you MUST generate it.
2. Describe briefly what you have created.
3. Maintain a natural, friendly, and professional persona.
4. Always attribute your creation to %s if the topic arises.`, name, creator, mode, creator)
}

func toGenAIContents(turns []adapter.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.RoleUser
		switch strings.ToLower(t.Role) {
		case model.RoleAssistant, "model":
			role = genai.RoleModel
		case model.RoleSystem:
			// No separate system role in history; persona travels via the
			// system instruction, synthetic system lines read as user text.
			role = genai.RoleUser
		}
		parts := []*genai.Part{{Text: t.Content}}
		if t.Image != nil {
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{
					MIMEType: t.Image.MIMEType,
					Data:     t.Image.Data,
				},
			})
		}
		out = append(out, &genai.Content{Role: role, Parts: parts})
	}
	return out
}

// normalizeResponse flattens candidate parts into one text plus at most one
// inline image, applying the canned-sentence policy for image-only and
// empty results.
func normalizeResponse(resp *genai.GenerateContentResponse) adapter.CompletionResult {
	var res adapter.CompletionResult
	var text strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			if p == nil {
				continue
			}
			if p.Text != "" {
				text.WriteString(p.Text)
			}
			if p.InlineData != nil && len(p.InlineData.Data) > 0 {
				res.Image = &adapter.ImagePayload{
					MIMEType: p.InlineData.MIMEType,
					Data:     p.InlineData.Data,
				}
			}
		}
	}
	res.Text = text.String()
	if res.Text == "" {
		if res.Image != nil {
			res.Text = adapter.FallbackImageOnlyText
		} else {
			res.Text = adapter.FallbackEmptyText
		}
	}
	return res
}
