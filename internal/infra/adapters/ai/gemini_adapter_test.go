// File: internal/infra/adapters/ai/gemini_adapter_test.go
package ai

import (
	"strings"
	"testing"

	"google.golang.org/genai"

	"next-ai-chat/internal/domain/model"
	"next-ai-chat/internal/domain/ports/adapter"
)

func TestSystemInstruction(t *testing.T) {
	g := &GeminiAdapter{opts: GeminiOptions{AssistantName: "NEXT"}}

	text := g.systemInstruction(adapter.CompletionRequest{Modality: model.ModalityText, CreatorName: "Idhant"})
	if !strings.Contains(text, "CURRENT MODE: CONVERSATION") {
		t.Fatalf("missing conversation mode line:\n%s", text)
	}
	if !strings.Contains(text, "created by Idhant") {
		t.Fatalf("missing creator attribution:\n%s", text)
	}

	text = g.systemInstruction(adapter.CompletionRequest{Modality: model.ModalityImage})
	if !strings.Contains(text, "CURRENT MODE: IMAGE GENERATION") {
		t.Fatalf("missing image mode line:\n%s", text)
	}
	if !strings.Contains(text, "its creator") {
		t.Fatalf("blank creator should fall back:\n%s", text)
	}
}

func TestGenerationConfigPerModality(t *testing.T) {
	g := &GeminiAdapter{opts: GeminiOptions{
		TextModel:       "text-model",
		ImageModel:      "image-model",
		MaxOutputTokens: 256,
	}}

	name, cfg := g.generationConfig(adapter.CompletionRequest{Modality: model.ModalityText})
	if name != "text-model" {
		t.Fatalf("text model = %q", name)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.7 {
		t.Fatalf("text temperature = %v", cfg.Temperature)
	}
	if cfg.ImageConfig != nil {
		t.Fatalf("text turns must not carry an image config: %+v", cfg.ImageConfig)
	}
	if cfg.MaxOutputTokens != 256 {
		t.Fatalf("max output tokens = %d", cfg.MaxOutputTokens)
	}

	name, cfg = g.generationConfig(adapter.CompletionRequest{Modality: model.ModalityImage})
	if name != "image-model" {
		t.Fatalf("image model = %q", name)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 1.0 {
		t.Fatalf("image temperature = %v", cfg.Temperature)
	}
	if cfg.ImageConfig == nil || cfg.ImageConfig.AspectRatio != "1:1" {
		t.Fatalf("image config = %+v", cfg.ImageConfig)
	}
}

func TestToGenAIContentsRoles(t *testing.T) {
	turns := []adapter.Turn{
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: "hello"},
		{Role: model.RoleSystem, Content: "notice"},
	}
	contents := toGenAIContents(turns)
	if len(contents) != 3 {
		t.Fatalf("len = %d", len(contents))
	}
	if contents[0].Role != genai.RoleUser {
		t.Fatalf("user role = %v", contents[0].Role)
	}
	if contents[1].Role != genai.RoleModel {
		t.Fatalf("assistant role = %v", contents[1].Role)
	}
	// System lines have no native role in history.
	if contents[2].Role != genai.RoleUser {
		t.Fatalf("system role = %v", contents[2].Role)
	}
}

func TestToGenAIContentsInlineImage(t *testing.T) {
	turns := []adapter.Turn{{
		Role:    model.RoleUser,
		Content: "what is this",
		Image:   &adapter.ImagePayload{MIMEType: "image/png", Data: []byte{1, 2}},
	}}
	contents := toGenAIContents(turns)
	if len(contents[0].Parts) != 2 {
		t.Fatalf("parts = %d, want text+image", len(contents[0].Parts))
	}
	blob := contents[0].Parts[1].InlineData
	if blob == nil || blob.MIMEType != "image/png" || len(blob.Data) != 2 {
		t.Fatalf("blob = %+v", blob)
	}
}

func TestNormalizeResponse(t *testing.T) {
	mk := func(parts ...*genai.Part) *genai.GenerateContentResponse {
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
		}
	}

	res := normalizeResponse(mk(&genai.Part{Text: "hello "}, &genai.Part{Text: "world"}))
	if res.Text != "hello world" || res.Image != nil {
		t.Fatalf("res = %+v", res)
	}

	res = normalizeResponse(mk(&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{1}}}))
	if res.Text != adapter.FallbackImageOnlyText {
		t.Fatalf("image-only text = %q", res.Text)
	}
	if res.Image == nil || res.Image.MIMEType != "image/png" {
		t.Fatalf("image = %+v", res.Image)
	}

	res = normalizeResponse(mk())
	if res.Text != adapter.FallbackEmptyText {
		t.Fatalf("empty text = %q", res.Text)
	}

	res = normalizeResponse(nil)
	if res.Text != adapter.FallbackEmptyText {
		t.Fatalf("nil response text = %q", res.Text)
	}
}
