// File: internal/infra/adapters/ai/openai_adapter.go
package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"next-ai-chat/internal/domain/model"
	"next-ai-chat/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CompletionAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter is the text-only fallback provider. Image and video
// modalities stay on Gemini; this adapter serves plain conversation turns
// when no Gemini key is configured.
type OpenAIAdapter struct {
	client      openai.Client
	model       string
	tokenBudget int
	enc         *tiktoken.Tiktoken
}

func NewOpenAIAdapter(apiKey, chatModel string, tokenBudget int) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	enc, err := tiktoken.EncodingForModel(chatModel)
	if err != nil {
		// Unknown model names count with the common base encoding.
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("tiktoken: %w", err)
		}
	}
	return &OpenAIAdapter{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       chatModel,
		tokenBudget: tokenBudget,
		enc:         enc,
	}, nil
}

func (o *OpenAIAdapter) Name() string { return "openai" }

func (o *OpenAIAdapter) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.CompletionResult, error) {
	if req.Modality == model.ModalityImage {
		return adapter.CompletionResult{}, errors.New("openai adapter: image generation not supported")
	}
	if len(req.Turns) == 0 {
		return adapter.CompletionResult{}, errors.New("openai adapter: no turns")
	}

	sys := fmt.Sprintf("You are a helpful assistant created by %s.", orCreator(req.CreatorName))
	msgs := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(sys)}
	for _, t := range o.trimToBudget(req.Turns) {
		switch t.Role {
		case model.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(t.Content))
		case model.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(t.Content))
		default:
			msgs = append(msgs, openai.UserMessage(t.Content))
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    msgs,
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return adapter.CompletionResult{}, fmt.Errorf("openai chat: %w", err)
	}

	text := ""
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}
	if text == "" {
		text = adapter.FallbackEmptyText
	}
	return adapter.CompletionResult{Text: text}, nil
}

// trimToBudget drops the oldest turns until the prompt fits the token
// budget. The final user turn is always kept.
func (o *OpenAIAdapter) trimToBudget(turns []adapter.Turn) []adapter.Turn {
	if o.tokenBudget <= 0 {
		return turns
	}
	total := 0
	start := len(turns)
	for i := len(turns) - 1; i >= 0; i-- {
		total += len(o.enc.Encode(turns[i].Content, nil, nil))
		if total > o.tokenBudget && start < len(turns) {
			break
		}
		start = i
	}
	return turns[start:]
}

func orCreator(name string) string {
	if name == "" {
		return "its creator"
	}
	return name
}
