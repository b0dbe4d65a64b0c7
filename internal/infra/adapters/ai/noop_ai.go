// File: internal/infra/adapters/ai/noop_ai.go
package ai

import (
	"context"

	"next-ai-chat/internal/domain/ports/adapter"
)

var (
	_ adapter.CompletionAdapter = (*NoopAI)(nil)
	_ adapter.VideoGenerator    = (*NoopAI)(nil)
)

// NoopAI is an inert backend for dev mode and wiring tests: echoes the last
// turn, completes video jobs instantly with a placeholder clip.
type NoopAI struct{}

func NewNoopAI() *NoopAI { return &NoopAI{} }

func (n *NoopAI) Name() string { return "noop" }

func (n *NoopAI) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.CompletionResult, error) {
	if len(req.Turns) == 0 {
		return adapter.CompletionResult{Text: adapter.FallbackEmptyText}, nil
	}
	last := req.Turns[len(req.Turns)-1]
	return adapter.CompletionResult{Text: "echo: " + last.Content}, nil
}

func (n *NoopAI) SubmitVideoJob(ctx context.Context, prompt string) (*adapter.VideoOperation, error) {
	return &adapter.VideoOperation{Done: true}, nil
}

func (n *NoopAI) PollVideoJob(ctx context.Context, op *adapter.VideoOperation) (*adapter.VideoOperation, error) {
	return op, nil
}

func (n *NoopAI) DownloadVideoAsset(ctx context.Context, op *adapter.VideoOperation) ([]byte, string, error) {
	return []byte("noop"), "video/mp4", nil
}
