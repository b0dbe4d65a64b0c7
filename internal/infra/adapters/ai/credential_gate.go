// File: internal/infra/adapters/ai/credential_gate.go
package ai

import (
	"context"

	"next-ai-chat/internal/domain"
	"next-ai-chat/internal/domain/ports/adapter"
)

var _ adapter.CredentialGate = (*ConfigCredentialGate)(nil)

// ConfigCredentialGate answers the credential check from static
// configuration: video generation needs a Gemini key.
type ConfigCredentialGate struct {
	configured bool
}

func NewConfigCredentialGate(geminiKey string) *ConfigCredentialGate {
	return &ConfigCredentialGate{configured: geminiKey != ""}
}

func (g *ConfigCredentialGate) Check(ctx context.Context) error {
	if !g.configured {
		return domain.ErrCredentialRequired
	}
	return nil
}
