package repository

import (
	"context"
	"time"

	"next-ai-chat/internal/domain/model"
)

// SessionRepository persists the per-client session list. Implementations
// must preserve session order (most recently updated first) and message
// order within a session, and must treat malformed stored state as absent
// rather than returning an error.
type SessionRepository interface {
	// List returns all sessions for a client, most recently updated first.
	List(ctx context.Context, clientID string) ([]*model.ChatSession, error)

	// Save upserts a session (metadata and messages).
	Save(ctx context.Context, clientID string, s *model.ChatSession) error

	// AppendMessage appends to an existing session and bumps its UpdatedAt.
	AppendMessage(ctx context.Context, clientID, sessionID string, m model.Message) error

	FindByID(ctx context.Context, clientID, sessionID string) (*model.ChatSession, error)
	Delete(ctx context.Context, clientID, sessionID string) error

	// DeleteAll removes every session for the client and the persisted copy.
	DeleteAll(ctx context.Context, clientID string) error

	// CurrentSession returns the last-active session id, or "" when none.
	CurrentSession(ctx context.Context, clientID string) (string, error)
	SetCurrentSession(ctx context.Context, clientID, sessionID string) error

	// PruneIdle deletes sessions not updated since the cutoff, across all
	// clients, returning how many were removed.
	PruneIdle(ctx context.Context, olderThan time.Time) (int64, error)
}
