// File: internal/usecase/session_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"next-ai-chat/internal/domain/model"
	"next-ai-chat/internal/domain/ports/repository"
	"next-ai-chat/internal/infra/metrics"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

type SessionUseCase interface {
	Create(ctx context.Context, clientID, firstMessageText string) (*model.ChatSession, error)
	List(ctx context.Context, clientID string) ([]*model.ChatSession, string, error)
	Get(ctx context.Context, clientID, sessionID string) (*model.ChatSession, error)
	Select(ctx context.Context, clientID, sessionID string) error
	Delete(ctx context.Context, clientID, sessionID string) error
	ClearAll(ctx context.Context, clientID string) error
}

type sessionUC struct {
	sessions repository.SessionRepository
	log      *zerolog.Logger
}

func NewSessionUseCase(sessions repository.SessionRepository, log *zerolog.Logger) *sessionUC {
	l := log.With().Str("component", "SessionUC").Logger()
	return &sessionUC{sessions: sessions, log: &l}
}

func (u *sessionUC) Create(ctx context.Context, clientID, firstMessageText string) (*model.ChatSession, error) {
	// ULIDs sort by creation time, which keeps stored session ids stable to
	// reason about; messages use UUIDs (see chat_uc).
	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	s := model.NewChatSession(id, firstMessageText)
	if err := u.sessions.Save(ctx, clientID, s); err != nil {
		return nil, err
	}
	if err := u.sessions.SetCurrentSession(ctx, clientID, s.ID); err != nil {
		return nil, err
	}
	metrics.IncSessionsCreated()
	u.log.Debug().Str("session_id", s.ID).Msg("session created")
	return s, nil
}

// List returns sessions most-recently-updated first plus the current id.
func (u *sessionUC) List(ctx context.Context, clientID string) ([]*model.ChatSession, string, error) {
	sessions, err := u.sessions.List(ctx, clientID)
	if err != nil {
		return nil, "", err
	}
	current, err := u.sessions.CurrentSession(ctx, clientID)
	if err != nil {
		return nil, "", err
	}
	return sessions, current, nil
}

func (u *sessionUC) Get(ctx context.Context, clientID, sessionID string) (*model.ChatSession, error) {
	return u.sessions.FindByID(ctx, clientID, sessionID)
}

func (u *sessionUC) Select(ctx context.Context, clientID, sessionID string) error {
	if _, err := u.sessions.FindByID(ctx, clientID, sessionID); err != nil {
		return err
	}
	return u.sessions.SetCurrentSession(ctx, clientID, sessionID)
}

// Delete removes a session. Deleting the current session promotes the first
// remaining session in list order (most recently updated), or clears the
// selection when none remain. Deleting a non-current session never changes
// the current id.
func (u *sessionUC) Delete(ctx context.Context, clientID, sessionID string) error {
	current, err := u.sessions.CurrentSession(ctx, clientID)
	if err != nil {
		return err
	}
	if err := u.sessions.Delete(ctx, clientID, sessionID); err != nil {
		return err
	}
	metrics.IncSessionsDeleted(1)
	if current != sessionID {
		return nil
	}
	remaining, err := u.sessions.List(ctx, clientID)
	if err != nil {
		return err
	}
	next := ""
	if len(remaining) > 0 {
		next = remaining[0].ID
	}
	return u.sessions.SetCurrentSession(ctx, clientID, next)
}

func (u *sessionUC) ClearAll(ctx context.Context, clientID string) error {
	sessions, err := u.sessions.List(ctx, clientID)
	if err != nil {
		return err
	}
	if err := u.sessions.DeleteAll(ctx, clientID); err != nil {
		return err
	}
	metrics.IncSessionsDeleted(len(sessions))
	return nil
}
