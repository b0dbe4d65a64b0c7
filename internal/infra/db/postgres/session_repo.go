// File: internal/infra/db/postgres/session_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"next-ai-chat/internal/domain"
	"next-ai-chat/internal/domain/model"
	"next-ai-chat/internal/domain/ports/repository"
	"next-ai-chat/internal/infra/security"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

const pgFKViolation = "23503"

// SessionRepo persists chat sessions relationally, one row per session and
// one per message, with optional encryption-at-rest for message content.
type SessionRepo struct {
	pool *pgxpool.Pool
	enc  *security.EncryptionService // nil means plaintext
}

func NewSessionRepo(pool *pgxpool.Pool, enc *security.EncryptionService) *SessionRepo {
	return &SessionRepo{pool: pool, enc: enc}
}

func (r *SessionRepo) List(ctx context.Context, clientID string) ([]*model.ChatSession, error) {
	const q = `SELECT id FROM chat_sessions WHERE client_id=$1 ORDER BY updated_at DESC;`
	rows, err := r.pool.Query(ctx, q, clientID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]*model.ChatSession, 0, len(ids))
	for _, id := range ids {
		s, err := r.FindByID(ctx, clientID, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Save upserts the session row and rewrites its messages inside one tx.
func (r *SessionRepo) Save(ctx context.Context, clientID string, s *model.ChatSession) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const qs = `
INSERT INTO chat_sessions (id, client_id, title, updated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE SET
  title = EXCLUDED.title,
  updated_at = EXCLUDED.updated_at;`
	if _, err := tx.Exec(ctx, qs, s.ID, clientID, s.Title, s.UpdatedAt); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM chat_messages WHERE session_id=$1;`, s.ID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	for _, m := range s.Messages {
		if err := r.insertMessage(ctx, tx, s.ID, m); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// AppendMessage bumps the owning session row first, so a session id held by
// another client fails the whole append, then inserts the message. Both
// statements commit together; an ownership miss leaves no orphan row.
func (r *SessionRepo) AppendMessage(ctx context.Context, clientID, sessionID string, m model.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `UPDATE chat_sessions SET updated_at=$3 WHERE id=$1 AND client_id=$2;`
	tag, err := tx.Exec(ctx, q, sessionID, clientID, m.Timestamp)
	if err != nil {
		return fmt.Errorf("bump session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err := r.insertMessage(ctx, tx, sessionID, m); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgFKViolation {
			return domain.ErrNotFound
		}
		return err
	}
	return tx.Commit(ctx)
}

func (r *SessionRepo) insertMessage(ctx context.Context, tx pgx.Tx, sessionID string, m model.Message) error {
	payload := m.Content
	encFlag := false
	if r.enc != nil {
		ct, err := r.enc.Encrypt(m.Content)
		if err != nil {
			return fmt.Errorf("encrypt msg: %w", err)
		}
		payload = ct
		encFlag = true
	}
	const q = `
INSERT INTO chat_messages (id, session_id, role, content, encrypted, image_ref, video_ref, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err := tx.Exec(ctx, q, m.ID, sessionID, m.Role, payload, encFlag, m.ImageRef, m.VideoRef, m.Timestamp)
	return err
}

func (r *SessionRepo) FindByID(ctx context.Context, clientID, sessionID string) (*model.ChatSession, error) {
	const qs = `SELECT id, title, updated_at FROM chat_sessions WHERE id=$1 AND client_id=$2;`
	var s model.ChatSession
	if err := r.pool.QueryRow(ctx, qs, sessionID, clientID).Scan(&s.ID, &s.Title, &s.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	const qm = `SELECT id, role, content, encrypted, image_ref, video_ref, created_at FROM chat_messages WHERE session_id=$1 ORDER BY created_at ASC;`
	rows, err := r.pool.Query(ctx, qm, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m model.Message
		var encFlag bool
		var ts time.Time
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &encFlag, &m.ImageRef, &m.VideoRef, &ts); err != nil {
			return nil, fmt.Errorf("scan msg: %w", err)
		}
		m.Timestamp = ts
		if encFlag {
			if r.enc == nil {
				// encrypted row without a key configured: treat as absent
				continue
			}
			plain, err := r.enc.Decrypt(m.Content)
			if err != nil {
				continue
			}
			m.Content = plain
		}
		s.Messages = append(s.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return &s, nil
}

func (r *SessionRepo) Delete(ctx context.Context, clientID, sessionID string) error {
	const q = `DELETE FROM chat_sessions WHERE id=$1 AND client_id=$2;`
	tag, err := r.pool.Exec(ctx, q, sessionID, clientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	const qc = `UPDATE chat_clients SET current_session_id='' WHERE client_id=$1 AND current_session_id=$2;`
	_, err = r.pool.Exec(ctx, qc, clientID, sessionID)
	return err
}

func (r *SessionRepo) DeleteAll(ctx context.Context, clientID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE client_id=$1;`, clientID); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM chat_clients WHERE client_id=$1;`, clientID)
	return err
}

func (r *SessionRepo) CurrentSession(ctx context.Context, clientID string) (string, error) {
	const q = `SELECT current_session_id FROM chat_clients WHERE client_id=$1;`
	var id string
	if err := r.pool.QueryRow(ctx, q, clientID).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

func (r *SessionRepo) SetCurrentSession(ctx context.Context, clientID, sessionID string) error {
	const q = `
INSERT INTO chat_clients (client_id, current_session_id)
VALUES ($1,$2)
ON CONFLICT (client_id) DO UPDATE SET current_session_id = EXCLUDED.current_session_id;`
	_, err := r.pool.Exec(ctx, q, clientID, sessionID)
	return err
}

func (r *SessionRepo) PruneIdle(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE updated_at < $1;`, olderThan)
	if err != nil {
		return 0, err
	}
	const qc = `
UPDATE chat_clients c SET current_session_id=''
 WHERE current_session_id <> ''
   AND NOT EXISTS (SELECT 1 FROM chat_sessions s WHERE s.id = c.current_session_id);`
	if _, err := r.pool.Exec(ctx, qc); err != nil {
		return tag.RowsAffected(), err
	}
	return tag.RowsAffected(), nil
}
