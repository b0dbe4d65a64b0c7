// File: internal/infra/redis/session_repo.go
package redis

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"next-ai-chat/internal/domain"
	"next-ai-chat/internal/domain/model"
	"next-ai-chat/internal/domain/ports/repository"
	"next-ai-chat/internal/infra/security"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

const stateKeyPrefix = "chat:state:"

// clientState is the serialized per-client store: the full session list plus
// the last-active session id, written back as one value per mutation. The
// whole-blob model keeps reads and writes single-key and matches how small
// per-client transcripts actually are.
type clientState struct {
	Sessions  []*model.ChatSession `json:"sessions"`
	CurrentID string               `json:"currentId"`
}

// SessionRepo persists chat sessions in redis, one state blob per client.
// With an encryption service configured the blob is sealed at rest; a blob
// that fails to decrypt or decode is treated as absent, not as an error.
type SessionRepo struct {
	client *Client
	enc    *security.EncryptionService // nil means plaintext
}

func NewSessionRepo(client *Client, enc *security.EncryptionService) *SessionRepo {
	return &SessionRepo{client: client, enc: enc}
}

func stateKey(clientID string) string { return stateKeyPrefix + clientID }

func (r *SessionRepo) load(ctx context.Context, clientID string) (*clientState, error) {
	raw, err := r.client.Get(ctx, stateKey(clientID))
	if IsNil(err) {
		return &clientState{}, nil
	}
	if err != nil {
		return nil, err
	}
	if r.enc != nil {
		pt, err := r.enc.Decrypt(raw)
		if err != nil {
			return &clientState{}, nil
		}
		raw = pt
	}
	var st clientState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return &clientState{}, nil
	}
	return &st, nil
}

func (r *SessionRepo) store(ctx context.Context, clientID string, st *clientState) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	payload := string(b)
	if r.enc != nil {
		if payload, err = r.enc.Encrypt(payload); err != nil {
			return err
		}
	}
	return r.client.Set(ctx, stateKey(clientID), payload, 0)
}

func sortByRecency(sessions []*model.ChatSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
}

func (r *SessionRepo) List(ctx context.Context, clientID string) ([]*model.ChatSession, error) {
	st, err := r.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	sortByRecency(st.Sessions)
	return st.Sessions, nil
}

func (r *SessionRepo) Save(ctx context.Context, clientID string, s *model.ChatSession) error {
	st, err := r.load(ctx, clientID)
	if err != nil {
		return err
	}
	replaced := false
	for i, existing := range st.Sessions {
		if existing.ID == s.ID {
			st.Sessions[i] = s
			replaced = true
			break
		}
	}
	if !replaced {
		st.Sessions = append(st.Sessions, s)
	}
	return r.store(ctx, clientID, st)
}

func (r *SessionRepo) AppendMessage(ctx context.Context, clientID, sessionID string, m model.Message) error {
	st, err := r.load(ctx, clientID)
	if err != nil {
		return err
	}
	for _, s := range st.Sessions {
		if s.ID == sessionID {
			s.Append(m)
			return r.store(ctx, clientID, st)
		}
	}
	return domain.ErrNotFound
}

func (r *SessionRepo) FindByID(ctx context.Context, clientID, sessionID string) (*model.ChatSession, error) {
	st, err := r.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for _, s := range st.Sessions {
		if s.ID == sessionID {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *SessionRepo) Delete(ctx context.Context, clientID, sessionID string) error {
	st, err := r.load(ctx, clientID)
	if err != nil {
		return err
	}
	kept := st.Sessions[:0]
	found := false
	for _, s := range st.Sessions {
		if s.ID == sessionID {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	if !found {
		return domain.ErrNotFound
	}
	st.Sessions = kept
	if st.CurrentID == sessionID {
		st.CurrentID = ""
	}
	return r.store(ctx, clientID, st)
}

func (r *SessionRepo) DeleteAll(ctx context.Context, clientID string) error {
	return r.client.Del(ctx, stateKey(clientID))
}

func (r *SessionRepo) CurrentSession(ctx context.Context, clientID string) (string, error) {
	st, err := r.load(ctx, clientID)
	if err != nil {
		return "", err
	}
	return st.CurrentID, nil
}

func (r *SessionRepo) SetCurrentSession(ctx context.Context, clientID, sessionID string) error {
	st, err := r.load(ctx, clientID)
	if err != nil {
		return err
	}
	st.CurrentID = sessionID
	return r.store(ctx, clientID, st)
}

func (r *SessionRepo) PruneIdle(ctx context.Context, olderThan time.Time) (int64, error) {
	keys, err := r.client.Keys(ctx, stateKeyPrefix+"*")
	if err != nil {
		return 0, err
	}
	var pruned int64
	for _, key := range keys {
		clientID := strings.TrimPrefix(key, stateKeyPrefix)
		st, err := r.load(ctx, clientID)
		if err != nil {
			return pruned, err
		}
		kept := st.Sessions[:0]
		for _, s := range st.Sessions {
			if s.UpdatedAt.Before(olderThan) {
				pruned++
				if st.CurrentID == s.ID {
					st.CurrentID = ""
				}
				continue
			}
			kept = append(kept, s)
		}
		if len(kept) == len(st.Sessions) {
			continue
		}
		st.Sessions = kept
		if len(st.Sessions) == 0 && st.CurrentID == "" {
			if err := r.client.Del(ctx, key); err != nil {
				return pruned, err
			}
			continue
		}
		if err := r.store(ctx, clientID, st); err != nil {
			return pruned, err
		}
	}
	return pruned, nil
}
