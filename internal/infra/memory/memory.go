// File: internal/infra/memory/memory.go

// Package memory provides dev-only storage: everything lives in process and
// is lost on restart. Selected with storage.driver=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"next-ai-chat/internal/domain"
	"next-ai-chat/internal/domain/model"
	"next-ai-chat/internal/domain/ports/repository"
)

var (
	_ repository.SessionRepository = (*SessionRepo)(nil)
	_ repository.KVStore           = (*KVStore)(nil)
)

type clientState struct {
	sessions  []*model.ChatSession
	currentID string
}

type SessionRepo struct {
	mu      sync.RWMutex
	clients map[string]*clientState
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{clients: make(map[string]*clientState)}
}

func (r *SessionRepo) state(clientID string) *clientState {
	st, ok := r.clients[clientID]
	if !ok {
		st = &clientState{}
		r.clients[clientID] = st
	}
	return st
}

func cloneSession(s *model.ChatSession) *model.ChatSession {
	cp := *s
	cp.Messages = append([]model.Message(nil), s.Messages...)
	return &cp
}

func (r *SessionRepo) List(ctx context.Context, clientID string) ([]*model.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.clients[clientID]
	if !ok {
		return nil, nil
	}
	out := make([]*model.ChatSession, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, cloneSession(s))
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].UpdatedAt.After(out[j-1].UpdatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (r *SessionRepo) Save(ctx context.Context, clientID string, s *model.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state(clientID)
	for i, existing := range st.sessions {
		if existing.ID == s.ID {
			st.sessions[i] = cloneSession(s)
			return nil
		}
	}
	st.sessions = append(st.sessions, cloneSession(s))
	return nil
}

func (r *SessionRepo) AppendMessage(ctx context.Context, clientID, sessionID string, m model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.clients[clientID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, s := range st.sessions {
		if s.ID == sessionID {
			s.Append(m)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *SessionRepo) FindByID(ctx context.Context, clientID, sessionID string) (*model.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.clients[clientID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, s := range st.sessions {
		if s.ID == sessionID {
			return cloneSession(s), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *SessionRepo) Delete(ctx context.Context, clientID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.clients[clientID]
	if !ok {
		return domain.ErrNotFound
	}
	for i, s := range st.sessions {
		if s.ID == sessionID {
			st.sessions = append(st.sessions[:i], st.sessions[i+1:]...)
			if st.currentID == sessionID {
				st.currentID = ""
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *SessionRepo) DeleteAll(ctx context.Context, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, clientID)
	return nil
}

func (r *SessionRepo) CurrentSession(ctx context.Context, clientID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.clients[clientID]
	if !ok {
		return "", nil
	}
	return st.currentID, nil
}

func (r *SessionRepo) SetCurrentSession(ctx context.Context, clientID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state(clientID).currentID = sessionID
	return nil
}

func (r *SessionRepo) PruneIdle(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pruned int64
	for clientID, st := range r.clients {
		kept := st.sessions[:0]
		for _, s := range st.sessions {
			if s.UpdatedAt.Before(olderThan) {
				pruned++
				if st.currentID == s.ID {
					st.currentID = ""
				}
				continue
			}
			kept = append(kept, s)
		}
		st.sessions = kept
		if len(st.sessions) == 0 && st.currentID == "" {
			delete(r.clients, clientID)
		}
	}
	return pruned, nil
}

type kvEntry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

type KVStore struct {
	mu   sync.RWMutex
	data map[string]kvEntry
}

func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string]kvEntry)}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && time.Now().After(e.expires)) {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	e := kvEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.data[key] = e
	s.mu.Unlock()
	return nil
}

func (s *KVStore) Del(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}
