// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"next-ai-chat/internal/domain"
	"next-ai-chat/internal/domain/model"
	"next-ai-chat/internal/domain/ports/adapter"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memSessionRepo is a small in-memory session repository used by unit tests.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string][]*model.ChatSession // by clientID
	current  map[string]string
	saveErr  error // used by tests to simulate save failures
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{
		sessions: make(map[string][]*model.ChatSession),
		current:  make(map[string]string),
	}
}

func (m *memSessionRepo) List(ctx context.Context, clientID string) ([]*model.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]*model.ChatSession(nil), m.sessions[clientID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memSessionRepo) Save(ctx context.Context, clientID string, s *model.ChatSession) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.sessions[clientID] {
		if existing.ID == s.ID {
			m.sessions[clientID][i] = s
			return nil
		}
	}
	m.sessions[clientID] = append(m.sessions[clientID], s)
	return nil
}

func (m *memSessionRepo) AppendMessage(ctx context.Context, clientID, sessionID string, msg model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions[clientID] {
		if s.ID == sessionID {
			s.Append(msg)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memSessionRepo) FindByID(ctx context.Context, clientID, sessionID string) (*model.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions[clientID] {
		if s.ID == sessionID {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memSessionRepo) Delete(ctx context.Context, clientID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.sessions[clientID]
	for i, s := range list {
		if s.ID == sessionID {
			m.sessions[clientID] = append(list[:i], list[i+1:]...)
			if m.current[clientID] == sessionID {
				m.current[clientID] = ""
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memSessionRepo) DeleteAll(ctx context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, clientID)
	delete(m.current, clientID)
	return nil
}

func (m *memSessionRepo) CurrentSession(ctx context.Context, clientID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current[clientID], nil
}

func (m *memSessionRepo) SetCurrentSession(ctx context.Context, clientID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current[clientID] = sessionID
	return nil
}

func (m *memSessionRepo) PruneIdle(ctx context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pruned int64
	for clientID, list := range m.sessions {
		kept := list[:0]
		for _, s := range list {
			if s.UpdatedAt.Before(olderThan) {
				pruned++
				continue
			}
			kept = append(kept, s)
		}
		m.sessions[clientID] = kept
	}
	return pruned, nil
}

type memProfileRepo struct {
	mu    sync.Mutex
	names map[string]string
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{names: make(map[string]string)}
}

func (m *memProfileRepo) DisplayName(ctx context.Context, clientID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.names[clientID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return name, nil
}

func (m *memProfileRepo) SetDisplayName(ctx context.Context, clientID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[clientID] = name
	return nil
}

type memAssetStore struct {
	mu     sync.Mutex
	mimes  map[string]string
	blobs  map[string][]byte
	putErr error
}

func newMemAssetStore() *memAssetStore {
	return &memAssetStore{mimes: make(map[string]string), blobs: make(map[string][]byte)}
}

func (m *memAssetStore) Put(ctx context.Context, id, mimeType string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mimes[id] = mimeType
	m.blobs[id] = data
	return nil
}

func (m *memAssetStore) Get(ctx context.Context, id string) (string, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[id]
	if !ok {
		return "", nil, domain.ErrNotFound
	}
	return m.mimes[id], b, nil
}

// fakeAI returns a canned completion result, or an error when set.
type fakeAI struct {
	mu      sync.Mutex
	result  adapter.CompletionResult
	err     error
	lastReq adapter.CompletionRequest
	calls   int
}

func (f *fakeAI) Name() string { return "fake" }

func (f *fakeAI) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.CompletionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	f.calls++
	if f.err != nil {
		return adapter.CompletionResult{}, f.err
	}
	return f.result, nil
}

type fakeGate struct{ err error }

func (f *fakeGate) Check(ctx context.Context) error { return f.err }

// fakeLauncher completes jobs synchronously with a scripted outcome unless
// hold is set, in which case the job stays pending until Finish is called.
type fakeLauncher struct {
	mu        sync.Mutex
	outcome   VideoOutcome
	launchErr error
	hold      bool
	launched  int
	canceled  []string
	pending   []func(VideoOutcome)
}

func (f *fakeLauncher) Launch(job *model.VideoJob, prompt string, onProgress func(string, int), onDone func(VideoOutcome)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.launchErr != nil {
		return f.launchErr
	}
	f.launched++
	if f.hold {
		f.pending = append(f.pending, onDone)
		return nil
	}
	onDone(f.outcome)
	return nil
}

func (f *fakeLauncher) Cancel(jobID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, jobID)
	return true
}

// Finish completes all held jobs with the given outcome.
func (f *fakeLauncher) Finish(out VideoOutcome) {
	f.mu.Lock()
	pending := f.pending
	f.pending = nil
	f.mu.Unlock()
	for _, done := range pending {
		done(out)
	}
}

// seedSessions creates n sessions with strictly increasing UpdatedAt.
func seedSessions(repo *memSessionRepo, clientID string, n int) []*model.ChatSession {
	base := time.Now().Add(-time.Hour)
	out := make([]*model.ChatSession, 0, n)
	for i := 0; i < n; i++ {
		s := model.NewChatSession("s"+strconv.Itoa(i), "hello "+strconv.Itoa(i))
		s.UpdatedAt = base.Add(time.Duration(i) * time.Minute)
		_ = repo.Save(context.Background(), clientID, s)
		out = append(out, s)
	}
	return out
}
