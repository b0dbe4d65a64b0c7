// File: internal/infra/web/handlers_test.go
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"next-ai-chat/internal/domain"
	"next-ai-chat/internal/domain/model"
	"next-ai-chat/internal/domain/ports/adapter"
	"next-ai-chat/internal/infra/kv"
	"next-ai-chat/internal/infra/memory"
	"next-ai-chat/internal/usecase"
)

// ---- Stubs ----

type stubChat struct {
	result     *usecase.SendResult
	err        error
	job        *model.VideoJob
	jobErr     error
	cancelErr  error
	lastClient string
}

func (s *stubChat) SendMessage(ctx context.Context, clientID, sessionID, text string, image *adapter.ImagePayload) (*usecase.SendResult, error) {
	s.lastClient = clientID
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubChat) Job(ctx context.Context, clientID, jobID string) (*model.VideoJob, error) {
	if s.jobErr != nil {
		return nil, s.jobErr
	}
	return s.job, nil
}

func (s *stubChat) CancelJob(ctx context.Context, clientID, jobID string) error {
	return s.cancelErr
}

type stubSessions struct {
	sessions  []*model.ChatSession
	current   string
	selectErr error
	deleteErr error
}

func (s *stubSessions) Create(ctx context.Context, clientID, text string) (*model.ChatSession, error) {
	return nil, nil
}
func (s *stubSessions) List(ctx context.Context, clientID string) ([]*model.ChatSession, string, error) {
	return s.sessions, s.current, nil
}
func (s *stubSessions) Get(ctx context.Context, clientID, sessionID string) (*model.ChatSession, error) {
	for _, sess := range s.sessions {
		if sess.ID == sessionID {
			return sess, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (s *stubSessions) Select(ctx context.Context, clientID, sessionID string) error {
	return s.selectErr
}
func (s *stubSessions) Delete(ctx context.Context, clientID, sessionID string) error {
	return s.deleteErr
}
func (s *stubSessions) ClearAll(ctx context.Context, clientID string) error { return nil }

type stubProfile struct {
	name   string
	setErr error
}

func (s *stubProfile) DisplayName(ctx context.Context, clientID string) (string, error) {
	return s.name, nil
}
func (s *stubProfile) SetDisplayName(ctx context.Context, clientID, name string) error {
	return s.setErr
}

type fixture struct {
	chat     *stubChat
	sessions *stubSessions
	profile  *stubProfile
	assets   *kv.AssetStore
	srv      *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()
	chat := &stubChat{}
	sessions := &stubSessions{}
	profile := &stubProfile{name: "Idhant"}
	assets := kv.NewAssetStore(memory.NewKVStore(), time.Hour)
	auth := NewAuthManager("test-secret", false, time.Hour)
	server := NewServer(chat, sessions, profile, assets, auth, nil, &log)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return &fixture{chat: chat, sessions: sessions, profile: profile, assets: assets, srv: ts}
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

// ---- Tests ----

func TestIdentityCookieMinted(t *testing.T) {
	f := newFixture(t)
	resp := doJSON(t, http.MethodGet, f.srv.URL+"/api/v1/profile", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == "chat_client" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("identity cookie not set on first contact")
	}
}

func TestIdentityCookieReused(t *testing.T) {
	f := newFixture(t)
	f.chat.result = &usecase.SendResult{SessionID: "s1"}

	resp := doJSON(t, http.MethodPost, f.srv.URL+"/api/v1/messages", sendMessageRequest{Text: "hi"})
	resp.Body.Close()
	first := f.chat.lastClient
	if first == "" {
		t.Fatal("client id not propagated")
	}

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "chat_client" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no identity cookie")
	}

	req, _ := http.NewRequest(http.MethodPost, f.srv.URL+"/api/v1/messages", strings.NewReader(`{"text":"again"}`))
	req.AddCookie(cookie)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if f.chat.lastClient != first {
		t.Fatalf("client id changed across requests: %q -> %q", first, f.chat.lastClient)
	}
}

func TestSendMessageOK(t *testing.T) {
	f := newFixture(t)
	f.chat.result = &usecase.SendResult{
		SessionID:        "s1",
		UserMessage:      &model.Message{ID: "u1", Role: model.RoleUser, Content: "hi"},
		AssistantMessage: &model.Message{ID: "a1", Role: model.RoleAssistant, Content: "hello"},
	}

	resp := doJSON(t, http.MethodPost, f.srv.URL+"/api/v1/messages", sendMessageRequest{Text: "hi"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody[sendMessageResponse](t, resp)
	if body.SessionID != "s1" || body.AssistantMessage == nil || body.Job != nil {
		t.Fatalf("body = %+v", body)
	}
}

func TestSendMessageVideoAccepted(t *testing.T) {
	f := newFixture(t)
	f.chat.result = &usecase.SendResult{
		SessionID:   "s1",
		UserMessage: &model.Message{ID: "u1", Role: model.RoleUser, Content: "make a video of x"},
		Job:         &model.VideoJob{ID: "j1", SessionID: "s1", Status: model.VideoJobSubmitted},
	}

	resp := doJSON(t, http.MethodPost, f.srv.URL+"/api/v1/messages", sendMessageRequest{Text: "make a video of x"})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	body := decodeBody[sendMessageResponse](t, resp)
	if body.Job == nil || body.Job.ID != "j1" || body.AssistantMessage != nil {
		t.Fatalf("body = %+v", body)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"empty prompt", domain.ErrEmptyPrompt, http.StatusBadRequest, "invalid_request"},
		{"busy", domain.ErrSessionBusy, http.StatusConflict, "session_busy"},
		{"credential", domain.ErrCredentialRequired, http.StatusPreconditionRequired, "credential_required"},
		{"unknown session", domain.ErrNotFound, http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.chat.err = tc.err
			resp := doJSON(t, http.MethodPost, f.srv.URL+"/api/v1/messages", sendMessageRequest{Text: "x"})
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			body := decodeBody[errorResponse](t, resp)
			if body.Error != tc.wantCode {
				t.Fatalf("code = %q, want %q", body.Error, tc.wantCode)
			}
		})
	}
}

func TestGetJobNotFound(t *testing.T) {
	f := newFixture(t)
	f.chat.jobErr = domain.ErrJobNotFound
	resp := doJSON(t, http.MethodGet, f.srv.URL+"/api/v1/jobs/j404", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestGetJob(t *testing.T) {
	f := newFixture(t)
	f.chat.job = &model.VideoJob{ID: "j1", Status: model.VideoJobPolling, Progress: "Rendering frames…", Attempts: 4}
	resp := doJSON(t, http.MethodGet, f.srv.URL+"/api/v1/jobs/j1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	job := decodeBody[model.VideoJob](t, resp)
	if job.ID != "j1" || job.Status != model.VideoJobPolling || job.Attempts != 4 {
		t.Fatalf("job = %+v", job)
	}
}

func TestListSessions(t *testing.T) {
	f := newFixture(t)
	f.sessions.sessions = []*model.ChatSession{
		{ID: "s2", Title: "newer"},
		{ID: "s1", Title: "older"},
	}
	f.sessions.current = "s2"

	resp := doJSON(t, http.MethodGet, f.srv.URL+"/api/v1/sessions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody[sessionListResponse](t, resp)
	if len(body.Data) != 2 || body.CurrentID != "s2" {
		t.Fatalf("body = %+v", body)
	}
}

func TestListSessionsEmptyIsArray(t *testing.T) {
	f := newFixture(t)
	resp := doJSON(t, http.MethodGet, f.srv.URL+"/api/v1/sessions", nil)
	defer resp.Body.Close()
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["data"]) != "[]" {
		t.Fatalf("data = %s, want []", raw["data"])
	}
}

func TestSelectSessionNotFound(t *testing.T) {
	f := newFixture(t)
	f.sessions.selectErr = domain.ErrNotFound
	resp := doJSON(t, http.MethodPut, f.srv.URL+"/api/v1/sessions/s404/select", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestDeleteSession(t *testing.T) {
	f := newFixture(t)
	resp := doJSON(t, http.MethodDelete, f.srv.URL+"/api/v1/sessions/s1", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	f := newFixture(t)
	resp := doJSON(t, http.MethodGet, f.srv.URL+"/api/v1/profile", nil)
	body := decodeBody[profileResponse](t, resp)
	if body.DisplayName != "Idhant" {
		t.Fatalf("name = %q", body.DisplayName)
	}

	resp = doJSON(t, http.MethodPut, f.srv.URL+"/api/v1/profile", profileUpdateRequest{DisplayName: "Alex"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	f.profile.setErr = domain.ErrInvalidArgument
	resp = doJSON(t, http.MethodPut, f.srv.URL+"/api/v1/profile", profileUpdateRequest{DisplayName: ""})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestGetAsset(t *testing.T) {
	f := newFixture(t)
	if err := f.assets.Put(context.Background(), "a1", "image/png", []byte{9, 9, 9}); err != nil {
		t.Fatal(err)
	}

	resp := doJSON(t, http.MethodGet, f.srv.URL+"/api/v1/assets/a1", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}

	resp2 := doJSON(t, http.MethodGet, f.srv.URL+"/api/v1/assets/missing", nil)
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp2.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
