// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"next-ai-chat/internal/domain"
	"next-ai-chat/internal/domain/model"
	"next-ai-chat/internal/domain/ports/adapter"
)

type imagePayloadRequest struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"` // base64 over the wire
}

type sendMessageRequest struct {
	SessionID string               `json:"sessionId"`
	Text      string               `json:"text"`
	Image     *imagePayloadRequest `json:"image,omitempty"`
}

type sendMessageResponse struct {
	SessionID        string          `json:"sessionId"`
	UserMessage      *model.Message  `json:"userMessage"`
	AssistantMessage *model.Message  `json:"assistantMessage,omitempty"`
	Job              *model.VideoJob `json:"job,omitempty"`
}

type sessionListResponse struct {
	Data      []*model.ChatSession `json:"data"`
	CurrentID string               `json:"currentId"`
}

type profileResponse struct {
	DisplayName string `json:"displayName"`
}

type profileUpdateRequest struct {
	DisplayName string `json:"displayName"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels to HTTP statuses. The 428 on a missing
// credential is the client's cue to run its key-selection flow.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCredentialRequired):
		writeJSON(w, http.StatusPreconditionRequired, errorResponse{Error: "credential_required"})
	case errors.Is(err, domain.ErrSessionBusy):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "session_busy"})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrJobNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found"})
	case errors.Is(err, domain.ErrEmptyPrompt), errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal"})
	}
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}
	var image *adapter.ImagePayload
	if req.Image != nil {
		image = &adapter.ImagePayload{MIMEType: req.Image.MIMEType, Data: req.Image.Data}
	}

	result, err := s.chatUC.SendMessage(r.Context(), clientIDFrom(r.Context()), req.SessionID, req.Text, image)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := sendMessageResponse{
		SessionID:        result.SessionID,
		UserMessage:      result.UserMessage,
		AssistantMessage: result.AssistantMessage,
		Job:              result.Job,
	}
	// Video turns return 202: the assistant message lands when the job ends.
	if result.Job != nil {
		writeJSON(w, http.StatusAccepted, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.chatUC.Job(r.Context(), clientIDFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	if err := s.chatUC.CancelJob(r.Context(), clientIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, current, err := s.sessionUC.List(r.Context(), clientIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if sessions == nil {
		sessions = []*model.ChatSession{}
	}
	writeJSON(w, http.StatusOK, sessionListResponse{Data: sessions, CurrentID: current})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionUC.Get(r.Context(), clientIDFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleSelectSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessionUC.Select(r.Context(), clientIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessionUC.Delete(r.Context(), clientIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearSessions(w http.ResponseWriter, r *http.Request) {
	if err := s.sessionUC.ClearAll(r.Context(), clientIDFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	name, err := s.profileUC.DisplayName(r.Context(), clientIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{DisplayName: name})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}
	if err := s.profileUC.SetDisplayName(r.Context(), clientIDFrom(r.Context()), req.DisplayName); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	mimeType, data, err := s.assets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
