// File: internal/infra/web/server.go
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"next-ai-chat/internal/domain/ports/repository"
	"next-ai-chat/internal/usecase"
)

const (
	// messages per client per minute on the submission route
	sendLimit  = 30
	sendWindow = time.Minute
)

type Server struct {
	chatUC    usecase.ChatUseCase
	sessionUC usecase.SessionUseCase
	profileUC usecase.ProfileUseCase
	assets    repository.AssetStore
	auth      *AuthManager
	limiter   Limiter
	log       *zerolog.Logger
}

func NewServer(
	chatUC usecase.ChatUseCase,
	sessionUC usecase.SessionUseCase,
	profileUC usecase.ProfileUseCase,
	assets repository.AssetStore,
	auth *AuthManager,
	limiter Limiter,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		chatUC:    chatUC,
		sessionUC: sessionUC,
		profileUC: profileUC,
		assets:    assets,
		auth:      auth,
		limiter:   limiter,
		log:       &l,
	}
}

// Router assembles the API. Identity is minted lazily, so every /api route
// runs behind the identity middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(traceID)
	r.Use(recoverer(s.log))
	r.Use(requestLog(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)

		r.With(s.rateLimit(sendLimit, sendWindow)).Post("/messages", s.handleSendMessage)

		r.Get("/jobs/{id}", s.handleGetJob)
		r.Delete("/jobs/{id}", s.handleCancelJob)

		r.Get("/sessions", s.handleListSessions)
		r.Delete("/sessions", s.handleClearSessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Put("/sessions/{id}/select", s.handleSelectSession)
		r.Delete("/sessions/{id}", s.handleDeleteSession)

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handleUpdateProfile)

		r.Get("/assets/{id}", s.handleGetAsset)
	})
	return r
}
