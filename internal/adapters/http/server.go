// Package http exposes the agent pipeline over a small JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moviops/movi/internal/logging"
	"github.com/moviops/movi/pkg/agent"
	"github.com/moviops/movi/pkg/domain"
)

// Agent runs one conversational turn. The pipeline implements it.
type Agent interface {
	Turn(ctx context.Context, req agent.Request) (*agent.Response, error)
}

// Sessions is the slice of the session manager the API needs.
type Sessions interface {
	Load(ctx context.Context, id string) (*domain.Session, error)
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}

// Server handles the agent HTTP API.
type Server struct {
	agent    Agent
	sessions Sessions
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler builds the full HTTP handler, including health and metrics
// endpoints. Pass a nil gatherer to skip the /metrics route.
func NewHandler(ag Agent, sessions Sessions, gatherer prometheus.Gatherer, opts ...Option) http.Handler {
	server := &Server{
		agent:    ag,
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/v1/agent", func(r chi.Router) {
		r.Post("/message", server.PostMessage)
		r.Post("/confirm", server.PostConfirm)
		r.Get("/sessions", server.ListSessions)
		r.Get("/sessions/{id}", server.GetSession)
		r.Post("/sessions/{id}/close", server.CloseSession)
		r.Delete("/sessions/{id}", server.DeleteSession)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MessageRequest is the body of POST /v1/agent/message.
type MessageRequest struct {
	SessionID   string         `json:"session_id,omitempty"`
	Owner       string         `json:"owner,omitempty"`
	Text        string         `json:"text"`
	Media       []domain.Media `json:"media,omitempty"`
	PageContext string         `json:"page_context,omitempty"`
}

// ConfirmRequest is the body of POST /v1/agent/confirm. Decision is an
// explicit signal ("confirm" or "decline"); Text is a free-form reply that
// the pipeline interprets when Decision is absent.
type ConfirmRequest struct {
	SessionID string `json:"session_id"`
	Decision  string `json:"decision,omitempty"`
	Text      string `json:"text,omitempty"`
}

// PostMessage handles POST /v1/agent/message.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("message: invalid request body", "error", err)
		return
	}
	if body.Text == "" && len(body.Media) == 0 {
		http.Error(w, "Either text or media is required", http.StatusBadRequest)
		return
	}

	resp, err := s.agent.Turn(r.Context(), agent.Request{
		SessionID:   body.SessionID,
		Owner:       body.Owner,
		Text:        body.Text,
		Media:       body.Media,
		PageContext: body.PageContext,
	})
	if err != nil {
		s.writeTurnError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// PostConfirm handles POST /v1/agent/confirm. It is the second leg of the
// two-phase protocol; the session ID ties it back to the suspended action.
func (s *Server) PostConfirm(w http.ResponseWriter, r *http.Request) {
	var body ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("confirm: invalid request body", "error", err)
		return
	}
	if body.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	if body.Decision == "" && body.Text == "" {
		http.Error(w, "Either decision or text is required", http.StatusBadRequest)
		return
	}

	resp, err := s.agent.Turn(r.Context(), agent.Request{
		SessionID: body.SessionID,
		Text:      body.Text,
		Decision:  body.Decision,
	})
	if err != nil {
		s.writeTurnError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetSession handles GET /v1/agent/sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		s.logger.Error("session load failed", "session_id", id, "error", err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// CloseSession handles POST /v1/agent/sessions/{id}/close. The session
// record survives for inspection, but further turns are rejected.
func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to close session", http.StatusInternalServerError)
		s.logger.Error("session close failed", "session_id", id, "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSession handles DELETE /v1/agent/sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete session", http.StatusInternalServerError)
		s.logger.Error("session delete failed", "session_id", id, "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSessions handles GET /v1/agent/sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		s.logger.Error("session list failed", "error", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, "Session not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrSessionInactive):
		http.Error(w, "Session is inactive", http.StatusConflict)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "Request cancelled", http.StatusRequestTimeout)
	default:
		http.Error(w, "Turn failed", http.StatusInternalServerError)
		s.logger.Error("turn failed", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
