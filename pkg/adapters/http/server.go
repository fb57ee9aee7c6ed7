package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/questline"
	"github.com/aretw0/questline/internal/logging"
	"github.com/aretw0/questline/pkg/dialog"
	"github.com/aretw0/questline/pkg/domain"
	"github.com/aretw0/questline/pkg/runner"
	"github.com/aretw0/questline/pkg/session"
)

// Server exposes running games over a small JSON API.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a server over the session manager.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates the HTTP handler of the server.
func NewHandler(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.DeleteSession)
			r.Get("/hints", s.GetHints)
			r.Get("/answers", s.GetAnswers)
			r.Get("/player", s.GetPlayer)
			r.Put("/player", s.PutPlayer)
			r.Post("/goto", s.GoTo)
			r.Post("/tick", s.Tick)
			r.Post("/interact", s.Interact)
			r.Get("/dialog", s.GetDialog)
			r.Post("/dialog/next", s.NextDialog)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GotoRequest is the body of POST /sessions/{id}/goto.
type GotoRequest struct {
	Target string `json:"target"`
}

// NextRequest is the body of POST /sessions/{id}/dialog/next.
// Choice answers a select (0-based), Text answers a prompt. Both empty acknowledges the item.
type NextRequest struct {
	Choice *int    `json:"choice,omitempty"`
	Text   *string `json:"text,omitempty"`
}

// TriggerResponse reports the dialog started by tick or interact.
type TriggerResponse struct {
	DialogID string `json:"dialog_id,omitempty"`
	Started  bool   `json:"started"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrLocationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDialogInProgress), errors.Is(err, domain.ErrNoActiveDialog):
		status = http.StatusConflict
	case errors.Is(err, runner.ErrInputTooLarge), errors.Is(err, runner.ErrInvalidUTF8):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request refused", "path", r.URL.Path, "status", status, "error", err)
	}
	http.Error(w, err.Error(), status)
}

// do runs fn on the session named in the URL and writes its result as JSON.
func (s *Server) do(w http.ResponseWriter, r *http.Request, fn func(g *session.Game) (any, error)) {
	id := chi.URLParam(r, "id")
	var resp any
	err := s.Sessions.Do(r.Context(), id, func(_ context.Context, g *session.Game) error {
		var err error
		resp, err = fn(g)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "questline-http",
		"version": strings.TrimSpace(questline.Version),
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.Sessions.List()})
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.Sessions.Create(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Streams.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

// GetHints handles GET /sessions/{id}/hints.
func (s *Server) GetHints(w http.ResponseWriter, r *http.Request) {
	s.do(w, r, func(g *session.Game) (any, error) {
		return g.Coordinator.Hints(), nil
	})
}

// GetAnswers handles GET /sessions/{id}/answers.
func (s *Server) GetAnswers(w http.ResponseWriter, r *http.Request) {
	s.do(w, r, func(g *session.Game) (any, error) {
		return g.Answers.Snapshot(), nil
	})
}

// GetPlayer handles GET /sessions/{id}/player.
func (s *Server) GetPlayer(w http.ResponseWriter, r *http.Request) {
	s.do(w, r, func(g *session.Game) (any, error) {
		return g.World.Player(), nil
	})
}

// PutPlayer handles PUT /sessions/{id}/player, the free movement of a graphical client.
func (s *Server) PutPlayer(w http.ResponseWriter, r *http.Request) {
	var pos domain.Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.do(w, r, func(g *session.Game) (any, error) {
		g.World.SetPlayer(pos)
		return g.World.Player(), nil
	})
}

// GoTo handles POST /sessions/{id}/goto.
func (s *Server) GoTo(w http.ResponseWriter, r *http.Request) {
	var body GotoRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Target == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.do(w, r, func(g *session.Game) (any, error) {
		if err := g.GoTo(r.Context(), body.Target); err != nil {
			return nil, err
		}
		return g.World.Player(), nil
	})
}

// Tick handles POST /sessions/{id}/tick.
func (s *Server) Tick(w http.ResponseWriter, r *http.Request) {
	s.do(w, r, func(g *session.Game) (any, error) {
		id, ok := g.Tick(r.Context())
		return TriggerResponse{DialogID: id, Started: ok}, nil
	})
}

// Interact handles POST /sessions/{id}/interact.
func (s *Server) Interact(w http.ResponseWriter, r *http.Request) {
	s.do(w, r, func(g *session.Game) (any, error) {
		id, err := g.Interact(r.Context())
		if err != nil {
			return nil, err
		}
		return TriggerResponse{DialogID: id, Started: id != ""}, nil
	})
}

// GetDialog handles GET /sessions/{id}/dialog.
func (s *Server) GetDialog(w http.ResponseWriter, r *http.Request) {
	s.do(w, r, func(g *session.Game) (any, error) {
		return runner.CurrentView(g), nil
	})
}

// NextDialog handles POST /sessions/{id}/dialog/next.
func (s *Server) NextDialog(w http.ResponseWriter, r *http.Request) {
	var body NextRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	answer := dialog.NoAnswer()
	switch {
	case body.Choice != nil:
		answer = dialog.Choose(*body.Choice)
	case body.Text != nil:
		clean, err := runner.SanitizeInput(*body.Text)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("invalid input: %w", err))
			return
		}
		answer = dialog.Reply(clean)
	}

	s.do(w, r, func(g *session.Game) (any, error) {
		return runner.AdvanceAndRender(r.Context(), g, answer)
	})
}
