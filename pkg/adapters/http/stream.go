package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/questline/internal/logging"
	"github.com/aretw0/questline/pkg/domain"
)

// StreamManager fans session events out to the SSE subscribers of each session.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{} // SessionID -> Set of Channels

	logger *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		logger:      logging.NewNop(),
	}
}

// Subscribe registers a buffered channel for the session. The returned func unsubscribes and is idempotent.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of the session. Slow subscribers lose the message.
func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// Close ends every stream of the session.
func (sm *StreamManager) Close(sessionID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for ch := range sm.subscribers[sessionID] {
		close(ch)
	}
	delete(sm.subscribers, sessionID)
}

func (sm *StreamManager) publish(sessionID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		sm.logger.Error("failed to encode event", "session_id", sessionID, "error", err)
		return
	}
	sm.Broadcast(sessionID, string(data))
}

// Hooks returns lifecycle hooks that publish the events of one session to its subscribers.
func (sm *StreamManager) Hooks(sessionID string) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogStart: func(_ context.Context, e *domain.DialogEvent) {
			sm.publish(sessionID, e)
		},
		OnDialogDone: func(_ context.Context, e *domain.DialogEvent) {
			sm.publish(sessionID, e)
		},
		OnAnswer: func(_ context.Context, e *domain.AnswerEvent) {
			sm.publish(sessionID, e)
		},
		OnMissionActivated: func(_ context.Context, e *domain.MissionEvent) {
			sm.publish(sessionID, e)
		},
	}
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE).
// The optional "watch" query parameter filters by event type, comma separated.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	if !s.exists(sessionID) {
		s.writeError(w, r, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID))
		return
	}

	var watch map[string]bool
	if q := r.URL.Query().Get("watch"); q != "" {
		watch = make(map[string]bool)
		for _, t := range strings.Split(q, ",") {
			watch[strings.TrimSpace(t)] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.logger.Info("SSE: subscribed", "session_id", sessionID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if watch != nil {
				var head domain.EventBase
				if err := json.Unmarshal([]byte(msg), &head); err == nil && !watch[string(head.Type)] {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) exists(sessionID string) bool {
	for _, id := range s.Sessions.List() {
		if id == sessionID {
			return true
		}
	}
	return false
}
