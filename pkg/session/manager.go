package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/questline/internal/logging"
	"github.com/aretw0/questline/pkg/domain"
)

// Factory builds the game of a new session.
type Factory func(ctx context.Context, id string) (*Game, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns the running games and serializes access to each of them.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	factory Factory

	mu    sync.Mutex            // Global lock for both maps
	locks map[string]*lockEntry // Map of active locks
	games map[string]*Game

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager that builds games with factory.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory: factory,
		locks:   make(map[string]*lockEntry),
		games:   make(map[string]*Game),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

func (m *Manager) game(sessionID string) (*Game, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[sessionID]
	return g, ok
}

// Create starts a new session and returns its id.
func (m *Manager) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		g, err := m.factory(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		m.mu.Lock()
		m.games[id] = g
		m.mu.Unlock()
		return nil
	})
	if err != nil {
		return "", err
	}
	m.logger.Info("session created", "session_id", id)
	return id, nil
}

// Do runs fn with exclusive access to the game of the session.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(context.Context, *Game) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		g, ok := m.game(sessionID)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
		}
		return fn(ctx, g)
	})
}

// Delete closes the game and forgets the session.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		g, ok := m.games[sessionID]
		delete(m.games, sessionID)
		m.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
		}
		m.logger.Info("session deleted", "session_id", sessionID)
		return g.Close()
	})
}

// List returns the running session ids in lexical order.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close deletes every session.
func (m *Manager) Close(ctx context.Context) {
	for _, id := range m.List() {
		if err := m.Delete(ctx, id); err != nil {
			m.logger.Warn("failed to close session", "session_id", id, "err", err)
		}
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	return fn(ctx)
}
