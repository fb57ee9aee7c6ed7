package answers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/aretw0/questline/pkg/domain"
	"github.com/aretw0/questline/pkg/ports"
)

// DefaultNamespace is the backend namespace the player answers live in.
const DefaultNamespace = "DIALOG_ANSWER"

// Listener is called after a key changed. key is the key that was written.
type Listener func(ctx context.Context, key, value string)

type subscription struct {
	id int
	fn Listener
}

// Store is the key/value answer store with change notification.
// It is not safe for concurrent use: a game session serializes every access.
type Store struct {
	values    map[string]string
	listeners map[string][]subscription
	nextID    int
	backend   ports.AnswerBackend
	namespace string
	logger    *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithBackend makes writes durable.
func WithBackend(b ports.AnswerBackend) Option {
	return func(s *Store) {
		s.backend = b
	}
}

// WithNamespace sets the backend namespace.
func WithNamespace(ns string) Option {
	return func(s *Store) {
		s.namespace = ns
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		values:    make(map[string]string),
		listeners: make(map[string][]subscription),
		namespace: DefaultNamespace,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Namespace returns the backend namespace of the store.
func (s *Store) Namespace() string {
	return s.namespace
}

// Load hydrates the store from its backend without notifying listeners.
func (s *Store) Load(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	values, err := s.backend.Load(ctx, s.namespace)
	if err != nil {
		return fmt.Errorf("failed to load answers: %w", err)
	}
	for k, v := range values {
		s.values[k] = v
	}
	s.logger.Debug("answers loaded", "namespace", s.namespace, "count", len(values))
	return nil
}

// Get returns the value of key.
func (s *Store) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key exists.
func (s *Store) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns every key in lexical order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the current answers.
func (s *Store) Snapshot() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// SetAndNotify writes key and runs its listeners, then the wildcard listeners,
// in registration order. Every listener has returned when SetAndNotify returns.
// A failing backend write is logged and does not prevent the local write.
func (s *Store) SetAndNotify(ctx context.Context, key, value string) {
	s.values[key] = value

	if s.backend != nil {
		if err := s.backend.Put(ctx, s.namespace, key, value); err != nil {
			s.logger.Error("failed to persist answer", "key", key, "error", err)
		}
	}

	s.notify(ctx, key, value, key)
	if key != domain.Wildcard {
		s.notify(ctx, key, value, domain.Wildcard)
	}
}

func (s *Store) notify(ctx context.Context, key, value, topic string) {
	// Copy so listeners may subscribe, cancel or write while we iterate.
	subs := append([]subscription(nil), s.listeners[topic]...)
	for _, sub := range subs {
		sub.fn(ctx, key, value)
	}
}

// Listen subscribes fn to changes of key, or of every key when key is domain.Wildcard.
// The returned function cancels the subscription and is safe to call more than once.
func (s *Store) Listen(key string, fn Listener) (cancel func()) {
	s.nextID++
	id := s.nextID
	s.listeners[key] = append(s.listeners[key], subscription{id: id, fn: fn})

	return func() {
		subs := s.listeners[key]
		for i, sub := range subs {
			if sub.id == id {
				s.listeners[key] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(s.listeners[key]) == 0 {
			delete(s.listeners, key)
		}
	}
}

// Clear forgets every answer locally and in the backend. Listeners are kept.
func (s *Store) Clear(ctx context.Context) error {
	s.values = make(map[string]string)
	if s.backend == nil {
		return nil
	}
	if err := s.backend.Clear(ctx, s.namespace); err != nil {
		return fmt.Errorf("failed to clear answers: %w", err)
	}
	return nil
}
