package memory

import (
	"context"
	"sync"
)

// AnswerBackend implements ports.AnswerBackend in memory.
// Safe for concurrent use.
type AnswerBackend struct {
	data map[string]map[string]string
	mu   sync.RWMutex
}

// NewAnswerBackend creates a new in-memory answer backend.
func NewAnswerBackend() *AnswerBackend {
	return &AnswerBackend{
		data: make(map[string]map[string]string),
	}
}

// Load returns a copy of the namespace so callers can't mutate the backend by reference.
func (b *AnswerBackend) Load(ctx context.Context, namespace string) (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	values := make(map[string]string, len(b.data[namespace]))
	for k, v := range b.data[namespace] {
		values[k] = v
	}
	return values, nil
}

// Put writes a single key.
func (b *AnswerBackend) Put(ctx context.Context, namespace, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ns, ok := b.data[namespace]
	if !ok {
		ns = make(map[string]string)
		b.data[namespace] = ns
	}
	ns[key] = value
	return nil
}

// Clear removes the namespace.
func (b *AnswerBackend) Clear(ctx context.Context, namespace string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, namespace)
	return nil
}
