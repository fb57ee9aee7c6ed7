package ports

import "context"

// AnswerBackend defines the interface for persisting answers.
// Keys are grouped by namespace so several stores can share one backend.
type AnswerBackend interface {
	// Load returns every key of the namespace. An unknown namespace yields an empty map.
	Load(ctx context.Context, namespace string) (map[string]string, error)

	// Put writes a single key.
	Put(ctx context.Context, namespace, key, value string) error

	// Clear removes every key of the namespace.
	Clear(ctx context.Context, namespace string) error
}
