package ports

import "context"

// Counter is a remote counter service.
// Callers treat it as best-effort: failures are reported but never block progression.
type Counter interface {
	// Increment bumps the counter and returns its new value.
	Increment(ctx context.Context, key string) (int64, error)

	// Count returns the current value. Unknown counters are zero.
	Count(ctx context.Context, key string) (int64, error)
}
