// Package telemetry reports counter increments to a remote service without blocking the game.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/questline/pkg/ports"
)

// DefaultTimeout bounds a single remote increment.
const DefaultTimeout = 5 * time.Second

// Recorder sends increments in the background. Failures are logged and swallowed.
// A nil Recorder, or one without a counter, drops every increment.
type Recorder struct {
	counter ports.Counter
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithTimeout bounds each increment.
func WithTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		r.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = l
	}
}

// New creates a recorder around counter.
func New(counter ports.Counter, opts ...Option) *Recorder {
	r := &Recorder{
		counter: counter,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Increment fires and forgets. The increment outlives ctx cancellation but not the timeout.
func (r *Recorder) Increment(ctx context.Context, key string) {
	if r == nil || r.counter == nil {
		return
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Debug("recorder closed, increment dropped", "key", key)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		n, err := r.counter.Increment(ctx, key)
		if err != nil {
			r.logger.Warn("failed to increment remote counter", "key", key, "error", err)
			return
		}
		r.logger.Debug("remote counter incremented", "key", key, "value", n)
	}()
}

// Flush waits for the in-flight increments.
func (r *Recorder) Flush() {
	if r == nil {
		return
	}
	r.wg.Wait()
}

// Close stops accepting increments and waits for the in-flight ones.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}
