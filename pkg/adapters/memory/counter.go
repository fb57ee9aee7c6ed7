package memory

import (
	"context"
	"sort"
	"sync"
)

// Counter implements ports.Counter in memory.
// Safe for concurrent use.
type Counter struct {
	counts map[string]int64
	mu     sync.Mutex
}

// NewCounter creates a new in-memory counter.
func NewCounter() *Counter {
	return &Counter{
		counts: make(map[string]int64),
	}
}

// Increment bumps key and returns the new value.
func (c *Counter) Increment(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
	return c.counts[key], nil
}

// Count returns the value of key.
func (c *Counter) Count(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[key], nil
}

// Keys returns every counter that was incremented, sorted.
func (c *Counter) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.counts))
	for k := range c.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
