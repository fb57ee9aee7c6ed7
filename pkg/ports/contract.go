package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunAnswerBackendContract runs a suite of tests to verify that an AnswerBackend implementation
// adheres to the defined interface contract.
func RunAnswerBackendContract(t *testing.T, backend AnswerBackend) {
	ctx := context.Background()
	ns := "contract-test-" + time.Now().Format("20060102150405.000000")

	t.Run("Load Unknown Namespace", func(t *testing.T) {
		values, err := backend.Load(ctx, ns+"-missing")
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("Put and Load", func(t *testing.T) {
		require.NoError(t, backend.Put(ctx, ns, "player_name", "Ada"))
		require.NoError(t, backend.Put(ctx, ns, "intro/step-1/done", "true"))

		values, err := backend.Load(ctx, ns)
		require.NoError(t, err)
		assert.Equal(t, "Ada", values["player_name"])
		assert.Equal(t, "true", values["intro/step-1/done"])
	})

	t.Run("Put Overwrites", func(t *testing.T) {
		require.NoError(t, backend.Put(ctx, ns, "color", "red"))
		require.NoError(t, backend.Put(ctx, ns, "color", "blue"))

		values, err := backend.Load(ctx, ns)
		require.NoError(t, err)
		assert.Equal(t, "blue", values["color"])
	})

	t.Run("Namespaces Are Isolated", func(t *testing.T) {
		other := ns + "-other"
		require.NoError(t, backend.Put(ctx, other, "color", "green"))
		defer func() { _ = backend.Clear(ctx, other) }()

		values, err := backend.Load(ctx, ns)
		require.NoError(t, err)
		assert.NotEqual(t, "green", values["color"])
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, backend.Clear(ctx, ns))

		values, err := backend.Load(ctx, ns)
		require.NoError(t, err)
		assert.Empty(t, values)

		// Clearing twice is a no-op.
		assert.NoError(t, backend.Clear(ctx, ns))
	})
}

// RunCounterContract runs a suite of tests to verify that a Counter implementation
// adheres to the defined interface contract.
func RunCounterContract(t *testing.T, counter Counter) {
	ctx := context.Background()
	key := "MISSION/contract-" + time.Now().Format("20060102150405.000000") + "/step-1/done"

	t.Run("Unknown Counter Is Zero", func(t *testing.T) {
		n, err := counter.Count(ctx, key+"-missing")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("Increment", func(t *testing.T) {
		n, err := counter.Increment(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = counter.Increment(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = counter.Count(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("Concurrent Increments", func(t *testing.T) {
		concurrentKey := key + "-concurrent"
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := counter.Increment(ctx, concurrentKey)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		n, err := counter.Count(ctx, concurrentKey)
		require.NoError(t, err)
		assert.Equal(t, int64(10), n)
	})
}
