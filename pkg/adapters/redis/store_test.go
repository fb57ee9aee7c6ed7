package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/questline/pkg/adapters/redis"
	"github.com/aretw0/questline/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisStore_AnswerBackendContract(t *testing.T) {
	store, _ := newStore(t)
	ports.RunAnswerBackendContract(t, store)
}

func TestRedisStore_CounterContract(t *testing.T) {
	store, _ := newStore(t)
	ports.RunCounterContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	store, mr := newStore(t, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "DIALOG_ANSWER", "player_name", "Ada"))

	values, err := store.Load(ctx, "DIALOG_ANSWER")
	require.NoError(t, err)
	assert.Equal(t, "Ada", values["player_name"])

	mr.FastForward(2 * time.Second)

	values, err = store.Load(ctx, "DIALOG_ANSWER")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestRedisStore_Prefix(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "DIALOG_ANSWER", "color", "red"))
	_, err := store.Increment(ctx, "MISSION/intro/step-1/done")
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:answers:DIALOG_ANSWER"), "Expected hash with custom prefix to exist")
	got, err := mr.Get("custom:app:counter:MISSION/intro/step-1/done")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
	assert.Equal(t, "red", mr.HGet("custom:app:answers:DIALOG_ANSWER", "color"))
}

func TestRedisStore_Unavailable(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))
	mr.Close()

	assert.Error(t, store.Put(ctx, "NS", "k", "v"))
	_, err := store.Increment(ctx, "k")
	assert.Error(t, err)
}
