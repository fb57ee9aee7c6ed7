package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/questline/pkg/adapters/memory"
	"github.com/aretw0/questline/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewAnswerBackend()
	mw, err := middleware.NewPIIMiddleware([]string{"password", "^email$"})
	require.NoError(t, err)
	secure := mw(underlying)

	ctx := context.Background()
	require.NoError(t, secure.Put(ctx, "ns", "player_name", "Ada"))
	require.NoError(t, secure.Put(ctx, "ns", "vault_password", "secret123"))
	require.NoError(t, secure.Put(ctx, "ns", "email", "ada@example.org"))
	require.NoError(t, secure.Put(ctx, "ns", "email_opt_in", "0"))

	loaded, err := secure.Load(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"player_name":    "Ada",
		"vault_password": middleware.Mask,
		"email":          middleware.Mask,
		"email_opt_in":   "0",
	}, loaded)
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	underlying := memory.NewAnswerBackend()
	pii, err := middleware.NewPIIMiddleware([]string{"password"})
	require.NoError(t, err)
	enc := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	// PII sees the write first, so the mask is what gets encrypted.
	secure := middleware.Chain(underlying, pii, enc)
	ctx := context.Background()
	require.NoError(t, secure.Put(ctx, "ns", "password", "hunter2"))

	raw, err := underlying.Load(ctx, "ns")
	require.NoError(t, err)
	assert.NotEqual(t, middleware.Mask, raw["password"])

	loaded, err := secure.Load(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded["password"])
}
