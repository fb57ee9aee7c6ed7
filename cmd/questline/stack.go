package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/questline/internal/config"
	"github.com/aretw0/questline/pkg/adapters/file"
	"github.com/aretw0/questline/pkg/adapters/memory"
	"github.com/aretw0/questline/pkg/adapters/redis"
	"github.com/aretw0/questline/pkg/adapters/remote"
	"github.com/aretw0/questline/pkg/persistence/middleware"
	"github.com/aretw0/questline/pkg/ports"
	"github.com/aretw0/questline/pkg/telemetry"
)

// stack is the set of adapters a command runs on.
type stack struct {
	Backend  ports.AnswerBackend
	Counter  ports.Counter
	Recorder *telemetry.Recorder

	redis *redis.Store
}

// buildStack wires the answer backend and the counter selected by cfg.
// A Redis store is shared when both use it.
func buildStack(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stack, error) {
	s := &stack{}
	redisStore := func() (*redis.Store, error) {
		if s.redis != nil {
			return s.redis, nil
		}
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithTTL(cfg.RedisTTL))
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("redis at %s is unreachable: %w", cfg.RedisAddr, err)
		}
		s.redis = store
		return store, nil
	}

	switch cfg.AnswerBackend {
	case config.BackendMemory:
		s.Backend = memory.NewAnswerBackend()
	case config.BackendFile:
		s.Backend = file.New(cfg.DataDir)
	case config.BackendRedis:
		store, err := redisStore()
		if err != nil {
			return nil, err
		}
		s.Backend = store
	}

	if err := s.secure(cfg); err != nil {
		s.Close()
		return nil, err
	}

	switch cfg.Counter {
	case config.CounterMemory:
		s.Counter = memory.NewCounter()
	case config.CounterRedis:
		store, err := redisStore()
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Counter = store
	case config.CounterRemote:
		s.Counter = remote.New(cfg.RemoteURL,
			remote.WithCache(s.Backend),
			remote.WithLogger(logger),
		)
	}

	if s.Counter != nil {
		s.Recorder = telemetry.New(s.Counter, telemetry.WithLogger(logger))
	}
	logger.Debug("stack ready", "backend", cfg.AnswerBackend, "counter", cfg.Counter)
	return s, nil
}

// secure wraps the answer backend with masking and encryption when configured.
func (s *stack) secure(cfg *config.Config) error {
	var mws []middleware.Middleware
	if len(cfg.PIIKeyPatterns) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.PIIKeyPatterns)
		if err != nil {
			return fmt.Errorf("invalid PII key pattern: %w", err)
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    cfg.EncryptionKey,
			FallbackKeys: cfg.FallbackKeys,
		}))
	}
	s.Backend = middleware.Chain(s.Backend, mws...)
	return nil
}

// Close flushes pending counter updates and releases connections.
func (s *stack) Close() error {
	if s.Recorder != nil {
		s.Recorder.Close()
	}
	var err error
	if s.redis != nil {
		err = errors.Join(err, s.redis.Close())
	}
	return err
}
