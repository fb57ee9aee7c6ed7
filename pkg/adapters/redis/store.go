package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.AnswerBackend (one hash per namespace) and ports.Counter (INCR) using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration of answer namespaces. Every write refreshes it.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "questline:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) answersKey(namespace string) string {
	return s.prefix + "answers:" + namespace
}

func (s *Store) counterKey(key string) string {
	return s.prefix + "counter:" + key
}

// Load returns every field of the namespace hash.
func (s *Store) Load(ctx context.Context, namespace string) (map[string]string, error) {
	values, err := s.client.HGetAll(ctx, s.answersKey(namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load answers from redis: %w", err)
	}
	return values, nil
}

// Put sets one field of the namespace hash.
func (s *Store) Put(ctx context.Context, namespace, key, value string) error {
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, s.answersKey(namespace), key, value)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.answersKey(namespace), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save answer to redis: %w", err)
	}
	return nil
}

// Clear deletes the namespace hash.
func (s *Store) Clear(ctx context.Context, namespace string) error {
	if err := s.client.Del(ctx, s.answersKey(namespace)).Err(); err != nil {
		return fmt.Errorf("failed to clear answers in redis: %w", err)
	}
	return nil
}

// Increment bumps a counter atomically.
func (s *Store) Increment(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Incr(ctx, s.counterKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter in redis: %w", err)
	}
	return n, nil
}

// Count reads a counter. Missing counters are zero.
func (s *Store) Count(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Get(ctx, s.counterKey(key)).Int64()
	if err != nil {
		if err == backend.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read counter from redis: %w", err)
	}
	return n, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
