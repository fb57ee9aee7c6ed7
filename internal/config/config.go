package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/questline/internal/logging"
	"github.com/aretw0/questline/pkg/domain"
)

// Answer backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Counter sinks.
const (
	CounterNone   = "none"
	CounterMemory = "memory"
	CounterRedis  = "redis"
	CounterRemote = "remote"
)

// Config holds the settings shared by the commands. Flags override it.
type Config struct {
	Storyline     string
	World         string
	Port          string
	Environment   string
	LogLevel      slog.Level
	AnswerBackend string
	DataDir       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
	Counter       string
	RemoteURL     string
	TileSize      int
	// EncryptionKey enables at-rest encryption of answers (32 bytes).
	EncryptionKey  []byte
	FallbackKeys   [][]byte
	PIIKeyPatterns []string
}

// Load reads the QUESTLINE_* environment.
func Load() (*Config, error) {
	level, err := logging.ParseLevel(getEnv("QUESTLINE_LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	db, err := getInt("QUESTLINE_REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	tile, err := getInt("QUESTLINE_TILE_SIZE", domain.TileSize)
	if err != nil {
		return nil, err
	}
	ttl, err := time.ParseDuration(getEnv("QUESTLINE_REDIS_TTL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUESTLINE_REDIS_TTL: %w", err)
	}

	key, err := getKey("QUESTLINE_ENCRYPTION_KEY", os.Getenv("QUESTLINE_ENCRYPTION_KEY"))
	if err != nil {
		return nil, err
	}
	var fallbacks [][]byte
	for _, raw := range getList("QUESTLINE_ENCRYPTION_FALLBACK_KEYS") {
		k, err := getKey("QUESTLINE_ENCRYPTION_FALLBACK_KEYS", raw)
		if err != nil {
			return nil, err
		}
		fallbacks = append(fallbacks, k)
	}

	cfg := &Config{
		Storyline:     getEnv("QUESTLINE_STORYLINE", "storyline.yaml"),
		World:         os.Getenv("QUESTLINE_WORLD"),
		Port:          getEnv("QUESTLINE_PORT", "8080"),
		Environment:   getEnv("QUESTLINE_ENV", "development"),
		LogLevel:      level,
		AnswerBackend: getEnv("QUESTLINE_ANSWER_BACKEND", BackendFile),
		DataDir:       getEnv("QUESTLINE_DATA_DIR", ".questline"),
		RedisAddr:     getEnv("QUESTLINE_REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("QUESTLINE_REDIS_PASSWORD"),
		RedisDB:       db,
		RedisTTL:      ttl,
		Counter:       getEnv("QUESTLINE_COUNTER", CounterNone),
		RemoteURL:     os.Getenv("QUESTLINE_REMOTE_URL"),
		TileSize:      tile,

		EncryptionKey:  key,
		FallbackKeys:   fallbacks,
		PIIKeyPatterns: getList("QUESTLINE_PII_KEYS"),
	}
	return cfg, cfg.Validate()
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.AnswerBackend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown answer backend %q", c.AnswerBackend)
	}
	switch c.Counter {
	case CounterNone, CounterMemory, CounterRedis:
	case CounterRemote:
		if c.RemoteURL == "" {
			return fmt.Errorf("counter %q needs QUESTLINE_REMOTE_URL", c.Counter)
		}
	default:
		return fmt.Errorf("unknown counter %q", c.Counter)
	}
	if c.EncryptionKey != nil && len(c.EncryptionKey) != 32 {
		return fmt.Errorf("encryption key must be 32 bytes, got %d", len(c.EncryptionKey))
	}
	for i, k := range c.FallbackKeys {
		if len(k) != 32 {
			return fmt.Errorf("fallback key #%d must be 32 bytes, got %d", i, len(k))
		}
	}
	if c.TileSize <= 0 {
		return fmt.Errorf("tile size must be positive, got %d", c.TileSize)
	}
	return nil
}

// Production reports whether logs should be JSON.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// Radius is the proximity threshold: two tiles.
func (c *Config) Radius() float64 {
	return float64(2 * c.TileSize)
}

// Logger builds the application logger for the environment.
func (c *Config) Logger() *slog.Logger {
	if c.Production() {
		return logging.NewJSON(c.LogLevel)
	}
	return logging.New(c.LogLevel)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// getKey decodes a base64 key. An empty value means no key.
func getKey(name, value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	k, err := base64.StdEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return k, nil
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
