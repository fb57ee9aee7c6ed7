package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/questline/pkg/adapters/memory"
	"github.com/aretw0/questline/pkg/ports"
)

// CacheNamespace is where the registration token is cached.
const CacheNamespace = "REMOTE_STORE_CACHE"

// TokenTTL is how long a registered token is trusted before registering again.
const TokenTTL = 24 * time.Hour

const (
	cacheToken  = "token"
	cacheExpire = "expire"
)

// ErrNoToken is returned when the service does not hand out a token.
var ErrNoToken = errors.New("remote store did not return a token")

// Client implements ports.Counter against the remote counter service.
// Each client registers its own token, which identifies the player to the service.
// Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	cache   ports.AnswerBackend
	keyMap  map[string]string
	now     func() time.Time
	logger  *slog.Logger

	mu      sync.Mutex
	token   string
	expire  time.Time
	checked bool
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithCache persists the token so it survives restarts.
func WithCache(b ports.AnswerBackend) Option {
	return func(cl *Client) {
		cl.cache = b
	}
}

// WithKeyMap translates local counter keys to the keys the service knows.
// Keys without an entry are sent unchanged.
func WithKeyMap(m map[string]string) Option {
	return func(cl *Client) {
		cl.keyMap = m
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(cl *Client) {
		cl.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   memory.NewAnswerBackend(),
		now:     time.Now,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResponse struct {
	Token string `json:"token"`
}

type checkResponse struct {
	OK bool `json:"ok"`
}

type valueResponse struct {
	Value int64 `json:"value"`
}

// Increment bumps key on the service and returns its new value.
func (c *Client) Increment(ctx context.Context, key string) (int64, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return 0, err
	}
	var resp valueResponse
	if err := c.call(ctx, http.MethodPost, "/inc", url.Values{"token": {token}, "key": {c.remoteKey(key)}}, &resp); err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	c.logger.Debug("counter increased", "key", key, "value", resp.Value)
	return resp.Value, nil
}

// Count reads key from the service.
func (c *Client) Count(ctx context.Context, key string) (int64, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return 0, err
	}
	var resp valueResponse
	if err := c.call(ctx, http.MethodGet, "/getc", url.Values{"token": {token}, "key": {c.remoteKey(key)}}, &resp); err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return resp.Value, nil
}

func (c *Client) remoteKey(key string) string {
	if mapped, ok := c.keyMap[key]; ok {
		return mapped
	}
	return key
}

// ensureToken returns a usable token: cached, verified once per client, or freshly registered.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" {
		c.loadCache(ctx)
	}
	if c.token == "" || c.now().After(c.expire) {
		return c.register(ctx)
	}
	if !c.checked {
		var resp checkResponse
		if err := c.call(ctx, http.MethodGet, "/check_token", url.Values{"token": {c.token}}, &resp); err != nil {
			return "", fmt.Errorf("failed to check token: %w", err)
		}
		if !resp.OK {
			c.logger.Info("cached token rejected, registering again")
			return c.register(ctx)
		}
		c.checked = true
	}
	return c.token, nil
}

func (c *Client) loadCache(ctx context.Context) {
	values, err := c.cache.Load(ctx, CacheNamespace)
	if err != nil {
		c.logger.Warn("failed to load token cache", "error", err)
		return
	}
	ms, _ := strconv.ParseInt(values[cacheExpire], 10, 64)
	c.token = values[cacheToken]
	c.expire = time.UnixMilli(ms)
}

func (c *Client) register(ctx context.Context) (string, error) {
	var resp tokenResponse
	if err := c.call(ctx, http.MethodPost, "/register", nil, &resp); err != nil {
		return "", fmt.Errorf("failed to register: %w", err)
	}
	if resp.Token == "" {
		return "", ErrNoToken
	}

	c.token = resp.Token
	c.expire = c.now().Add(TokenTTL)
	c.checked = true

	if err := c.cache.Put(ctx, CacheNamespace, cacheToken, c.token); err != nil {
		c.logger.Warn("failed to cache token", "error", err)
	}
	if err := c.cache.Put(ctx, CacheNamespace, cacheExpire, strconv.FormatInt(c.expire.UnixMilli(), 10)); err != nil {
		c.logger.Warn("failed to cache token expiry", "error", err)
	}
	c.logger.Debug("registered remote store token")
	return c.token, nil
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
