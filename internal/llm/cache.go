package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores completions by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache is a Cache backed by redis.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache connects to url (redis://...) and verifies the connection.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisCache{rdb: rdb, prefix: "wine:llm:"}, nil
}

// Get returns the cached value and whether it was present.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores value under key for ttl.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Close closes the redis connection.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// CachedClient answers repeated prompts from a cache instead of the provider.
// Cache failures are logged and never fail a call.
type CachedClient struct {
	next   Client
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedClient wraps next with cache.
func NewCachedClient(next Client, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedClient{next: next, cache: cache, ttl: ttl, logger: logger}
}

// Complete returns a cached answer when present, otherwise calls through and stores the result.
func (c *CachedClient) Complete(ctx context.Context, prompt, model string, temperature float64) (string, error) {
	key := CacheKey(c.next.Provider(), model, temperature, prompt)

	if val, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("llm.cache.get_failed", "error", err)
	} else if ok {
		c.logger.Debug("llm.cache.hit", "key", key[:12])
		return val, nil
	}

	text, err := c.next.Complete(ctx, prompt, model, temperature)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, text, c.ttl); err != nil {
		c.logger.Warn("llm.cache.set_failed", "error", err)
	}
	return text, nil
}

// Provider returns the wrapped client's provider.
func (c *CachedClient) Provider() Provider { return c.next.Provider() }

// Close closes the wrapped client.
func (c *CachedClient) Close() error { return c.next.Close() }

// CacheKey derives a stable key from everything that influences a completion.
func CacheKey(p Provider, model string, temperature float64, prompt string) string {
	h := sha256.New()
	h.Write([]byte(p))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatFloat(temperature, 'f', -1, 64)))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}
