package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	data   map[string]string
	getErr error
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string)}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.sets++
	m.data[key] = value
	return nil
}

type countingClient struct {
	calls int
	text  string
	err   error
}

func (c *countingClient) Complete(context.Context, string, string, float64) (string, error) {
	c.calls++
	return c.text, c.err
}

func (c *countingClient) Provider() Provider { return ProviderOpenAI }
func (c *countingClient) Close() error       { return nil }

func TestCachedClient_HitsCacheOnRepeat(t *testing.T) {
	next := &countingClient{text: `{"region": "Napa"}`}
	cache := newMemoryCache()
	client := NewCachedClient(next, cache, time.Hour, nil)

	first, err := client.Complete(t.Context(), "prompt", "gpt-4o-mini", 0.2)
	require.NoError(t, err)
	second, err := client.Complete(t.Context(), "prompt", "gpt-4o-mini", 0.2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, cache.sets)
}

func TestCachedClient_DifferentTemperatureMisses(t *testing.T) {
	next := &countingClient{text: "x"}
	client := NewCachedClient(next, newMemoryCache(), time.Hour, nil)

	_, _ = client.Complete(t.Context(), "prompt", "m", 0.2)
	_, _ = client.Complete(t.Context(), "prompt", "m", 0.7)

	assert.Equal(t, 2, next.calls)
}

func TestCachedClient_ErrorsAreNotCached(t *testing.T) {
	next := &countingClient{err: &TransportError{Provider: ProviderOpenAI, Message: "boom"}}
	cache := newMemoryCache()
	client := NewCachedClient(next, cache, time.Hour, nil)

	_, err := client.Complete(t.Context(), "prompt", "m", 0)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 0, cache.sets)
}

func TestCachedClient_CacheFailureFallsThrough(t *testing.T) {
	next := &countingClient{text: "ok"}
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	client := NewCachedClient(next, cache, time.Hour, nil)

	text, err := client.Complete(t.Context(), "prompt", "m", 0)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 1, next.calls)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey(ProviderOpenAI, "m", 0.2, "p")
	assert.Len(t, a, 64)
	assert.Equal(t, a, CacheKey(ProviderOpenAI, "m", 0.2, "p"))
	assert.NotEqual(t, a, CacheKey(ProviderGemini, "m", 0.2, "p"))
	assert.NotEqual(t, a, CacheKey(ProviderOpenAI, "m", 0.2, "p2"))
}
