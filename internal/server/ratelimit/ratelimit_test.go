package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(cfg *Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.Now
	return l, clock
}

func TestLimiter_DefaultRate(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultRate: 1, DefaultBurst: 3})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("10.0.0.1", "/wines", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info := l.Allow("10.0.0.1", "/wines", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, time.Second, info.RetryAfter)

	clock.Advance(time.Second)
	allowed, _ = l.Allow("10.0.0.1", "/wines", "GET")
	assert.True(t, allowed)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultRate: 1, DefaultBurst: 1})
	defer l.Stop()

	allowed, _ := l.Allow("10.0.0.1", "/wines", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("10.0.0.1", "/wines", "GET")
	assert.False(t, allowed)

	allowed, _ = l.Allow("10.0.0.2", "/wines", "GET")
	assert.True(t, allowed)
}

func TestLimiter_EndpointConfig(t *testing.T) {
	l, clock := newTestLimiter(&Config{
		Enabled:         true,
		DefaultRate:     100,
		DefaultBurst:    100,
		EndpointConfigs: DefaultEndpointConfigs(),
	})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("client", "/wine-info", "POST")
		require.True(t, allowed)
	}
	allowed, info := l.Allow("client", "/wine-info", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 2*time.Second, info.RetryAfter)

	// a different endpoint has its own bucket
	allowed, _ = l.Allow("client", "/enrich-line", "POST")
	assert.True(t, allowed)

	clock.Advance(2 * time.Second)
	allowed, _ = l.Allow("client", "/wine-info", "POST")
	assert.True(t, allowed)
}

func TestLimiter_Unlimited(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultRate: 1, DefaultBurst: 1})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("client", "/health", "GET")
		require.True(t, allowed)
		allowed, _ = l.Allow("client", "/ping", "GET")
		require.True(t, allowed)
	}
	assert.Equal(t, 0, l.size())
}

func TestLimiter_Lists(t *testing.T) {
	cfg := NewConfig(1, 1, "10.0.0.1", "10.0.0.9")
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/wines", "GET")
		require.True(t, allowed)
	}

	allowed, info := l.Allow("10.0.0.9", "/wines", "GET")
	assert.False(t, allowed)
	assert.False(t, info.Allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	for _, l := range []*Limiter{NewLimiter(nil), NewLimiter(NewConfig(0, 5, "", ""))} {
		for i := 0; i < 20; i++ {
			allowed, _ := l.Allow("client", "/wine-info", "POST")
			require.True(t, allowed)
		}
		l.Stop()
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultRate: 1, DefaultBurst: 1, IdleTTL: time.Minute})
	defer l.Stop()

	l.Allow("old", "/wines", "GET")
	clock.Advance(2 * time.Minute)
	l.Allow("fresh", "/wines", "GET")

	l.cleanupEntries()
	assert.Equal(t, 1, l.size())
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultRate: 0.001, DefaultBurst: 20})
	defer l.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := l.Allow("client", "/wines", "GET")
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, allowed)
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(NewConfig(1, 1, "", ""))
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/wine-info", Method: "POST", Limit: 1, Window: time.Second},
		{Path: "/wines/", Method: "GET", Limit: 2, Window: time.Second},
		{Path: "/wines/runs/", Method: "GET", Limit: 3, Window: time.Second},
	}

	tests := []struct {
		path, method string
		wantLimit    int
		wantNil      bool
	}{
		{"/wine-info", "POST", 1, false},
		{"/wine-info", "GET", 0, true},
		{"/wines/abc", "GET", 2, false},
		{"/wines/runs/abc", "GET", 3, false},
		{"/health", "GET", 0, false},
		{"/ping", "GET", 0, false},
		{"/other", "GET", 0, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}

func TestParseIPList(t *testing.T) {
	got := parseIPList(" 10.0.0.1, ,10.0.0.2 ")
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, got)
	assert.Empty(t, parseIPList(""))
}
