// Package ratelimit throttles API clients with one token bucket per client and endpoint.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter manages rate limiting for multiple clients.
type Limiter struct {
	mu          sync.Mutex
	entries     map[string]*entry // client:path:method -> bucket
	config      *Config
	now         func() time.Time
	cleanupStop chan struct{}
	stopOnce    sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
// A nil config disables limiting.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{Enabled: false}
	}

	l := &Limiter{
		entries: make(map[string]*entry),
		config:  config,
		now:     time.Now,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupStop = make(chan struct{})
		go l.cleanup(config.CleanupInterval)
	}

	return l
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	limit, burst := l.limitFor(endpoint, method)
	if limit == 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	key := clientID + ":" + endpoint + ":" + method
	lim := l.get(key, limit, burst, now)

	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)

	info := Info{
		Allowed:   allowed,
		Limit:     burst,
		Remaining: max(int(math.Floor(tokens)), 0),
		ResetTime: now.Add(untilFull(tokens, burst, limit)),
	}
	if !allowed {
		info.RetryAfter = untilFull(tokens, 1, limit)
	}
	return allowed, info
}

// limitFor resolves the refill rate and burst for a request. A zero limit means unlimited.
func (l *Limiter) limitFor(endpoint, method string) (rate.Limit, int) {
	cfg := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if cfg == nil {
		return rate.Limit(l.config.DefaultRate), l.config.DefaultBurst
	}
	if cfg.Limit <= 0 || cfg.Window <= 0 {
		return 0, 0
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Limit
	}
	return rate.Every(cfg.Window / time.Duration(cfg.Limit)), burst
}

func (l *Limiter) get(key string, limit rate.Limit, burst int, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(limit, burst)}
		l.entries[key] = e
	}
	e.lastAccess = now
	return e.limiter
}

// untilFull estimates how long the bucket needs to hold target tokens again.
func untilFull(tokens float64, target int, limit rate.Limit) time.Duration {
	missing := float64(target) - tokens
	if missing <= 0 || limit <= 0 {
		return 0
	}
	return time.Duration(missing / float64(limit) * float64(time.Second))
}

func (l *Limiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanupEntries()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupEntries drops limiters idle for longer than the configured TTL.
func (l *Limiter) cleanupEntries() {
	ttl := l.config.IdleTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	cutoff := l.now().Add(-ttl)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if e.lastAccess.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// size reports how many client buckets are live.
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
