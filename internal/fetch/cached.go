package fetch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// DefaultPageCacheTTL is how long a fetched page stays fresh. Restaurant menus change weekly at most.
const DefaultPageCacheTTL = 24 * time.Hour

// PageCache stores fetched pages by URL. llm.RedisCache satisfies it.
type PageCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedFetcher wraps URL fetching with a page cache. Only successful fetches are cached.
type CachedFetcher struct {
	cache    PageCache
	options  *Options
	cacheTTL time.Duration
	logger   *slog.Logger
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL time.Duration
	Options  *Options
	Logger   *slog.Logger
}

// NewCachedFetcher creates a new cached fetcher. A nil cache fetches every time.
func NewCachedFetcher(cache PageCache, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = &CachedFetcherConfig{}
	}
	f := &CachedFetcher{
		cache:    cache,
		options:  config.Options,
		cacheTTL: config.CacheTTL,
		logger:   config.Logger,
	}
	if f.options == nil {
		f.options = DefaultOptions()
	}
	if f.cacheTTL <= 0 {
		f.cacheTTL = DefaultPageCacheTTL
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool
}

type cachedPage struct {
	HTML        string `json:"html"`
	ContentType string `json:"content_type"`
}

// Fetch retrieves a URL, answering from the cache when a fresh copy exists.
// Cache failures are logged and fall through to the network.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	key := "page:" + urlStr

	if f.cache != nil {
		val, ok, err := f.cache.Get(ctx, key)
		switch {
		case err != nil:
			f.logger.Warn("fetch.cache.get_failed", "url", urlStr, "error", err)
		case ok:
			var page cachedPage
			if err := json.Unmarshal([]byte(val), &page); err == nil {
				f.logger.Debug("fetch.cache.hit", "url", urlStr)
				return &CachedResult{
					Result: &Result{
						URL:         urlStr,
						HTML:        page.HTML,
						ContentType: page.ContentType,
						StatusCode:  200,
					},
					FromCache: true,
				}, nil
			}
		}
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		data, _ := json.Marshal(cachedPage{HTML: result.HTML, ContentType: result.ContentType})
		if err := f.cache.Set(ctx, key, string(data), f.cacheTTL); err != nil {
			f.logger.Warn("fetch.cache.set_failed", "url", urlStr, "error", err)
		}
	}
	return &CachedResult{Result: result}, nil
}

// Get implements Getter.
func (f *CachedFetcher) Get(ctx context.Context, urlStr string) (*Result, error) {
	res, err := f.Fetch(ctx, urlStr)
	if err != nil {
		return nil, err
	}
	return res.Result, nil
}

// Getter fetches a page. Discovery and ingestion take one so tests and caches can stand in.
type Getter interface {
	Get(ctx context.Context, urlStr string) (*Result, error)
}

// HTTPGetter fetches straight from the network.
type HTTPGetter struct {
	Options *Options
}

// Get implements Getter.
func (g HTTPGetter) Get(ctx context.Context, urlStr string) (*Result, error) {
	return URL(ctx, urlStr, g.Options)
}
