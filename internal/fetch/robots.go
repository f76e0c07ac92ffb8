package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsChecker answers robots.txt questions, fetching each host's file once.
// An unreachable robots.txt allows everything.
type RobotsChecker struct {
	options *Options

	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

// NewRobotsChecker creates a checker that fetches with opts.
func NewRobotsChecker(opts *Options) *RobotsChecker {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &RobotsChecker{options: opts, hosts: make(map[string]*robotstxt.RobotsData)}
}

// Allowed reports whether the configured user agent may fetch rawURL.
func (c *RobotsChecker) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	data := c.robotsFor(ctx, u)
	if data == nil {
		return true
	}
	return data.FindGroup(c.options.userAgent()).Test(u.RequestURI())
}

func (c *RobotsChecker) robotsFor(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	key := u.Scheme + "://" + u.Host

	c.mu.Lock()
	data, ok := c.hosts[key]
	c.mu.Unlock()
	if ok {
		return data
	}

	data, err := fetchRobots(ctx, c.options, u)
	if err != nil {
		data = nil
	}

	c.mu.Lock()
	c.hosts[key] = data
	c.mu.Unlock()
	return data
}

// Allowed is a one-off robots.txt check for rawURL.
func Allowed(ctx context.Context, rawURL string, opts *Options) bool {
	return NewRobotsChecker(opts).Allowed(ctx, rawURL)
}

func fetchRobots(ctx context.Context, opts *Options, base *url.URL) (*robotstxt.RobotsData, error) {
	robotsURL := &url.URL{
		Scheme: base.Scheme,
		Host:   base.Host,
		Path:   "/robots.txt",
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", opts.userAgent())

	resp, err := opts.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return nil, err
	}
	return robotstxt.FromStatusAndBytes(resp.StatusCode, body)
}
