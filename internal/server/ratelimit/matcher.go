package ratelimit

import (
	"net/http"
	"strings"
)

// probes are never throttled
var probes = map[string]bool{
	"/health": true,
	"/ping":   true,
}

// MatchEndpoint returns the config governing method and path, or nil when the
// default rate applies. An exact path wins; otherwise the longest config path
// ending in "/" that prefixes the request path is used, so "/wines/" covers
// "/wines/42". Probes get a zero-limit config, which means unlimited.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodGet && probes[path] {
		return &EndpointConfig{Path: path, Method: method}
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			if best == nil || len(c.Path) > len(best.Path) {
				best = c
			}
		}
	}
	return best
}
