package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultRate     float64 // requests per second for endpoints without their own entry
	DefaultBurst    int
	CleanupInterval time.Duration
	IdleTTL         time.Duration // limiters unused this long are dropped by cleanup
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds the limiter configuration for the API from the server's
// default rate and burst. A non-positive rate disables limiting.
func NewConfig(ratePerSecond float64, burst int, whitelist, blacklist string) *Config {
	if ratePerSecond <= 0 {
		return &Config{Enabled: false}
	}
	if burst <= 0 {
		burst = 1
	}
	return &Config{
		Enabled:         true,
		DefaultRate:     ratePerSecond,
		DefaultBurst:    burst,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       parseIPList(whitelist),
		Blacklist:       parseIPList(blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Model-backed lookups are the expensive ones
		{Path: "/wine-info", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/enrich-line", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// Store reads fall through to the default rate
	}
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}
