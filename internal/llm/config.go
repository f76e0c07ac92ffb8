// Package llm provides the completion client abstraction and its provider implementations.
package llm

import (
	"fmt"
	"strings"
	"time"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOpenAI is the OpenAI chat completions API
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderAnthropic is the Anthropic messages API
	ProviderAnthropic Provider = "anthropic"
)

// DefaultTemperature keeps answers close to deterministic.
const DefaultTemperature = 0.2

// DefaultMaxTokens bounds one completion; a full record is well under this.
const DefaultMaxTokens = 1024

var defaultModels = map[Provider]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderGemini:    "gemini-2.5-flash",
	ProviderAnthropic: "claude-3-5-haiku-20241022",
}

// Config holds provider settings for a completion client
type Config struct {
	Provider  Provider
	APIKey    string
	BaseURL   string        // optional, OpenAI-compatible endpoints only
	Model     string        // default model when a call passes ""
	MaxTokens int64
	Timeout   time.Duration // per call; 0 means no client-side deadline
}

// ParseProvider validates a configured provider name.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "":
		return ProviderOpenAI, nil
	case ProviderOpenAI, ProviderGemini, ProviderAnthropic:
		return p, nil
	default:
		return "", fmt.Errorf("unknown LLM provider %q", s)
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(p Provider) string {
	return defaultModels[p]
}

// DefaultConfig returns the configuration for a provider with its default model.
func DefaultConfig(p Provider) *Config {
	return &Config{
		Provider:  p,
		Model:     DefaultModel(p),
		MaxTokens: DefaultMaxTokens,
	}
}

// ResolveModel picks the call's model, falling back to the configured one.
func (c *Config) ResolveModel(model string) string {
	if model != "" {
		return model
	}
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel(c.Provider)
}

// WithModel returns a copy of the config using model by default.
func (c *Config) WithModel(model string) *Config {
	cp := *c
	cp.Model = model
	return &cp
}
