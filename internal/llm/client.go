package llm

import (
	"context"
	"fmt"
	"strings"
)

// Client is the single call the pipeline makes to a language model.
type Client interface {
	// Complete sends prompt to model and returns the raw text. An empty model means the
	// client's default. Failures are *TransportError or *EmptyResponseError; the client
	// never retries on its own.
	Complete(ctx context.Context, prompt, model string, temperature float64) (string, error)
	// Provider names the backing service.
	Provider() Provider
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a client for the configured provider
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig(ProviderOpenAI)
	}

	switch config.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(config)
	case ProviderGemini:
		return NewGeminiClient(ctx, config)
	case ProviderAnthropic:
		return NewAnthropicClient(config)
	default:
		return nil, fmt.Errorf("unsupported provider %q", config.Provider)
	}
}

// withTimeout applies the configured per-call deadline, if any.
func withTimeout(ctx context.Context, cfg *Config) (context.Context, context.CancelFunc) {
	if cfg.Timeout > 0 {
		return context.WithTimeout(ctx, cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func nonEmpty(p Provider, model, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &EmptyResponseError{Provider: p, Model: model}
	}
	return text, nil
}
