package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client over the messages API.
type AnthropicClient struct {
	client anthropic.Client
	config *Config
}

// NewAnthropicClient creates a client.
func NewAnthropicClient(config *Config) (*AnthropicClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	)

	return &AnthropicClient{
		client: client,
		config: config,
	}, nil
}

// Complete sends a single user message and joins the text blocks of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, prompt, model string, temperature float64) (string, error) {
	modelName := c.config.ResolveModel(model)
	ctx, cancel := withTimeout(ctx, c.config)
	defer cancel()

	maxTokens := c.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(modelName),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		te := &TransportError{Provider: ProviderAnthropic, Message: "create message", Cause: err}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			te.StatusCode = apiErr.StatusCode
		}
		return "", te
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	return nonEmpty(ProviderAnthropic, modelName, sb.String())
}

// Provider returns ProviderAnthropic
func (c *AnthropicClient) Provider() Provider { return ProviderAnthropic }

// Close is a no-op.
func (c *AnthropicClient) Close() error { return nil }
