package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client over the chat completions API.
type OpenAIClient struct {
	client openai.Client
	config *Config
}

// NewOpenAIClient creates a client. BaseURL allows OpenAI-compatible endpoints.
func NewOpenAIClient(config *Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		config: config,
	}, nil
}

// Complete sends a single user message and returns the first choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, prompt, model string, temperature float64) (string, error) {
	modelName := c.config.ResolveModel(model)
	ctx, cancel := withTimeout(ctx, c.config)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
	}
	if c.config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(c.config.MaxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		te := &TransportError{Provider: ProviderOpenAI, Message: "chat completion", Cause: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			te.StatusCode = apiErr.StatusCode
		}
		return "", te
	}

	if len(resp.Choices) == 0 {
		return "", &EmptyResponseError{Provider: ProviderOpenAI, Model: modelName, Reason: "no choices in response"}
	}
	return nonEmpty(ProviderOpenAI, modelName, resp.Choices[0].Message.Content)
}

// Provider returns ProviderOpenAI
func (c *OpenAIClient) Provider() Provider { return ProviderOpenAI }

// Close is a no-op; the HTTP client holds no resources worth releasing.
func (c *OpenAIClient) Close() error { return nil }
