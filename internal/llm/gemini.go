package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Complete generates text with the given model and temperature
func (c *GeminiClient) Complete(ctx context.Context, prompt, model string, temperature float64) (string, error) {
	modelName := c.config.ResolveModel(model)
	ctx, cancel := withTimeout(ctx, c.config)
	defer cancel()

	gm := c.client.GenerativeModel(modelName)
	gm.SetTemperature(float32(temperature))
	if c.config.MaxTokens > 0 {
		gm.SetMaxOutputTokens(int32(c.config.MaxTokens))
	}

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		te := &TransportError{Provider: ProviderGemini, Message: "generate content", Cause: err}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			te.StatusCode = apiErr.Code
		}
		return "", te
	}

	text, reason := extractTextFromResponse(resp)
	if text == "" {
		return "", &EmptyResponseError{Provider: ProviderGemini, Model: modelName, Reason: reason}
	}
	return nonEmpty(ProviderGemini, modelName, text)
}

// Provider returns ProviderGemini
func (c *GeminiClient) Provider() Provider { return ProviderGemini }

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse joins the text parts of the first candidate.
// When there is no text, the second value says why.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, string) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", "no candidates in response"
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Sprintf("no content in response (finish reason %v)", candidate.FinishReason)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", "no text parts in response"
	}
	return strings.Join(parts, ""), ""
}
