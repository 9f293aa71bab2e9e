package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/ZaguanLabs/wptl"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements AIProvider using OpenAI's API or any
// OpenAI-compatible endpoint.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Model returns the default model id.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Translate translates one batch using a chat completion.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", nil
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)},
		},
		Temperature: p.temperature,
	})
	if err != nil {
		return "", openAIError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &wptl.ProviderError{
			Message:   "openai: unexpected response format",
			Retryable: true,
		}
	}

	return resp.Choices[0].Message.Content, nil
}

func openAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &wptl.ProviderError{
			Message:    "Translation API error: " + apiErr.Message,
			Cause:      err,
			StatusCode: apiErr.HTTPStatusCode,
			Retryable:  retryableStatus(apiErr.HTTPStatusCode),
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &wptl.ProviderError{
			Message:    "openai: request failed",
			Cause:      err,
			StatusCode: reqErr.HTTPStatusCode,
			Retryable:  retryableStatus(reqErr.HTTPStatusCode),
		}
	}
	return &wptl.ProviderError{
		Message:   "OpenAI API call failed",
		Cause:     err,
		Retryable: isRetryableError(err),
	}
}

func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
		"eof",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements AIProvider
var _ AIProvider = (*OpenAIProvider)(nil)
