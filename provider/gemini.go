package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ZaguanLabs/wptl"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when neither the config nor the request names a model.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider implements AIProvider using the Gemini API.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature *float32
}

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey      string        // Gemini API key (required)
	Model       string        // Default model (default: "gemini-2.0-flash")
	BaseURL     string        // Custom endpoint (optional)
	Timeout     time.Duration // HTTP client timeout (optional)
	Temperature *float32      // Sampling temperature (optional)
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, &wptl.ProviderError{Message: "gemini: API key is required"}
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimSuffix(cfg.BaseURL, "/") + "/"}
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, &wptl.ProviderError{Message: "gemini: creating client", Cause: err}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiProvider{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

// Model returns the default model id.
func (p *GeminiProvider) Model() string {
	return p.model
}

// Translate sends one batch to Gemini and returns the translated text.
func (p *GeminiProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	contents := []*genai.Content{
		genai.NewContentFromText(BuildPrompt(req), genai.RoleUser),
	}
	var config *genai.GenerateContentConfig
	if p.temperature != nil {
		config = &genai.GenerateContentConfig{Temperature: p.temperature}
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", geminiError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", &wptl.ProviderError{Message: "gemini: unexpected response format"}
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &wptl.ProviderError{Message: "gemini: unexpected response format"}
	}
	return text, nil
}

// geminiError maps SDK errors onto ProviderError, keeping the backend's message.
func geminiError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &wptl.ProviderError{Message: "gemini: request aborted", Cause: err}
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiError(apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiError(*apiErrPtr, err)
	}

	return &wptl.ProviderError{
		Message:   "gemini: API call failed",
		Cause:     err,
		Retryable: true,
	}
}

func apiError(apiErr genai.APIError, cause error) error {
	msg := apiErr.Message
	if msg == "" {
		msg = apiErr.Status
	}
	return &wptl.ProviderError{
		Message:    "Translation API error: " + msg,
		Cause:      cause,
		StatusCode: apiErr.Code,
		Retryable:  retryableStatus(apiErr.Code),
	}
}

// Verify GeminiProvider implements AIProvider
var _ AIProvider = (*GeminiProvider)(nil)
