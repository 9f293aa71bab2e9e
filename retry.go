package wptl

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes a function with exponential backoff retry.
// When every attempt fails with a retryable error the last error is wrapped
// in a RetryExhaustedError.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	attempts := 0
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		// Check context before each attempt
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		attempts++
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoffDelay(cfg, attempt)):
			}
		}
	}

	return zero, &RetryExhaustedError{Attempts: attempts, Last: lastErr}
}

func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := cfg.BaseDelay * time.Duration(1<<attempt)
	if cfg.MaxDelay > 0 && (delay > cfg.MaxDelay || delay <= 0) {
		delay = cfg.MaxDelay
	}
	return delay
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	return false
}

// RetryableProvider wraps an AIProvider with retry logic.
type RetryableProvider struct {
	provider AIProvider
	config   RetryConfig
	logger   *zap.Logger
}

// NewRetryableProvider creates a new provider with retry logic.
func NewRetryableProvider(provider AIProvider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{
		provider: provider,
		config:   cfg,
		logger:   zap.NewNop(),
	}
}

// WithLogger sets the logger used to report retried attempts.
func (p *RetryableProvider) WithLogger(logger *zap.Logger) *RetryableProvider {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Translate implements AIProvider with retry logic.
func (p *RetryableProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	attempt := 0
	return WithRetry(ctx, p.config, func() (string, error) {
		attempt++
		out, err := p.provider.Translate(ctx, req)
		if err != nil && IsRetryable(err) {
			p.logger.Warn("provider call failed, will retry",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", p.config.MaxRetries),
				zap.Error(err))
		}
		return out, err
	})
}
