package wptl

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute
	BurstSize         int // Maximum burst size (default: same as RPM)
}

// NewRateLimiter creates a token bucket limiter from the config.
func NewRateLimiter(cfg RateLimitConfig) *rate.Limiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60 // Default: 60 RPM
	}

	burst := cfg.BurstSize
	if burst <= 0 {
		burst = rpm
	}

	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst)
}

// RateLimitedProvider wraps an AIProvider with rate limiting.
type RateLimitedProvider struct {
	provider AIProvider
	limiter  *rate.Limiter
}

// NewRateLimitedProvider creates a new rate-limited provider.
func NewRateLimitedProvider(provider AIProvider, cfg RateLimitConfig) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		limiter:  NewRateLimiter(cfg),
	}
}

// Translate implements AIProvider with rate limiting.
func (p *RateLimitedProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", &ProviderError{
			Message:   "rate limit wait cancelled",
			Cause:     err,
			Retryable: false,
		}
	}

	return p.provider.Translate(ctx, req)
}

// Limiter returns the underlying rate limiter for inspection.
func (p *RateLimitedProvider) Limiter() *rate.Limiter {
	return p.limiter
}

// TimeoutProvider bounds every call to the wrapped provider with a deadline.
// A call that runs out of time is reported as a retryable ProviderError.
type TimeoutProvider struct {
	provider AIProvider
	timeout  time.Duration
}

// NewTimeoutProvider wraps provider with a per-call timeout. A non-positive
// timeout disables the wrapper's deadline.
func NewTimeoutProvider(provider AIProvider, timeout time.Duration) *TimeoutProvider {
	return &TimeoutProvider{provider: provider, timeout: timeout}
}

// Translate implements AIProvider with a per-call deadline.
func (p *TimeoutProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if p.timeout <= 0 {
		return p.provider.Translate(ctx, req)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.provider.Translate(callCtx, req)
	if err != nil && callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return "", &ProviderError{
			Message:   "request timed out after " + p.timeout.String(),
			Cause:     err,
			Retryable: true,
		}
	}
	return out, err
}
