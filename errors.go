package wptl

import "fmt"

// TranslationError is the terminal failure of a translation run.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates an AI provider failure (API error, rate limit, bad payload).
type ProviderError struct {
	Message    string
	Cause      error
	StatusCode int  // HTTP status reported by the backend, 0 if unknown
	Retryable  bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// RetryExhaustedError is returned once every retry attempt has failed.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Last
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a content processing failure (read error, render error).
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // The type of content that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}

// SplitMismatchError reports a batch response that did not split into the
// expected number of parts. It is recovered locally and never aborts a run.
type SplitMismatchError struct {
	Batch    int
	Expected int
	Got      int
}

func (e *SplitMismatchError) Error() string {
	return fmt.Sprintf("batch %d: translation split mismatch: expected %d parts, got %d", e.Batch, e.Expected, e.Got)
}

// PublishError indicates the destination store rejected a request.
type PublishError struct {
	Operation  string // e.g. "create page"
	StatusCode int
	Message    string
	Cause      error
}

func (e *PublishError) Error() string {
	msg := fmt.Sprintf("wordpress: %s failed", e.Operation)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (%d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *PublishError) Unwrap() error {
	return e.Cause
}

// Unauthenticated reports whether the store rejected the caller's credentials.
func (e *PublishError) Unauthenticated() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
