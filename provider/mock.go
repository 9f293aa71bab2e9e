package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ZaguanLabs/wptl"
)

// MockProvider is a mock AI provider for testing. Each part of a batch is
// looked up in Translations; unknown parts come back bracketed.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	Respond      func(req TranslateRequest) (string, error)
	Err          error // Returned from every call when set

	mu       sync.Mutex
	requests []TranslateRequest
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                "Hola",
			"World":                "Mundo",
			"Hello World":          "Hola Mundo",
			"Hello world":          "Hola mundo",
			"Welcome to our site.": "Bienvenido a nuestro sitio.",
		},
	}
}

// Translate returns mock translations.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if m.Respond != nil {
		return m.Respond(req)
	}

	parts := strings.Split(req.Text, wptl.BatchDelimiter)
	for i, part := range parts {
		if translation, ok := m.Translations[part]; ok {
			parts[i] = translation
		} else {
			parts[i] = fmt.Sprintf("[%s]", part)
		}
	}
	return strings.Join(parts, wptl.BatchDelimiter), nil
}

// CallCount returns the number of Translate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every request received.
func (m *MockProvider) Requests() []TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TranslateRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Reset clears recorded requests.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	m.requests = nil
	m.mu.Unlock()
}

// Verify MockProvider implements AIProvider
var _ AIProvider = (*MockProvider)(nil)
