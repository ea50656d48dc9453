package provider

import (
	"context"
	"strings"
	"sync"
)

// MockProvider is a mock transliteration model for testing.
type MockProvider struct {
	mu sync.Mutex

	Outputs     map[string]string          // Map of source text to output
	Fail        func(texts []string) error // Optional failure hook, consulted on every call
	CallCount   int                        // Number of times Transliterate was called
	LastRequest *TransliterateRequest      // Last request received
}

// NewMockProvider creates a new mock model with a few Tamil outputs.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Outputs: map[string]string{
			"ரோம்":  "rom",
			"செல்ல": "sella",
			"செல்ல வேண்டும்.":      "sella vendum.",
			"ரோம் செல்ல வேண்டும்.": "rom sella vendum.",
			"rome செல்ல வேண்டும்.": "rome sella vendum.",
		},
	}
}

// Transliterate returns the configured outputs. Unknown texts come back
// unchanged, as a model that could not romanize them would return them.
func (m *MockProvider) Transliterate(ctx context.Context, req TransliterateRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastRequest = &req

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Fail != nil {
		if err := m.Fail(req.Texts); err != nil {
			return nil, err
		}
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if out, ok := m.Outputs[strings.TrimSpace(text)]; ok {
			results[i] = out
		} else {
			results[i] = text
		}
	}

	return results, nil
}

// Calls returns the number of Transliterate calls so far.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = nil
}

// Verify MockProvider implements Model
var _ Model = (*MockProvider)(nil)
