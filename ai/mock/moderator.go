package mock

import (
	"context"
	"strings"
	"sync"
)

// MockModerationModel is a test double for ai.ModerationModel.
// It allows custom behavior injection via function fields.
type MockModerationModel struct {
	// ModerateFunc is called by Moderate if set.
	// If nil, flags text containing any of the configured trigger words.
	ModerateFunc func(ctx context.Context, text string) (bool, error)

	// Triggers are substrings that cause the default behavior to flag text.
	Triggers []string

	mu        sync.Mutex
	callCount int
}

// NewMockModerationModel creates a mock moderation model that flags nothing
// by default. Set Triggers or ModerateFunc to control behavior.
// Note: Returns concrete type to allow test assertions via CallCount().
func NewMockModerationModel() *MockModerationModel {
	return &MockModerationModel{}
}

// Moderate reports whether the text violates content policy.
// Default behavior: flags text containing any trigger substring.
func (m *MockModerationModel) Moderate(ctx context.Context, text string) (bool, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.ModerateFunc != nil {
		return m.ModerateFunc(ctx, text)
	}

	lowered := strings.ToLower(text)
	for _, trigger := range m.Triggers {
		if strings.Contains(lowered, strings.ToLower(trigger)) {
			return true, nil
		}
	}
	return false, nil
}

// CallCount returns the number of times Moderate was called.
func (m *MockModerationModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockModerationModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.ModerateFunc = nil
	m.Triggers = nil
}
