package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/npc-engine/pkg/narrative"
)

// MockNarrator is a mock implementation of narrative.Generator for testing
type MockNarrator struct {
	GenerateTextFunc func(ctx context.Context, p narrative.Prompt) (string, error)

	// Track calls for testing
	GenerateTextCalls []narrative.Prompt

	mu sync.Mutex // protects all fields above
}

var _ narrative.Generator = (*MockNarrator)(nil)

// NewMockNarrator creates a new mock narrator
func NewMockNarrator() *MockNarrator {
	return &MockNarrator{
		GenerateTextCalls: make([]narrative.Prompt, 0),
	}
}

// GenerateText records the prompt and delegates to GenerateTextFunc
func (m *MockNarrator) GenerateText(ctx context.Context, p narrative.Prompt) (string, error) {
	m.mu.Lock()
	m.GenerateTextCalls = append(m.GenerateTextCalls, p)
	fn := m.GenerateTextFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, p)
	}

	// Default behavior - a fixed sentence
	return "They exchange a few words.", nil
}

// CallCount returns how many prompts have been received.
func (m *MockNarrator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateTextCalls)
}

// Reset clears all recorded calls
func (m *MockNarrator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateTextCalls = make([]narrative.Prompt, 0)
}
