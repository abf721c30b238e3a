package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests.
type MockClient struct {
	respond func(prompt string) (string, error)
	calls   []string
	mu      sync.Mutex
}

// NewMockClient returns a client answering every prompt with respond.
func NewMockClient(respond func(prompt string) (string, error)) *MockClient {
	return &MockClient{respond: respond}
}

// NewStaticMockClient returns a client that always answers text.
func NewStaticMockClient(text string) *MockClient {
	return NewMockClient(func(string) (string, error) { return text, nil })
}

// Complete records the prompt and returns the scripted answer.
func (m *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, prompt)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.respond(prompt)
}

// Calls returns a copy of the prompts received so far.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
