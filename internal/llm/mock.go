package llm

import (
	"context"
	"strings"
	"sync"
)

// MockClient is an offline Client for tests and dry runs. Respond, when set, decides
// the answer; otherwise the first line of the prompt is echoed back.
type MockClient struct {
	Respond func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.Respond != nil {
		return m.Respond(prompt)
	}
	first, _, _ := strings.Cut(prompt, "\n")
	return "mock response to: " + first, nil
}

// Prompts returns the prompts received so far.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
