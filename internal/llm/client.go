// Package llm talks to the language model used to summarize documentation.
//
// Client is the only contract the rest of the program depends on. OpenAICompatible calls
// any chat-completions endpoint (Gemini's OpenAI-compatible API by default); Resilient
// adds a per-request timeout, bounded retry with backoff and optional request pacing.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("language model returned an empty response")

// Client generates text for a single, self-contained prompt. Calls share no
// conversation state.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
