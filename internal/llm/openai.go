package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"git.home.luguber.info/inful/autodocs/internal/config"
)

// OpenAICompatible implements Client with the openai-go SDK (chat completions).
type OpenAICompatible struct {
	client openai.Client
	model  string
}

// NewOpenAICompatible builds a client for cfg. SDK-level retries are disabled; Resilient
// owns the retry policy.
func NewOpenAICompatible(cfg config.LLMConfig, extra ...option.RequestOption) (*OpenAICompatible, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("language model api key missing")
	}
	if cfg.Model == "" {
		return nil, errors.New("language model is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)
	return &OpenAICompatible{client: openai.NewClient(opts...), model: cfg.Model}, nil
}

func (o *OpenAICompatible) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
