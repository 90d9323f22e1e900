package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/autodocs/internal/config"
)

func instantSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func testLLMConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "gemini-2.0-flash",
		Timeout: 5 * time.Second,
		Retry: config.RetryConfig{
			Mode:       config.RetryBackoffExponential,
			Initial:    time.Millisecond,
			Max:        time.Millisecond,
			MaxRetries: 2,
		},
	}
}

func completion(text string) string {
	return `{"id":"c1","object":"chat.completion","created":1,"model":"gemini-2.0-flash",` +
		`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` +
		mustJSON(text) + `}}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestOpenAICompatibleGenerate(t *testing.T) {
	var gotPath, gotAuth, gotModel, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.Unmarshal(body, &req)
		gotModel = req.Model
		if len(req.Messages) == 1 {
			gotPrompt = req.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completion("A widget library."))
	}))
	defer srv.Close()

	c, err := NewOpenAICompatible(testLLMConfig(srv.URL + "/v1beta/openai/"))
	require.NoError(t, err)
	text, err := c.Generate(context.Background(), "Summarize this documentation:\n\nWidget")
	require.NoError(t, err)

	assert.Equal(t, "A widget library.", text)
	assert.Equal(t, "/v1beta/openai/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gemini-2.0-flash", gotModel)
	assert.Equal(t, "Summarize this documentation:\n\nWidget", gotPrompt)
}

func TestOpenAICompatibleRequiresKeyAndModel(t *testing.T) {
	cfg := testLLMConfig("")
	cfg.APIKey = ""
	_, err := NewOpenAICompatible(cfg)
	assert.Error(t, err)

	cfg = testLLMConfig("")
	cfg.Model = ""
	_, err = NewOpenAICompatible(cfg)
	assert.Error(t, err)
}

func TestResilientRetriesRateLimitThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, `{"error":{"message":"quota exceeded","type":"rate_limit","code":"429"}}`)
			return
		}
		_, _ = io.WriteString(w, completion("ok"))
	}))
	defer srv.Close()

	cfg := testLLMConfig(srv.URL)
	inner, err := NewOpenAICompatible(cfg)
	require.NoError(t, err)

	text, err := NewResilient(inner, cfg, WithSleeper(instantSleep)).Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestResilientDoesNotRetryUnauthorized(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"auth"}}`)
	}))
	defer srv.Close()

	cfg := testLLMConfig(srv.URL)
	inner, err := NewOpenAICompatible(cfg)
	require.NoError(t, err)

	_, err = NewResilient(inner, cfg, WithSleeper(instantSleep)).Generate(context.Background(), "p")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResilientGivesUpAfterMaxAttempts(t *testing.T) {
	mock := &MockClient{Respond: func(string) (string, error) { return "", ErrEmptyResponse }}
	cfg := testLLMConfig("")

	_, err := NewResilient(mock, cfg, WithSleeper(instantSleep)).Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Len(t, mock.Prompts(), 3)
}

func TestResilientPerAttemptTimeoutIsRetried(t *testing.T) {
	var calls int32
	slow := &MockClient{Respond: func(string) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return "", context.DeadlineExceeded
		}
		return "fine", nil
	}}
	cfg := testLLMConfig("")
	cfg.Timeout = time.Second

	text, err := NewResilient(slow, cfg, WithSleeper(instantSleep)).Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "fine", text)
}

func TestResilientStopsWhenCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mock := &MockClient{}
	_, err := NewResilient(mock, testLLMConfig(""), WithSleeper(instantSleep)).Generate(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mock.Prompts())
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(ErrEmptyResponse))
	assert.True(t, IsTransient(&timeoutError{cause: context.DeadlineExceeded}))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(errors.New("malformed")))
	assert.True(t, transientStatus(http.StatusServiceUnavailable))
	assert.True(t, transientStatus(http.StatusTooManyRequests))
	assert.False(t, transientStatus(http.StatusForbidden))
	assert.False(t, transientStatus(http.StatusBadRequest))
}

func TestMockClientEcho(t *testing.T) {
	m := &MockClient{}
	out, err := m.Generate(context.Background(), "first line\n\nrest")
	require.NoError(t, err)
	assert.Equal(t, "mock response to: first line", out)
	assert.Equal(t, []string{"first line\n\nrest"}, m.Prompts())
}
