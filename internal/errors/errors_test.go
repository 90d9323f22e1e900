package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutodocsError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AutodocsError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("exit status 1"), CategoryGenerator, SeverityFatal, "doc generator failed"),
			expected: "generator (fatal): doc generator failed: exit status 1",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.err.Error())
		})
	}
}

func TestIsCategoryThroughWrapping(t *testing.T) {
	base := NoOutput("/out/html/index.html", nil)
	wrapped := fmt.Errorf("build_docs: %w", base)

	assert.True(t, IsCategory(wrapped, CategoryMissingOutput))
	assert.False(t, IsCategory(wrapped, CategoryGenerator))
	assert.False(t, IsCategory(fmt.Errorf("plain"), CategoryConfig))
	assert.Equal(t, CategoryMissingOutput, GetCategory(wrapped))
	assert.Equal(t, CategoryInternal, GetCategory(fmt.Errorf("plain")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(WrapRetryable(fmt.Errorf("429"), CategoryLLM, SeverityWarning, "transient")))
	assert.False(t, IsRetryable(LLMRequestFailed("summary", fmt.Errorf("401"), false)))
	assert.True(t, IsRetryable(LLMRequestFailed("summary", fmt.Errorf("429"), true)))
	assert.False(t, IsRetryable(fmt.Errorf("standard error")))
}

func TestConvenienceFunctions(t *testing.T) {
	t.Run("ConfigRequired", func(t *testing.T) {
		err := ConfigRequired("GEMINI_API_KEY")
		assert.Equal(t, CategoryConfig, err.Category)
		assert.Equal(t, SeverityFatal, err.Severity)
		assert.Equal(t, "GEMINI_API_KEY", err.Context["field"])
	})

	t.Run("NoOutput", func(t *testing.T) {
		err := NoOutput("index.html", nil)
		assert.Equal(t, "generator produced no output", err.Message)
		assert.Equal(t, CategoryMissingOutput, err.Category)
	})

	t.Run("GeneratorFailed keeps cause", func(t *testing.T) {
		cause := fmt.Errorf("exit status 2")
		err := GeneratorFailed("doxygen", cause)
		assert.True(t, stdErrors.Is(err, cause))
		assert.Equal(t, "doxygen", err.Context["binary"])
	})
}

func TestCLIErrorAdapter(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, 0},
		{"usage", UsageError("expected one argument"), 2},
		{"config", ConfigRequired("GEMINI_API_KEY"), 7},
		{"llm", LLMRequestFailed("summary", fmt.Errorf("quota"), false), 8},
		{"storage", StorageFailed("upload", fmt.Errorf("denied"), false), 8},
		{"generator", GeneratorFailed("doxygen", fmt.Errorf("exit 1")), 11},
		{"missing output", NoOutput("index.html", nil), 11},
		{"internal", InternalError("boom", nil), 10},
		{"plain", fmt.Errorf("plain"), 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.code, adapter.ExitCodeFor(c.err))
		})
	}

	var out bytes.Buffer
	code := adapter.Handle(ConfigRequired("GEMINI_API_KEY"), &out)
	require.Equal(t, 7, code)
	assert.Equal(t, "required configuration missing: GEMINI_API_KEY\n", out.String())
}

func TestFormatErrorFlagsTransientFailures(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)
	assert.Equal(t,
		"llm: language model request failed: 429 (transient, retry later)",
		adapter.FormatError(LLMRequestFailed("summary", fmt.Errorf("429"), true)))
	assert.Equal(t,
		"storage: blob storage operation failed: denied",
		adapter.FormatError(StorageFailed("upload", fmt.Errorf("denied"), false)))
}
