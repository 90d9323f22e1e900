package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if ae, ok := As(err); ok {
		return exitCodeFromCategory(ae.Category)
	}
	return 1
}

func exitCodeFromCategory(c ErrorCategory) int {
	switch c {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryConfig:
		return 7
	case CategoryLLM, CategoryStorage:
		return 8 // External system error
	case CategoryGenerator, CategoryMissingOutput, CategoryExtraction, CategoryFileSystem:
		return 11 // Build error
	case CategoryInternal:
		return 10
	default:
		return 1
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	ae, ok := As(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return ae.Error()
	}
	switch ae.Category {
	case CategoryConfig, CategoryValidation:
		if field, ok := ae.Context["field"]; ok {
			return fmt.Sprintf("%s: %v", ae.Message, field)
		}
		return ae.Message
	default:
		msg := fmt.Sprintf("%s: %s", ae.Category, ae.Message)
		if ae.Cause != nil {
			msg = fmt.Sprintf("%s: %v", msg, ae.Cause)
		}
		if IsRetryable(err) {
			msg += " (transient, retry later)"
		}
		return msg
	}
}

// Handle logs the error when warranted, prints it to w and returns the exit code.
func (a *CLIErrorAdapter) Handle(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	if a.shouldLog(err) {
		a.logError(err)
	}
	_, _ = fmt.Fprintln(w, a.FormatError(err))
	return a.ExitCodeFor(err)
}

func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	if ae, ok := As(err); ok {
		return ae.Category == CategoryInternal || ae.Severity == SeverityFatal
	}
	return true
}

func (a *CLIErrorAdapter) logError(err error) {
	ae, ok := As(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}
	attrs := []slog.Attr{slog.String("category", string(ae.Category))}
	if ae.Retryable {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	for k, v := range ae.Context {
		attrs = append(attrs, slog.Any(k, v))
	}
	if ae.Cause != nil {
		attrs = append(attrs, slog.String("cause", ae.Cause.Error()))
	}
	a.logger.LogAttrs(context.Background(), levelFromSeverity(ae.Severity), ae.Message, attrs...)
}

func levelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
