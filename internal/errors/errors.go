// Package errors provides a lightweight structured error type (AutodocsError)
// for category-based classification, exit code mapping and retry semantics.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of an autodocs error for classification
type ErrorCategory string

const (
	// Detected before any external call
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Doc generator subprocess
	CategoryGenerator     ErrorCategory = "generator"
	CategoryMissingOutput ErrorCategory = "missing_output"

	// Processing of the generated tree
	CategoryExtraction ErrorCategory = "extraction"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Remote services
	CategoryLLM     ErrorCategory = "llm"
	CategoryStorage ErrorCategory = "storage"

	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// AutodocsError is a structured error with category, retryability, and context
type AutodocsError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for AutodocsError
type ContextFields map[string]any

// Error implements the error interface
func (e *AutodocsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *AutodocsError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *AutodocsError) WithContext(key string, value any) *AutodocsError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new AutodocsError
func New(category ErrorCategory, severity ErrorSeverity, message string) *AutodocsError {
	return &AutodocsError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new AutodocsError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *AutodocsError {
	return &AutodocsError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapRetryable creates a new retryable AutodocsError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *AutodocsError {
	return &AutodocsError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// As finds the first AutodocsError in err's chain.
func As(err error) (*AutodocsError, bool) {
	var ae *AutodocsError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsCategory checks if an error (or anything it wraps) belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if ae, ok := As(err); ok {
		return ae.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if ae, ok := As(err); ok {
		return ae.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not an AutodocsError
func GetCategory(err error) ErrorCategory {
	if ae, ok := As(err); ok {
		return ae.Category
	}
	return CategoryInternal
}
