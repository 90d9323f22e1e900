package errors

// Convenience functions for common error patterns

// Config errors

func ConfigRequired(field string) *AutodocsError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ConfigInvalid(field, reason string) *AutodocsError {
	return New(CategoryConfig, SeverityFatal, "invalid configuration").
		WithContext("field", field).
		WithContext("reason", reason)
}

func ConfigLoadFailed(path string, cause error) *AutodocsError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "failed to load configuration file").
		WithContext("path", path)
}

func UsageError(message string) *AutodocsError {
	return New(CategoryValidation, SeverityFatal, message)
}

// Generator errors

func GeneratorFailed(binary string, cause error) *AutodocsError {
	return Wrap(cause, CategoryGenerator, SeverityFatal, "doc generator failed").
		WithContext("binary", binary)
}

func NoOutput(entry string, cause error) *AutodocsError {
	return Wrap(cause, CategoryMissingOutput, SeverityFatal, "generator produced no output").
		WithContext("entry", entry)
}

// Extraction errors

func ExtractionFailed(path string, cause error) *AutodocsError {
	return Wrap(cause, CategoryExtraction, SeverityFatal, "extraction failed").
		WithContext("path", path)
}

func FileSystemError(operation, path string, cause error) *AutodocsError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "filesystem operation failed").
		WithContext("operation", operation).
		WithContext("path", path)
}

// Remote service errors

// LLMRequestFailed marks the error retryable when the cause was transient (rate limit,
// timeout, 5xx) so a later rerun can be expected to succeed.
func LLMRequestFailed(section string, cause error, transient bool) *AutodocsError {
	const msg = "language model request failed"
	if transient {
		return WrapRetryable(cause, CategoryLLM, SeverityFatal, msg).WithContext("section", section)
	}
	return Wrap(cause, CategoryLLM, SeverityFatal, msg).WithContext("section", section)
}

// StorageFailed reports a blob store failure; transient marks failures that outlived
// the retry budget but may succeed on a later run.
func StorageFailed(operation string, cause error, transient bool) *AutodocsError {
	const msg = "blob storage operation failed"
	if transient {
		return WrapRetryable(cause, CategoryStorage, SeverityFatal, msg).WithContext("operation", operation)
	}
	return Wrap(cause, CategoryStorage, SeverityFatal, msg).WithContext("operation", operation)
}

// Internal errors

func InternalError(message string, cause error) *AutodocsError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
