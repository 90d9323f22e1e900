package config

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// NormalizeRetryBackoff converts arbitrary user input (case-insensitive) into a typed mode, returning empty string for unknown.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	switch RetryBackoffMode(normalizeToken(raw)) {
	case RetryBackoffFixed:
		return RetryBackoffFixed
	case RetryBackoffLinear:
		return RetryBackoffLinear
	case RetryBackoffExponential:
		return RetryBackoffExponential
	default:
		return ""
	}
}
