package config

import (
	"log/slog"
	"strings"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// NormalizeLogLevel maps raw input to a level; unknown values become info.
func NormalizeLogLevel(raw string) LogLevel {
	switch l := LogLevel(normalizeToken(raw)); l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return l
	case "warning":
		return LogLevelWarn
	default:
		return LogLevelInfo
	}
}

// SlogLevel converts to the slog level.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// NormalizeLogFormat maps raw input to a format; unknown values become text.
func NormalizeLogFormat(raw string) LogFormat {
	if LogFormat(normalizeToken(raw)) == LogFormatJSON {
		return LogFormatJSON
	}
	return LogFormatText
}

func normalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
