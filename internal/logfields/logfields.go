package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeySection    = "section"
	KeyBinary     = "binary"
	KeyContainer  = "container"
	KeyBlob       = "blob"
	KeyURL        = "url"
	KeyAttempt    = "attempt"
	KeyVersion    = "version"
	KeyCount      = "count"
	KeyChars      = "chars"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Binary(b string) slog.Attr       { return slog.String(KeyBinary, b) }
func Container(c string) slog.Attr    { return slog.String(KeyContainer, c) }
func Blob(b string) slog.Attr         { return slog.String(KeyBlob, b) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Chars(n int) slog.Attr           { return slog.Int(KeyChars, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
