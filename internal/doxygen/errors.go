package doxygen

import "errors"

var (
	// ErrBinaryNotFound indicates an external tool was not found on PATH.
	ErrBinaryNotFound = errors.New("binary not found")
	// ErrGeneratorNotFound indicates the doc generator executable was not found on PATH.
	ErrGeneratorNotFound = errors.New("doc generator not found")
	// ErrGeneratorFailed indicates the doc generator returned a non-zero exit status.
	ErrGeneratorFailed = errors.New("doc generator execution failed")
	// ErrGeneratorTimeout indicates the doc generator ran past its configured timeout.
	ErrGeneratorTimeout = errors.New("doc generator timed out")
	// ErrNoOutput indicates the generator exited cleanly but the entry artifact is missing.
	ErrNoOutput = errors.New("generator produced no output")
	// ErrInvalidDoxyfile indicates a configuration line could not be parsed.
	ErrInvalidDoxyfile = errors.New("invalid doxyfile")
)
