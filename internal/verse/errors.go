package verse

import (
	"errors"
	"fmt"
)

// Pipeline error kinds. Stages wrap these sentinels with fmt.Errorf("%w")
// so callers classify with errors.Is without depending on message text.
var (
	// Validation failures: the user must correct the input.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("image exceeds maximum size")
	ErrCorrupt           = errors.New("image could not be decoded")
	ErrNotPublishable    = errors.New("record is not publishable")

	// Auth failures: credential fix required, never retried.
	ErrAuth = errors.New("upstream rejected credentials")

	// Upstream failures during extraction.
	ErrRateLimited   = errors.New("upstream rate limited the request")
	ErrUpstream      = errors.New("upstream request failed")
	ErrEmptyResponse = errors.New("model returned no text")

	// Formatter failures: model output could not be structured.
	ErrNoStructureFound = errors.New("no JSON object found in model output")
	ErrMalformedJSON    = errors.New("model output is not valid JSON")

	// Publisher failures.
	ErrTransient = errors.New("transient upstream failure")
	ErrRejected  = errors.New("remote service rejected the pin")
)

// DiagnosticError carries the raw payload that produced a failure so the
// human-in-the-loop review step can inspect and correct it manually.
type DiagnosticError struct {
	Err error
	Raw string
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%v (raw output retained for review)", e.Err)
}

func (e *DiagnosticError) Unwrap() error { return e.Err }

// WithRaw wraps err with the raw model output for diagnostics.
func WithRaw(err error, raw string) error {
	return &DiagnosticError{Err: err, Raw: raw}
}

// RawPayload returns the diagnostic payload attached to err, if any.
func RawPayload(err error) (string, bool) {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de.Raw, true
	}
	return "", false
}

// Retryable reports whether err is worth retrying. Auth and semantic
// rejections are fatal; only transient and rate-limit failures qualify.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrRateLimited)
}
