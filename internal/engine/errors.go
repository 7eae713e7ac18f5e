package engine

import "github.com/pkg/errors"

// ErrTransientEmission wraps a recoverable emission failure (clipboard
// race, verification mismatch, a synth glitch) that the engine recovers
// from locally by falling back to per-character typing (spec §7). It is
// never returned from HandleEvent — only logged — but is exposed so
// tests and callers can assert on the fallback path.
type ErrTransientEmission struct {
	Reason string
	Cause  error
}

func (e *ErrTransientEmission) Error() string {
	if e.Cause != nil {
		return "transient emission failure: " + e.Reason + ": " + e.Cause.Error()
	}
	return "transient emission failure: " + e.Reason
}

func (e *ErrTransientEmission) Unwrap() error { return e.Cause }

func newTransientEmission(reason string, cause error) error {
	return &ErrTransientEmission{Reason: reason, Cause: cause}
}

// IsTransientEmission reports whether err is, or wraps, an
// ErrTransientEmission.
func IsTransientEmission(err error) bool {
	var target *ErrTransientEmission
	return errors.As(err, &target)
}
