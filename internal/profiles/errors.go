package profiles

import "github.com/pkg/errors"

// ErrEncryption is the distinguished error surfaced when a profiles file
// marked encrypted cannot be decrypted: missing passphrase, wrong
// passphrase, unsupported envelope version, or a corrupt field. The
// caller is expected to re-prompt and retry (spec §4.3, §7); store state
// is left unchanged on this error.
type ErrEncryption struct {
	Reason string
	Cause  error
}

func (e *ErrEncryption) Error() string {
	if e.Cause != nil {
		return "profiles encryption: " + e.Reason + ": " + e.Cause.Error()
	}
	return "profiles encryption: " + e.Reason
}

func (e *ErrEncryption) Unwrap() error { return e.Cause }

func newEncryptionError(reason string, cause error) error {
	return &ErrEncryption{Reason: reason, Cause: cause}
}

// IsEncryptionError reports whether err is, or wraps, an ErrEncryption.
func IsEncryptionError(err error) bool {
	var target *ErrEncryption
	return errors.As(err, &target)
}
