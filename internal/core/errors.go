package core

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned by session lookups for unknown IDs.
var ErrSessionNotFound = errors.New("session not found")

// ValidationError rejects malformed input before a turn or query is
// started. It is the only error surfaced to callers verbatim.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
