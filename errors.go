package authgate

import (
	"errors"
	"strings"
)

// ErrSignOutIncomplete is returned when the store rejected a sign-out; the
// session is left in place so the caller can retry.
var ErrSignOutIncomplete = errors.New("sign out did not complete")

// IsConflictError will check for unique-constraint violations across the
// drivers we care about.
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
