// internal/errs/errs.go
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every service. Handlers map them to HTTP
// statuses; callers must not retry anything except ErrRetryable.
var (
	ErrNotFound           = errors.New("record not found")
	ErrOutOfStock         = errors.New("no available copies")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrAlreadyReturned    = errors.New("loan already returned")
	ErrConflict           = errors.New("conflicting state")
	ErrDuplicateRequest   = errors.New("a pending request for this book already exists")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoanLimitReached   = errors.New("active loan limit reached")
	ErrRateLimited        = errors.New("rate limit exceeded")

	// ErrRetryable means the transaction timed out waiting for a lock and
	// never partially committed; the whole operation is safe to retry.
	ErrRetryable = errors.New("operation timed out, retry")
)

// ValidationError reports malformed input. It is raised before any store
// access, so a failed validation never touches the database.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validation builds a *ValidationError for a single field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
