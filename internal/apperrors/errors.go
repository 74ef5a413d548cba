package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
// Validation failures are the caller's fault and must never be retried.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the principal is not authorized to perform the
// requested action. Surfaced as-is, never retried.
var ErrForbidden = errors.New("forbidden")

// ErrConflictRetryable indicates a lock timeout or concurrent-update conflict.
// Nothing was committed, so the caller may safely retry the whole operation
// with the same idempotency key.
var ErrConflictRetryable = errors.New("conflict, retryable")

// ErrConflict indicates the resource is in a state that does not permit the
// requested operation (e.g. reversing an already reversed journal).
var ErrConflict = errors.New("conflict")

// ErrCorruption indicates that a derived balance diverged from the posting
// history. Writes against the affected account must halt pending manual
// intervention; the divergence is never silently corrected.
var ErrCorruption = errors.New("ledger corruption detected")

// ErrInternal indicates an unexpected failure inside the service.
var ErrInternal = errors.New("internal error")

// AppError carries an error code and message alongside the wrapped cause.
// Repositories use it to annotate low-level database failures.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsRetryable reports whether the error is safe to retry without risk of a
// double-applied mutation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflictRetryable)
}
