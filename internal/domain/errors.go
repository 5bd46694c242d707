package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and repositories.
var (
	// ErrNotFound means the referenced record does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller is not allowed to perform the
	// operation (e.g. editing a meeting they did not create).
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports caller-correctable input problems: malformed time
// text, start >= end, an empty or ineligible participant set. No state has
// changed when it is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError returns a ValidationError with the given reason.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// ConflictError means one or more participants are already booked in an
// overlapping window. It carries the full conflict list; no partial write
// has occurred when it is returned.
type ConflictError struct {
	Conflicts []ConflictRecord
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%d scheduling conflict(s) detected", len(e.Conflicts))
}
