package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrPersonNotFound is returned when a referenced person does not exist.
	ErrPersonNotFound = errors.New("person not found")

	// ErrDebtNotFound is returned when a referenced debt does not exist.
	ErrDebtNotFound = errors.New("debt not found")

	// ErrNotOwned is returned when a person or debt exists but belongs to a
	// different owner. Callers surface it as forbidden without revealing
	// anything about the resource.
	ErrNotOwned = errors.New("resource not owned by requester")

	// ErrDebtConflict is returned when a concurrent writer created an active
	// debt for the same person and direction first. The operation is safe to
	// retry.
	ErrDebtConflict = errors.New("active debt already exists for person and direction")
)

// ValidationError reports malformed or out-of-range caller input. It is
// user-correctable and never fatal.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
