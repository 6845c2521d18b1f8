/*
errors.go - Centralized error types for the ledger engine

ERROR CATEGORIES:
  1. Validation errors - invalid user input at a boundary; always
     recoverable, nothing is mutated.
  2. Not-found errors - a referenced record is missing where that is an
     actual failure (transfer conversion, forecast conversion). Note that
     dangling linkedExpenseId / recurringId references are NOT errors:
     reconciliation and the materializer treat them as "contributes
     nothing", silently.

USAGE:
  Callers classify with errors.Is:

    if errors.Is(err, ledger.ErrValidation) { ... 400 ... }
    if errors.Is(err, ledger.ErrNotFound)   { ... 404 ... }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all boundary validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced operation or item does
	// not exist and the caller asked for it explicitly.
	ErrNotFound = errors.New("record not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError describes why an input was rejected. The operation is
// not applied and no state is mutated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalidf builds a field-scoped validation error.
func Invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsClientError reports whether the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}
