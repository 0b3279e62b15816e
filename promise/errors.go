/*
errors.go - Centralized error types for the promise engine

PURPOSE:
  All engine error types in one place. Business outcomes (shortage,
  inaccessible supply) are NOT errors - they are fields on the returned
  Promise. Errors here cover only structurally invalid requests: a
  syntactically valid request always yields a well-formed Promise.

USAGE:
  Callers distinguish a rejected request from an internal failure:

    p, err := engine.Calculate(ctx, req)
    if promise.IsValidation(err) {
        // 400-class problem: the request itself is malformed
    }

SEE ALSO:
  - supply/provider.go: failure sentinels for the supply boundary
*/
package promise

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmptyDemand is returned when a request carries no demand lines.
	ErrEmptyDemand = errors.New("request has no demand lines")

	// ErrNonPositiveQuantity is returned when a demand line's quantity is
	// zero or negative.
	ErrNonPositiveQuantity = errors.New("demand quantity must be positive")

	// ErrInvalidRules is returned when the rule set cannot be applied
	// (unknown timezone, malformed cutoff, unknown desired-date mode).
	ErrInvalidRules = errors.New("invalid business rules")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError rejects a malformed request before any computation runs.
type ValidationError struct {
	Field   string
	Message string
	cause   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.cause }

func newValidationError(field, message string, cause error) *ValidationError {
	return &ValidationError{Field: field, Message: message, cause: cause}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation reports whether err rejects the request as malformed rather
// than describing a business outcome.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
