/*
errors.go - Error types for personnel records

PURPOSE:
  Sentinel errors for lookups and uniqueness, plus a ValidationError that
  collects every failing field at once so a form can show them together.

USAGE:
  if errors.Is(err, hr.ErrEmployeeNotFound) { ... }

  var verr *hr.ValidationError
  if errors.As(err, &verr) {
      for _, f := range verr.Fields { ... }
  }

SEE ALSO:
  - validate.go: Produces ValidationError
  - store/sqlite: Maps constraint failures to the duplicate sentinels
  - api/errors.go: Maps these errors to HTTP status codes
*/
package hr

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrScoreNotFound       = errors.New("score record not found")
	ErrRecruitmentNotFound = errors.New("recruitment record not found")

	// ErrDuplicateIDCard is returned when another employee already holds the id card number.
	ErrDuplicateIDCard = errors.New("id card already registered")

	// ErrDuplicatePhone is returned when another employee already holds the phone number.
	ErrDuplicatePhone = errors.New("phone already registered")

	// ErrUnknownBehavior is returned for a behavior code outside the catalog.
	ErrUnknownBehavior = errors.New("unknown behavior")

	// ErrInvalid is the parent of every ValidationError.
	ErrInvalid = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// FieldError describes one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every failing field of one input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// validator accumulates field errors.
type validator struct {
	fields []FieldError
}

func (v *validator) check(ok bool, field, message string) {
	if !ok {
		v.fields = append(v.fields, FieldError{Field: field, Message: message})
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrScoreNotFound) ||
		errors.Is(err, ErrRecruitmentNotFound)
}

// IsConflict returns true if the error is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateIDCard) ||
		errors.Is(err, ErrDuplicatePhone)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalid) ||
		errors.Is(err, ErrUnknownBehavior)
}
