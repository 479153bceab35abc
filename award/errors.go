/*
errors.go - Error taxonomy for award generation

PURPOSE:
  Every failure of Generate is reported synchronously and never retried.
  Callers branch with errors.Is on the sentinels; the structured errors carry
  the numbers a caller needs to decide what to do next.

ERROR CATEGORIES:
  1. Caller errors   - ErrInvalidYear, ErrAlreadyGenerated (retry with Force)
  2. Data outcomes   - ErrNoEligibleCandidates
  3. Store failures  - ErrPersistence, optionally with ErrPartialReplace
  4. Invariant bugs  - ErrDuplicateCandidate, ErrDuplicateAward

SEE ALSO:
  - generator.go: Produces these errors
  - api/errors.go: Maps them to HTTP status codes
*/
package award

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidYear is returned for years before MinYear or after the current year.
	ErrInvalidYear = errors.New("invalid award year")

	// ErrInvalidTiers is returned when a tier table fails validation.
	ErrInvalidTiers = errors.New("invalid tier table")

	// ErrNoEligibleCandidates is returned when nobody survives the eligibility filter.
	ErrNoEligibleCandidates = errors.New("no eligible candidates")

	// ErrAlreadyGenerated is returned when the year has records and Force is unset.
	ErrAlreadyGenerated = errors.New("awards already generated for year")

	// ErrPersistence wraps any store failure during replace.
	ErrPersistence = errors.New("award persistence failed")

	// ErrPartialReplace is reported by non-transactional stores when the
	// delete succeeded but the insert did not. The prior set is gone.
	ErrPartialReplace = errors.New("award replace left year empty")

	// ErrDuplicateAward is a (year, employee) uniqueness violation.
	ErrDuplicateAward = errors.New("duplicate award for employee in year")

	// ErrDuplicateCandidate means the population contained one employee twice.
	ErrDuplicateCandidate = errors.New("duplicate candidate")

	// ErrAwardNotFound is returned when an award record doesn't exist.
	ErrAwardNotFound = errors.New("award not found")

	// ErrInvalidAward is returned for malformed manual award input.
	ErrInvalidAward = errors.New("invalid award")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// AlreadyGeneratedError reports how many records the year already holds.
type AlreadyGeneratedError struct {
	Year     int
	Existing int
}

func (e *AlreadyGeneratedError) Error() string {
	return fmt.Sprintf("awards for %d already generated (%d records); regenerate with force to replace them",
		e.Year, e.Existing)
}

func (e *AlreadyGeneratedError) Unwrap() error {
	return ErrAlreadyGenerated
}

// NoEligibleError tells "nobody selected" apart from "everybody negative".
type NoEligibleError struct {
	Year      int
	Employees int // population size
	Selected  int // active and hired in time, before the score filter
}

func (e *NoEligibleError) Error() string {
	if e.Selected == 0 {
		return fmt.Sprintf("no eligible candidates for %d: none of %d employees active and hired by year end",
			e.Year, e.Employees)
	}
	return fmt.Sprintf("no eligible candidates for %d: all %d selected employees have negative scores",
		e.Year, e.Selected)
}

func (e *NoEligibleError) Unwrap() error {
	return ErrNoEligibleCandidates
}

// PersistenceError wraps a store failure. PriorSetLost is true when the
// store could not keep the replace atomic and the year is now ungenerated.
type PersistenceError struct {
	Year         int
	Op           string
	PriorSetLost bool
	Err          error
}

func (e *PersistenceError) Error() string {
	msg := fmt.Sprintf("award %s for %d failed: %v", e.Op, e.Year, e.Err)
	if e.PriorSetLost {
		msg += " (previous award set was lost; year is now ungenerated)"
	}
	return msg
}

// Unwrap exposes both ErrPersistence and the store's cause.
func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidYear) ||
		errors.Is(err, ErrInvalidTiers) ||
		errors.Is(err, ErrInvalidAward)
}

// IsConflict returns true if the error means the target state already exists.
func IsConflict(err error) bool {
	if errors.Is(err, ErrPersistence) {
		return false
	}
	return errors.Is(err, ErrAlreadyGenerated) ||
		errors.Is(err, ErrDuplicateAward)
}

// IsInvariantViolation returns true for errors that indicate a bug rather
// than bad input.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrDuplicateCandidate) ||
		errors.Is(err, ErrDuplicateAward)
}
