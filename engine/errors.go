/*
errors.go - Centralized error types for the tax engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  User-supplied answers never produce errors; every error here describes
  an authoring mistake in a tax schedule and is raised when a Calculator
  is built, never during Compute.

ERROR CATEGORIES:
  1. Schedule errors - Bracket table or limit table is inconsistent
  2. Lookup errors - No schedule registered for a year

USAGE:
  calc, err := engine.NewCalculator(schedule)
  if errors.Is(err, engine.ErrInvalidSchedule) {
      var se *engine.ScheduleError
      errors.As(err, &se) // se.Field, se.Reason
  }

SEE ALSO:
  - schedule.go: Validate produces ScheduleError
  - factory/schedule.go: Wraps these errors with the source file
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidSchedule is returned when a schedule fails validation.
	ErrInvalidSchedule = errors.New("invalid tax schedule")

	// ErrMissingLimit is returned when a relief rule references a limit
	// the schedule does not define.
	ErrMissingLimit = errors.New("relief limit not defined")

	// ErrUnknownYear is returned when no schedule exists for an assessment year.
	ErrUnknownYear = errors.New("no schedule for assessment year")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ScheduleError describes one inconsistency in a schedule.
type ScheduleError struct {
	Year   int
	Field  string // e.g. "brackets[3].min", "limits.epf"
	Reason string
}

func (e *ScheduleError) Error() string {
	return fmt.Sprintf("invalid schedule YA%d: %s: %s", e.Year, e.Field, e.Reason)
}

func (e *ScheduleError) Unwrap() error {
	return ErrInvalidSchedule
}

// MissingLimitError is returned when a rule names a limit that is absent.
type MissingLimitError struct {
	Year  int
	Limit string
	Ref   string
}

func (e *MissingLimitError) Error() string {
	return fmt.Sprintf("schedule YA%d has no limit %q (needed by %s)", e.Year, e.Limit, e.Ref)
}

func (e *MissingLimitError) Unwrap() error {
	return ErrMissingLimit
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigError returns true if the error comes from static configuration
// rather than from a caller.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrMissingLimit)
}

// IsNotFound returns true if the error indicates a missing schedule.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownYear)
}
