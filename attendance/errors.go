/*
errors.go - Centralized error types for the reconciliation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match categories with errors.Is and details with errors.As.

ERROR CATEGORIES:
  1. Format errors - A time string that is not "HH:MM"
  2. Range errors - An inverted window, attributable to a schedule config
  3. Record errors - Per-record failures inside a batch operation

PARTIAL RESULTS:
  Batch operations (Detect, CorrectRecords, Summarize, ...) never stop at
  the first bad record. They return results for every good record together
  with an errors.Join of *RecordError values for the bad ones. Failures
  not tied to one record are joined in too:

    findings, err := detector.Detect(records)
    records, others := attendance.SplitBatchError(err)
    // report records by Key and keep using findings; others mean the
    // results are incomplete

SEE ALSO:
  - clock.go: Produces FormatError and InvalidRangeError
  - schedule.go: Wraps range errors in ConfigError
*/
package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidFormat is returned when a time string cannot be parsed.
	ErrInvalidFormat = errors.New("invalid time format")

	// ErrInvalidRange is returned when a window has max < min.
	ErrInvalidRange = errors.New("invalid range: max before min")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrNegativeOvertime is returned when redistributing a negative overtime total.
	ErrNegativeOvertime = errors.New("negative overtime total")

	// ErrEmployeeNotFound is returned when no records exist for an employee.
	ErrEmployeeNotFound = errors.New("employee not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FormatError identifies a time string that is not two colon-separated integers.
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid time format %q: expected HH:MM", e.Value)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidFormat
}

// InvalidRangeError describes an inverted window, in minutes.
type InvalidRangeError struct {
	Field string // e.g. "entry", "exit", "duration"
	Min   int
	Max   int
}

func (e *InvalidRangeError) Error() string {
	field := e.Field
	if field == "" {
		field = "window"
	}
	return fmt.Sprintf("invalid %s range: max %s before min %s",
		field, MinutesToTime(e.Max), MinutesToTime(e.Min))
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}

// ConfigError attributes a failure to the schedule config that caused it.
type ConfigError struct {
	DepartmentID DepartmentID
	PositionID   PositionID
	Err          error
}

func (e *ConfigError) Error() string {
	if e.PositionID == "" {
		return fmt.Sprintf("schedule config %s: %v", e.DepartmentID, e.Err)
	}
	return fmt.Sprintf("schedule config %s/%s: %v", e.DepartmentID, e.PositionID, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// RecordError isolates a failure to a single punch record.
type RecordError struct {
	Key RecordKey
	ID  string
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %s: %v", e.Key, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func recordError(r PunchRecord, err error) *RecordError {
	return &RecordError{Key: r.Key(), ID: r.ID, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// RecordErrors extracts every *RecordError from a joined batch error.
func RecordErrors(err error) []*RecordError {
	records, _ := SplitBatchError(err)
	return records
}

// SplitBatchError separates the per-record failures of a joined batch error
// from everything else, e.g. a negative payroll total that voided an
// employee's overtime. A caller that only looks at the records would drop
// the others.
func SplitBatchError(err error) (records []*RecordError, others []error) {
	if err == nil {
		return nil, nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			r, o := SplitBatchError(e)
			records = append(records, r...)
			others = append(others, o...)
		}
		return records, others
	}
	var recErr *RecordError
	if errors.As(err, &recErr) {
		return []*RecordError{recErr}, nil
	}
	return nil, []error{err}
}

// IsClientError returns true if the error is due to invalid input data.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrNegativeOvertime)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}
