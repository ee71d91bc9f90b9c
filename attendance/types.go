/*
Package attendance provides the marcación reconciliation engine.

PURPOSE:
  Raw time-clock data is messy: employees forget to punch out, devices
  record a single punch for a whole day, and shifts run long. This package
  takes one period of daily punch records and
    1. flags days that do not match the expected schedule,
    2. synthesizes plausible replacement punches for those days,
    3. reconciles the corrected totals against payroll overtime.

KEY CONCEPTS IN THIS FILE (types.go):
  - HHMM: An "HH:MM" string, used for times of day and for durations
  - PunchRecord: One employee's first/last punch for one calendar day
  - RecordKey: Identity of a record inside a period (employee + date)

DESIGN PRINCIPLES:
  1. Immutability: Records are never modified, corrections derive new ones
  2. Isolation: A malformed record never aborts a whole-period computation
  3. Injected randomness: Every random choice goes through a Rand

USAGE:
  engine := attendance.NewEngine(configs)
  findings, err := engine.Inconsistencies(records)
  corrected, err := engine.Corrections(records)

SEE ALSO:
  - clock.go: HH:MM conversions and random windows
  - schedule.go: Schedule configuration and resolution
  - detect.go, correct.go, overtime.go, summary.go: The algorithms
*/
package attendance

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type DepartmentID string
type PositionID string

// =============================================================================
// HHMM - Time of day or duration
// =============================================================================

// HHMM is an "HH:MM" string. The empty value means the punch is absent.
type HHMM string

// NoTime is the sentinel total time for a day without usable punches.
const NoTime HHMM = "00:00"

// Missing reports whether the value stands for an absent punch.
// The time clock exports absent punches either as empty or as "00:00".
func (h HHMM) Missing() bool { return h == "" || h == NoTime }

// Minutes parses the value as minutes since midnight (or as a duration).
func (h HHMM) Minutes() (int, error) { return TimeToMinutes(string(h)) }

func (h HHMM) String() string { return string(h) }

// =============================================================================
// PUNCH RECORD - One employee, one calendar day
// =============================================================================

type PunchRecord struct {
	ID           string
	EmployeeID   EmployeeID
	EmployeeName string
	DepartmentID DepartmentID
	PositionID   PositionID // empty = no position
	Date         Date

	FirstCheckIn HHMM
	LastCheckOut HHMM
	TotalTime    HHMM // NoTime when the day has no usable punches
}

// LonePunch reports whether only one punch was recorded that day.
// The import stores such days with identical check-in and check-out.
func (r PunchRecord) LonePunch() bool {
	return !r.FirstCheckIn.Missing() && r.FirstCheckIn == r.LastCheckOut
}

// BothPunches reports whether two distinct punches were recorded.
func (r PunchRecord) BothPunches() bool {
	return !r.FirstCheckIn.Missing() && !r.LastCheckOut.Missing() && r.FirstCheckIn != r.LastCheckOut
}

// HasTime reports whether the day contributes worked time.
func (r PunchRecord) HasTime() bool { return !r.TotalTime.Missing() }

// Key returns the identity of the record within a period.
func (r PunchRecord) Key() RecordKey {
	return RecordKey{EmployeeID: r.EmployeeID, Date: r.Date.String()}
}

// RecordKey identifies a record by employee and calendar day.
type RecordKey struct {
	EmployeeID EmployeeID
	Date       string
}

func (k RecordKey) String() string { return string(k.EmployeeID) + "@" + k.Date }

// =============================================================================
// GROUPING
// =============================================================================

// EmployeeRecords is one employee's records for a period, in input order.
type EmployeeRecords struct {
	EmployeeID   EmployeeID
	EmployeeName string
	Records      []PunchRecord
}

// GroupByEmployee splits records per employee. Employees appear in the order
// they are first seen and each employee keeps its records in input order.
func GroupByEmployee(records []PunchRecord) []EmployeeRecords {
	index := make(map[EmployeeID]int)
	var groups []EmployeeRecords
	for _, r := range records {
		i, ok := index[r.EmployeeID]
		if !ok {
			i = len(groups)
			index[r.EmployeeID] = i
			groups = append(groups, EmployeeRecords{EmployeeID: r.EmployeeID, EmployeeName: r.EmployeeName})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}
