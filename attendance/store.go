/*
store.go - Data source interfaces for the engine's inputs

PURPOSE:
  The engine itself is pure. Its inputs come from three external sources:
  the time-clock import (punch records), the admin schedule screen
  (schedule configs) and the payroll module (reported overtime). These
  interfaces describe what the HTTP layer needs from them.

ORDERING CONTRACT:
  - ListPunchRecords returns records ordered by date; records of the same
    date keep their import order. Overtime redistribution depends on it.
  - ListScheduleConfigs returns configs in insertion order. Resolution picks
    the FIRST config of a department, so the order is part of the contract.

IMPLEMENTATIONS:
  - attendance/store/memory.go: In-memory for tests and demos
  - store/sqlite/sqlite.go: SQLite

SEE ALSO:
  - engine.go: Consumes the loaded data
*/
package attendance

import (
	"context"

	"github.com/shopspring/decimal"
)

// PayrollOvertime is the overtime payroll reported for an employee and period.
type PayrollOvertime struct {
	EmployeeID EmployeeID
	Period     Period
	Hours      decimal.Decimal
}

// RecordFilter selects punch records. An empty EmployeeID selects everyone.
type RecordFilter struct {
	Period     Period
	EmployeeID EmployeeID
}

// Matches reports whether the record passes the filter.
func (f RecordFilter) Matches(r PunchRecord) bool {
	if f.EmployeeID != "" && r.EmployeeID != f.EmployeeID {
		return false
	}
	return f.Period.Contains(r.Date)
}

// RecordStore holds imported punch records.
type RecordStore interface {
	// SavePunchRecords stores records, assigning IDs to those without one.
	// A record with an existing ID replaces the stored one.
	SavePunchRecords(ctx context.Context, records []PunchRecord) ([]PunchRecord, error)

	// ListPunchRecords returns matching records ordered by date.
	ListPunchRecords(ctx context.Context, filter RecordFilter) ([]PunchRecord, error)
}

// ScheduleStore holds schedule configs.
type ScheduleStore interface {
	// SaveScheduleConfig inserts or replaces the config for its department
	// and position. A replaced config keeps its position in the order.
	SaveScheduleConfig(ctx context.Context, cfg ScheduleConfig) error

	// ListScheduleConfigs returns configs in insertion order.
	ListScheduleConfigs(ctx context.Context) ([]ScheduleConfig, error)
}

// PayrollStore holds payroll overtime figures.
type PayrollStore interface {
	// SavePayrollOvertime inserts or replaces the figure for employee+period.
	SavePayrollOvertime(ctx context.Context, p PayrollOvertime) error

	// ListPayrollOvertime returns figures whose period lies within period.
	ListPayrollOvertime(ctx context.Context, period Period) ([]PayrollOvertime, error)
}

// Store is every data source the engine reads from.
type Store interface {
	RecordStore
	ScheduleStore
	PayrollStore
}

// OvertimeByEmployee sums payroll figures per employee.
func OvertimeByEmployee(entries []PayrollOvertime) map[EmployeeID]decimal.Decimal {
	out := make(map[EmployeeID]decimal.Decimal, len(entries))
	for _, p := range entries {
		out[p.EmployeeID] = out[p.EmployeeID].Add(p.Hours)
	}
	return out
}
