package attendance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/warp/marcacion/attendance"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(t *testing.T, s string) attendance.Date {
	t.Helper()
	d, err := attendance.ParseDate(s)
	require.NoError(t, err)
	return d
}

func period(t *testing.T, from, to string) attendance.Period {
	t.Helper()
	return attendance.Period{Start: date(t, from), End: date(t, to)}
}

// punches builds a production record for employee E001.
func punches(t *testing.T, day, in, out, total string) attendance.PunchRecord {
	t.Helper()
	return attendance.PunchRecord{
		EmployeeID:   "E001",
		EmployeeName: "Ana Torres",
		DepartmentID: "produccion",
		Date:         date(t, day),
		FirstCheckIn: attendance.HHMM(in),
		LastCheckOut: attendance.HHMM(out),
		TotalTime:    attendance.HHMM(total),
	}
}

func forEmployee(rec attendance.PunchRecord, id attendance.EmployeeID, name string) attendance.PunchRecord {
	rec.EmployeeID = id
	rec.EmployeeName = name
	return rec
}

// defaultConfig is the schedule used in most examples: 9h shifts, 15/15 tolerance.
func defaultConfig() attendance.ScheduleConfig {
	return attendance.ScheduleConfig{
		DepartmentID: "produccion",
		EntryTimeMin: "06:30",
		EntryTimeMax: "07:30",
		ExitTimeMin:  "15:30",
		ExitTimeMax:  "16:30",
		WorkHours:    decimal.NewFromInt(9),
		TotalTimeMin: attendance.Minutes(15),
		TotalTimeMax: attendance.Minutes(15),
	}
}

func minutes(t *testing.T, h attendance.HHMM) int {
	t.Helper()
	m, err := h.Minutes()
	require.NoError(t, err)
	return m
}

// fixedRand returns the same offset every time, clamped to the range.
type fixedRand int

func (f fixedRand) IntN(n int) int { return min(int(f), n-1) }
