package sqlite_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/marcacion/attendance"
	"github.com/warp/marcacion/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func day(t *testing.T, s string) attendance.Date {
	d, err := attendance.ParseDate(s)
	require.NoError(t, err)
	return d
}

func march(t *testing.T) attendance.Period {
	return attendance.Period{Start: day(t, "2025-03-01"), End: day(t, "2025-03-31")}
}

func record(t *testing.T, emp attendance.EmployeeID, d, in, out, total string) attendance.PunchRecord {
	return attendance.PunchRecord{
		EmployeeID:   emp,
		EmployeeName: "Empleado " + string(emp),
		DepartmentID: "produccion",
		PositionID:   "operario",
		Date:         day(t, d),
		FirstCheckIn: attendance.HHMM(in),
		LastCheckOut: attendance.HHMM(out),
		TotalTime:    attendance.HHMM(total),
	}
}

// =============================================================================
// PUNCH RECORDS
// =============================================================================

func TestStore_PunchRecords_RoundTrip(t *testing.T) {
	// GIVEN: An import with a lone punch and a day without marking
	store := newTestStore(t)
	ctx := context.Background()

	saved, err := store.SavePunchRecords(ctx, []attendance.PunchRecord{
		record(t, "E001", "2025-03-04", "07:05", "07:05", "00:00"),
		record(t, "E001", "2025-03-03", "07:00", "16:00", "09:00"),
		record(t, "E001", "2025-03-05", "", "", "00:00"),
	})
	require.NoError(t, err)
	require.Len(t, saved, 3)
	for _, r := range saved {
		assert.NotEmpty(t, r.ID)
	}

	// WHEN: Listing the period
	got, err := store.ListPunchRecords(ctx, attendance.RecordFilter{Period: march(t)})
	require.NoError(t, err)

	// THEN: Records come back ordered by date with every field intact
	require.Len(t, got, 3)
	assert.Equal(t, saved[1], got[0])
	assert.Equal(t, saved[0], got[1])
	assert.True(t, got[1].LonePunch())
	assert.Equal(t, saved[2], got[2])
	assert.Equal(t, attendance.HHMM(""), got[2].FirstCheckIn)
}

func TestStore_PunchRecords_SameDateKeepsImportOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SavePunchRecords(ctx, []attendance.PunchRecord{
		record(t, "E009", "2025-03-03", "07:00", "16:00", "09:00"),
		record(t, "E001", "2025-03-03", "07:00", "16:00", "09:00"),
	})
	require.NoError(t, err)

	got, err := store.ListPunchRecords(ctx, attendance.RecordFilter{Period: march(t)})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, attendance.EmployeeID("E009"), got[0].EmployeeID)
}

func TestStore_PunchRecords_UpsertByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := record(t, "E001", "2025-03-03", "07:00", "07:00", "00:00")
	rec.ID = "clock-001"
	_, err := store.SavePunchRecords(ctx, []attendance.PunchRecord{rec})
	require.NoError(t, err)

	rec.LastCheckOut, rec.TotalTime = "16:00", "09:00"
	_, err = store.SavePunchRecords(ctx, []attendance.PunchRecord{rec})
	require.NoError(t, err)

	got, err := store.ListPunchRecords(ctx, attendance.RecordFilter{Period: march(t)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, attendance.HHMM("16:00"), got[0].LastCheckOut)
}

func TestStore_PunchRecords_Filter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SavePunchRecords(ctx, []attendance.PunchRecord{
		record(t, "E001", "2025-02-28", "07:00", "16:00", "09:00"),
		record(t, "E001", "2025-03-31", "07:00", "16:00", "09:00"),
		record(t, "E002", "2025-03-10", "07:00", "16:00", "09:00"),
		record(t, "E001", "2025-04-01", "07:00", "16:00", "09:00"),
	})
	require.NoError(t, err)

	all, err := store.ListPunchRecords(ctx, attendance.RecordFilter{Period: march(t)})
	require.NoError(t, err)
	assert.Len(t, all, 2, "period bounds are inclusive")

	one, err := store.ListPunchRecords(ctx, attendance.RecordFilter{Period: march(t), EmployeeID: "E001"})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "2025-03-31", one[0].Date.String())
}

// =============================================================================
// SCHEDULE CONFIGS
// =============================================================================

func TestStore_ScheduleConfigs_InsertionOrderAndUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	analyst := attendance.ScheduleConfig{
		DepartmentID: "oficina",
		PositionID:   "analista",
		EntryTimeMin: "07:30",
		EntryTimeMax: "08:30",
		ExitTimeMin:  "16:30",
		ExitTimeMax:  "17:30",
		WorkHours:    decimal.RequireFromString("8.5"),
		TotalTimeMin: attendance.Minutes(0),
		TotalTimeMax: attendance.Minutes(20),
	}
	require.NoError(t, store.SaveScheduleConfig(ctx, analyst))
	require.NoError(t, store.SaveScheduleConfig(ctx, attendance.ScheduleConfig{DepartmentID: "oficina"}))

	analyst.WorkHours = decimal.NewFromInt(9)
	require.NoError(t, store.SaveScheduleConfig(ctx, analyst))

	got, err := store.ListScheduleConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, attendance.PositionID("analista"), got[0].PositionID, "upsert keeps the original position")
	assert.True(t, got[0].WorkHours.Equal(decimal.NewFromInt(9)))
	assert.Equal(t, attendance.HHMM("07:30"), got[0].EntryTimeMin)
	require.NotNil(t, got[0].TotalTimeMin)
	assert.Equal(t, 0, *got[0].TotalTimeMin, "an explicit zero tolerance survives the round trip")
	assert.Equal(t, 20, *got[0].TotalTimeMax)

	// Unset fields come back unset so the resolver fills them.
	assert.Equal(t, attendance.HHMM(""), got[1].EntryTimeMin)
	assert.True(t, got[1].WorkHours.IsZero())
	assert.Nil(t, got[1].TotalTimeMin)
	assert.Nil(t, got[1].TotalTimeMax)
	assert.Equal(t, 540, attendance.Resolve("oficina", "", got[1:]).WorkMinutes())
}

// =============================================================================
// PAYROLL OVERTIME
// =============================================================================

func TestStore_PayrollOvertime(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := march(t)
	require.NoError(t, store.SavePayrollOvertime(ctx, attendance.PayrollOvertime{EmployeeID: "E001", Period: p, Hours: decimal.NewFromInt(2)}))
	require.NoError(t, store.SavePayrollOvertime(ctx, attendance.PayrollOvertime{EmployeeID: "E001", Period: p, Hours: decimal.RequireFromString("2.5")}))
	require.NoError(t, store.SavePayrollOvertime(ctx, attendance.PayrollOvertime{EmployeeID: "E002", Period: p, Hours: decimal.RequireFromString("0.75")}))

	entries, err := store.ListPayrollOvertime(ctx, p)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, attendance.EmployeeID("E001"), entries[0].EmployeeID)
	assert.True(t, entries[0].Hours.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, 150, attendance.OvertimeMinutes(entries[0].Hours))
	assert.Equal(t, 45, attendance.OvertimeMinutes(entries[1].Hours))

	other, err := store.ListPayrollOvertime(ctx, attendance.Period{Start: day(t, "2025-04-01"), End: day(t, "2025-04-30")})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStore_PayrollOvertime_InvalidPeriod(t *testing.T) {
	store := newTestStore(t)

	err := store.SavePayrollOvertime(context.Background(), attendance.PayrollOvertime{
		EmployeeID: "E001",
		Period:     attendance.Period{Start: day(t, "2025-03-31"), End: day(t, "2025-03-01")},
	})
	assert.ErrorIs(t, err, attendance.ErrInvalidPeriod)
}

// =============================================================================
// ADMIN
// =============================================================================

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SavePunchRecords(ctx, []attendance.PunchRecord{record(t, "E001", "2025-03-03", "07:00", "16:00", "09:00")})
	require.NoError(t, err)
	require.NoError(t, store.SaveScheduleConfig(ctx, attendance.ScheduleConfig{DepartmentID: "oficina"}))
	require.NoError(t, store.SavePayrollOvertime(ctx, attendance.PayrollOvertime{EmployeeID: "E001", Period: march(t), Hours: decimal.NewFromInt(1)}))

	require.NoError(t, store.Reset(ctx))

	records, err := store.ListPunchRecords(ctx, attendance.RecordFilter{Period: march(t)})
	require.NoError(t, err)
	assert.Empty(t, records)
	configs, err := store.ListScheduleConfigs(ctx)
	require.NoError(t, err)
	assert.Empty(t, configs)
	entries, err := store.ListPayrollOvertime(ctx, march(t))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
