package attendance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/marcacion/attendance"
)

// =============================================================================
// RESOLUTION ORDER
// =============================================================================

func TestResolve_ExactDepartmentAndPosition(t *testing.T) {
	// GIVEN: A department config and a narrower position config
	configs := []attendance.ScheduleConfig{
		{DepartmentID: "oficina", WorkHours: decimal.RequireFromString("8.5")},
		{DepartmentID: "oficina", PositionID: "analista", WorkHours: decimal.NewFromInt(9)},
	}

	// WHEN: Resolving for the position
	got := attendance.Resolve("oficina", "analista", configs)

	// THEN: The position config wins even though it was added second
	assert.Equal(t, attendance.PositionID("analista"), got.PositionID)
	assert.Equal(t, 540, got.WorkMinutes())
}

func TestResolve_FirstDepartmentConfigWhenPositionUnknown(t *testing.T) {
	configs := []attendance.ScheduleConfig{
		{DepartmentID: "oficina", PositionID: "analista", WorkHours: decimal.NewFromInt(9)},
		{DepartmentID: "oficina", WorkHours: decimal.RequireFromString("8.5")},
	}

	got := attendance.Resolve("oficina", "asistente", configs)
	assert.Equal(t, attendance.PositionID("analista"), got.PositionID, "first config of the department in insertion order")

	got = attendance.Resolve("oficina", "", configs)
	assert.Equal(t, attendance.PositionID("analista"), got.PositionID)
}

func TestResolve_DefaultWhenDepartmentUnknown(t *testing.T) {
	configs := []attendance.ScheduleConfig{{DepartmentID: "oficina"}}

	got := attendance.Resolve("logistica", "chofer", configs)

	assert.Equal(t, attendance.DepartmentID("logistica"), got.DepartmentID)
	assert.Empty(t, got.PositionID)
	assert.Equal(t, attendance.HHMM("06:30"), got.EntryTimeMin)
	assert.Equal(t, attendance.HHMM("07:30"), got.EntryTimeMax)
	assert.Equal(t, attendance.HHMM("15:30"), got.ExitTimeMin)
	assert.Equal(t, attendance.HHMM("16:30"), got.ExitTimeMax)
	assert.Equal(t, 540, got.WorkMinutes())
	below, above := got.Tolerances()
	assert.Equal(t, 15, below)
	assert.Equal(t, 15, above)
}

func TestResolve_EmptyConfigs(t *testing.T) {
	got := attendance.Resolve("produccion", "", nil)
	assert.Equal(t, 540, got.WorkMinutes())
}

func TestResolve_FillsUnsetFieldsFromDefault(t *testing.T) {
	configs := []attendance.ScheduleConfig{{
		DepartmentID: "oficina",
		EntryTimeMin: "08:00",
		EntryTimeMax: "09:00",
	}}

	got := attendance.Resolve("oficina", "", configs)

	assert.Equal(t, attendance.HHMM("08:00"), got.EntryTimeMin)
	assert.Equal(t, attendance.HHMM("15:30"), got.ExitTimeMin)
	assert.True(t, got.WorkHours.Equal(decimal.NewFromInt(9)))
	require.NotNil(t, got.TotalTimeMax)
	assert.Equal(t, 15, *got.TotalTimeMax)
}

func TestResolve_ExplicitZeroToleranceIsKept(t *testing.T) {
	// GIVEN: A schedule that accepts no deviation below the shift and 5 min above
	configs := []attendance.ScheduleConfig{{
		DepartmentID: "laboratorio",
		TotalTimeMin: attendance.Minutes(0),
		TotalTimeMax: attendance.Minutes(5),
	}}

	// WHEN: Resolving it
	got := attendance.Resolve("laboratorio", "", configs)

	// THEN: The zero stays, only the unconfigured fields take defaults
	below, above := got.Tolerances()
	assert.Equal(t, 0, below)
	assert.Equal(t, 5, above)

	b, err := got.Bounds()
	require.NoError(t, err)
	assert.Equal(t, attendance.Window{Min: 540, Max: 545}, b.Target)
}

func TestResolve_DefaultToleranceIsNotShared(t *testing.T) {
	got := attendance.Resolve("oficina", "", nil)
	*got.TotalTimeMin = 99

	below, _ := attendance.Resolve("oficina", "", nil).Tolerances()
	assert.Equal(t, 15, below)
}

func TestResolver_CustomDefault(t *testing.T) {
	r := attendance.NewResolver(nil)
	r.Default = attendance.ScheduleConfig{WorkHours: decimal.NewFromInt(8)}

	got := r.Resolve("produccion", "")

	assert.Equal(t, 480, got.WorkMinutes())
	assert.Equal(t, attendance.HHMM("06:30"), got.EntryTimeMin)
}

// =============================================================================
// BOUNDS
// =============================================================================

func TestBounds_DefaultSchedule(t *testing.T) {
	b, err := defaultConfig().Bounds()
	require.NoError(t, err)

	assert.Equal(t, attendance.Window{Min: 390, Max: 450}, b.Entry)
	assert.Equal(t, attendance.Window{Min: 930, Max: 990}, b.Exit)
	assert.Equal(t, attendance.Window{Min: 525, Max: 555}, b.Target)
	assert.Equal(t, 540, b.Work)
}

func TestBounds_InvertedWindowIsAttributedToConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.PositionID = "operario"
	cfg.ExitTimeMin, cfg.ExitTimeMax = "16:30", "15:30"

	_, err := cfg.Bounds()

	assert.ErrorIs(t, err, attendance.ErrInvalidRange)
	var cfgErr *attendance.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, attendance.DepartmentID("produccion"), cfgErr.DepartmentID)
	assert.Equal(t, attendance.PositionID("operario"), cfgErr.PositionID)

	var rangeErr *attendance.InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, "exit", rangeErr.Field)
	assert.True(t, attendance.IsClientError(err))
}

func TestWorkMinutes_FractionalHours(t *testing.T) {
	cfg := attendance.ScheduleConfig{WorkHours: decimal.RequireFromString("8.5")}
	assert.Equal(t, 510, cfg.WorkMinutes())
}
