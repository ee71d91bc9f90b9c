package attendance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/marcacion/attendance"
)

func newDetector() *attendance.Detector {
	return attendance.NewDetector(attendance.NewResolver([]attendance.ScheduleConfig{defaultConfig()}))
}

func inspect(t *testing.T, rec attendance.PunchRecord) *attendance.Finding {
	t.Helper()
	f, err := newDetector().Inspect(rec)
	require.NoError(t, err)
	return f
}

// =============================================================================
// LONE PUNCH - noon heuristic
// =============================================================================

func TestDetect_LonePunch_NoonBoundary(t *testing.T) {
	tests := []struct {
		punch string
		want  attendance.InconsistencyType
	}{
		{"07:02", attendance.NoCheckout},
		{"11:59", attendance.NoCheckout},
		{"12:00", attendance.NoEntry},
		{"16:31", attendance.NoEntry},
	}
	for _, tt := range tests {
		t.Run(tt.punch, func(t *testing.T) {
			f := inspect(t, punches(t, "2025-03-03", tt.punch, tt.punch, "00:00"))

			require.NotNil(t, f)
			assert.Equal(t, []attendance.InconsistencyType{tt.want}, f.Types)
			require.Len(t, f.Details, 1)
			assert.Contains(t, f.Details[0], tt.punch)
		})
	}
}

// =============================================================================
// HOURS
// =============================================================================

func TestDetect_ExcessiveHours_SpanAndTotalFlagOnce(t *testing.T) {
	// GIVEN: 9h shift, 15/15 tolerance, worked 07:00-16:45 (585 min)
	rec := punches(t, "2025-03-03", "07:00", "16:45", "09:45")

	// WHEN: Inspecting the record
	f := inspect(t, rec)

	// THEN: excessive_hours fires once, both rules report the 30 min excess
	require.NotNil(t, f)
	assert.Equal(t, []attendance.InconsistencyType{attendance.ExcessiveHours}, f.Types)
	require.Len(t, f.Details, 2)
	assert.Contains(t, f.Details[0], "Tiempo total 09:45")
	assert.Contains(t, f.Details[0], "00:30")
	assert.Contains(t, f.Details[1], "07:00-16:45")
	assert.Contains(t, f.Details[1], "00:30")
}

func TestDetect_ExcessiveHours_OnlyFromSpan(t *testing.T) {
	// Stored total disagrees with the punches; only the span rule fires.
	f := inspect(t, punches(t, "2025-03-03", "06:30", "16:30", "09:00"))

	require.NotNil(t, f)
	assert.Equal(t, []attendance.InconsistencyType{attendance.ExcessiveHours}, f.Types)
	assert.Len(t, f.Details, 1)
}

func TestDetect_WithinTolerance_NoFinding(t *testing.T) {
	for _, tc := range [][3]string{
		{"07:00", "16:00", "09:00"},
		{"07:00", "16:15", "09:15"}, // upper edge
		{"07:00", "15:45", "08:45"}, // 15 min short, not more
	} {
		f := inspect(t, punches(t, "2025-03-03", tc[0], tc[1], tc[2]))
		assert.Nil(t, f, "%v", tc)
	}
}

func TestDetect_MissingHours(t *testing.T) {
	// 07:20-14:00 is 400 min, 140 short of 540
	f := inspect(t, punches(t, "2025-03-03", "07:20", "14:00", "06:40"))

	require.NotNil(t, f)
	assert.Equal(t, []attendance.InconsistencyType{attendance.MissingHours}, f.Types)
	require.Len(t, f.Details, 1)
	assert.Contains(t, f.Details[0], "faltan 02:20")
}

func TestDetect_MissingHours_Boundary(t *testing.T) {
	// 9h shift with 15 min below: the minimum is 08:45 and a day is only
	// short when it misses that minimum by more than the 15 min again.
	tests := []struct {
		out     string
		total   string
		missing bool
		detail  string
	}{
		{"15:15", "08:15", true, "00:30 bajo el mínimo de 08:45"},
		{"15:29", "08:29", true, "00:16 bajo el mínimo de 08:45"},
		{"15:30", "08:30", false, ""},
		{"15:31", "08:31", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			f := inspect(t, punches(t, "2025-03-03", "07:00", tt.out, tt.total))

			if !tt.missing {
				assert.Nil(t, f)
				return
			}
			require.NotNil(t, f)
			assert.Equal(t, []attendance.InconsistencyType{attendance.MissingHours}, f.Types)
			require.Len(t, f.Details, 1)
			assert.Contains(t, f.Details[0], tt.detail)
		})
	}
}

func TestDetect_MissingHours_ZeroTolerance(t *testing.T) {
	// GIVEN: A schedule that accepts nothing under 9h
	cfg := defaultConfig()
	cfg.TotalTimeMin = attendance.Minutes(0)
	d := attendance.NewDetector(attendance.NewResolver([]attendance.ScheduleConfig{cfg}))

	// WHEN: The day ends one minute early
	f, err := d.Inspect(punches(t, "2025-03-03", "07:00", "15:59", "08:59"))

	// THEN: It is flagged instead of picking up the default 15 min
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, []attendance.InconsistencyType{attendance.MissingHours}, f.Types)
	assert.Contains(t, f.Details[0], "faltan 00:01")
}

func TestDetect_OvernightSpanWraps(t *testing.T) {
	cfg := defaultConfig()
	cfg.DepartmentID = "vigilancia"
	cfg.EntryTimeMin, cfg.EntryTimeMax = "21:30", "22:30"
	cfg.ExitTimeMin, cfg.ExitTimeMax = "06:30", "07:30"
	d := attendance.NewDetector(attendance.NewResolver([]attendance.ScheduleConfig{cfg}))

	rec := punches(t, "2025-03-03", "22:00", "07:00", "09:00")
	rec.DepartmentID = "vigilancia"

	f, err := d.Inspect(rec)
	require.NoError(t, err)
	assert.Nil(t, f, "22:00-07:00 is a 9h overnight shift")
}

func TestDetect_DayWithoutPunches_NoFinding(t *testing.T) {
	assert.Nil(t, inspect(t, punches(t, "2025-03-03", "", "", "00:00")))
}

// =============================================================================
// BATCH BEHAVIOR
// =============================================================================

func TestDetect_MalformedRecordDoesNotStopBatch(t *testing.T) {
	good := punches(t, "2025-03-03", "07:00", "07:00", "00:00")
	bad := punches(t, "2025-03-04", "7h00", "16:00", "09:00")
	bad.ID = "rec-bad"

	findings, err := newDetector().Detect([]attendance.PunchRecord{good, bad})

	require.Len(t, findings, 1)
	assert.Equal(t, "2025-03-03", findings[0].Key.Date)

	recErrs := attendance.RecordErrors(err)
	require.Len(t, recErrs, 1)
	assert.Equal(t, "rec-bad", recErrs[0].ID)
	assert.Equal(t, "2025-03-04", recErrs[0].Key.Date)
	assert.ErrorIs(t, err, attendance.ErrInvalidFormat)
}

func TestDetect_InvalidConfigIsReportedPerRecord(t *testing.T) {
	cfg := defaultConfig()
	cfg.EntryTimeMin, cfg.EntryTimeMax = "08:00", "07:00"
	d := attendance.NewDetector(attendance.NewResolver([]attendance.ScheduleConfig{cfg}))

	_, err := d.Detect([]attendance.PunchRecord{punches(t, "2025-03-03", "07:00", "16:00", "09:00")})

	var cfgErr *attendance.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, attendance.ErrInvalidRange)
}
