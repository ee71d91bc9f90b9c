package attendance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/marcacion/attendance"
)

// assertOnSchedule checks entry, exit and duration against the default schedule.
func assertOnSchedule(t *testing.T, p attendance.CorrectedPunch) {
	t.Helper()
	entry := minutes(t, p.FirstCheckIn)
	exit := minutes(t, p.LastCheckOut)
	total := minutes(t, p.TotalTime)

	assert.True(t, entry >= 390 && entry <= 450, "entry %s outside 06:30-07:30", p.FirstCheckIn)
	assert.True(t, exit >= 930 && exit <= 990, "exit %s outside 15:30-16:30", p.LastCheckOut)
	assert.Equal(t, exit-entry, total)
	if !p.Clamped {
		assert.True(t, total >= 525 && total <= 555, "duration %s outside 08:45-09:15", p.TotalTime)
	}
}

// =============================================================================
// DECISION TABLE
// =============================================================================

func TestCorrect_NoPunches_GeneratesFullDay(t *testing.T) {
	// GIVEN: A day without marking, default schedule
	// WHEN: Correcting it with many seeds
	// THEN: Every result fits the windows and the detail says so

	for seed := uint64(0); seed < 200; seed++ {
		c := attendance.NewCorrector(attendance.NewSeededRand(seed))

		p, err := c.Correct("", "", "00:00", defaultConfig())
		require.NoError(t, err)

		assertOnSchedule(t, p)
		assert.Contains(t, p.Detail, "sin marcación")
		assert.True(t, p.Changed)
		assert.False(t, p.Clamped)
	}
}

func TestCorrect_LonePunchDayIsRegenerated(t *testing.T) {
	c := attendance.NewCorrector(attendance.NewSeededRand(1))

	p, err := c.Correct("07:05", "07:05", "00:00", defaultConfig())
	require.NoError(t, err)

	assertOnSchedule(t, p)
	assert.Equal(t, attendance.DetailNoPunches, p.Detail)
}

func TestCorrect_FittingDayIsUnchanged(t *testing.T) {
	c := attendance.NewCorrector(attendance.NewSeededRand(1))

	p, err := c.Correct("07:00", "16:00", "09:00", defaultConfig())
	require.NoError(t, err)

	assert.Equal(t, attendance.HHMM("07:00"), p.FirstCheckIn)
	assert.Equal(t, attendance.HHMM("16:00"), p.LastCheckOut)
	assert.Equal(t, attendance.HHMM("09:00"), p.TotalTime)
	assert.Equal(t, attendance.DetailCorrect, p.Detail)
	assert.False(t, p.Changed)
}

func TestCorrect_Idempotent(t *testing.T) {
	// Correcting a corrected day returns it unchanged.
	for seed := uint64(0); seed < 50; seed++ {
		c := attendance.NewCorrector(attendance.NewSeededRand(seed))

		first, err := c.Correct("05:10", "18:40", "13:30", defaultConfig())
		require.NoError(t, err)
		require.False(t, first.Clamped)

		second, err := c.Correct(first.FirstCheckIn, first.LastCheckOut, first.TotalTime, defaultConfig())
		require.NoError(t, err)

		assert.Equal(t, first.FirstCheckIn, second.FirstCheckIn)
		assert.Equal(t, first.LastCheckOut, second.LastCheckOut)
		assert.Equal(t, first.TotalTime, second.TotalTime)
		assert.Equal(t, attendance.DetailCorrect, second.Detail)
		assert.False(t, second.Changed)
	}
}

func TestCorrect_MissingEntry(t *testing.T) {
	// GIVEN: Exit at 16:00, no entry
	// THEN: Entry is drawn from the entry window, exit is kept when the
	//       resulting duration is accepted
	c := attendance.NewCorrector(fixedRand(30))

	p, err := c.Correct("", "16:00", "09:00", defaultConfig())
	require.NoError(t, err)

	// 06:30 + 30 = 07:00, 07:00-16:00 is exactly 9h
	assert.Equal(t, attendance.HHMM("07:00"), p.FirstCheckIn)
	assert.Equal(t, attendance.HHMM("16:00"), p.LastCheckOut)
	assert.Equal(t, attendance.HHMM("09:00"), p.TotalTime)
	assert.True(t, p.Changed)
	assert.Contains(t, p.Detail, "entrada generada 07:00")
}

func TestCorrect_MissingEntry_ExitAdjustedWhenDurationMisses(t *testing.T) {
	// Exit at 14:00 is too early for any entry in the window.
	c := attendance.NewCorrector(fixedRand(0))

	p, err := c.Correct("", "14:00", "07:00", defaultConfig())
	require.NoError(t, err)

	// entry 06:30, duration 525 -> exit 15:15
	assert.Equal(t, attendance.HHMM("06:30"), p.FirstCheckIn)
	assert.Equal(t, attendance.HHMM("15:15"), p.LastCheckOut)
	assert.Equal(t, attendance.HHMM("08:45"), p.TotalTime)
	assert.Contains(t, p.Detail, "salida ajustada de 14:00 a 15:15")
}

func TestCorrect_MissingExit(t *testing.T) {
	c := attendance.NewCorrector(fixedRand(30))

	p, err := c.Correct("07:00", "", "09:00", defaultConfig())
	require.NoError(t, err)

	// 15:30 + 30 = 16:00
	assert.Equal(t, attendance.HHMM("07:00"), p.FirstCheckIn)
	assert.Equal(t, attendance.HHMM("16:00"), p.LastCheckOut)
	assert.Equal(t, attendance.HHMM("09:00"), p.TotalTime)
	assert.Contains(t, p.Detail, "salida generada 16:00")
}

func TestCorrect_OutOfBounds_RedrawsOffendingFields(t *testing.T) {
	// Entry 05:40 is early, exit 16:10 is fine; the duration is then checked.
	for seed := uint64(0); seed < 100; seed++ {
		c := attendance.NewCorrector(attendance.NewSeededRand(seed))

		p, err := c.Correct("05:40", "16:10", "10:30", defaultConfig())
		require.NoError(t, err)

		assertOnSchedule(t, p)
		assert.True(t, p.Changed)
		assert.Contains(t, p.Detail, "entrada 05:40 fuera de 06:30-07:30")
		assert.NotContains(t, p.Detail, "salida 16:10 fuera")
	}
}

func TestCorrect_FieldsInWindowButDurationOff(t *testing.T) {
	// 06:30-16:30 is inside both windows but 10h long.
	for seed := uint64(0); seed < 100; seed++ {
		c := attendance.NewCorrector(attendance.NewSeededRand(seed))

		p, err := c.Correct("06:30", "16:30", "10:00", defaultConfig())
		require.NoError(t, err)

		assertOnSchedule(t, p)
		assert.Equal(t, attendance.HHMM("06:30"), p.FirstCheckIn, "entry was in its window")
		assert.Contains(t, p.Detail, "jornada de 10:00")
	}
}

func TestCorrect_ClampsWhenNoExitFits(t *testing.T) {
	// Exit window far from any accepted duration: entry 07:00 + [525,555]
	// never reaches 18:00-18:30.
	cfg := defaultConfig()
	cfg.ExitTimeMin, cfg.ExitTimeMax = "18:00", "18:30"

	c := attendance.NewCorrector(attendance.NewSeededRand(3))
	p, err := c.Correct("07:00", "", "09:00", cfg)
	require.NoError(t, err)
	assert.Contains(t, p.Detail, "entrada ajustada", "missing exit keeps the exit and moves the entry")

	p, err = c.Correct("", "", "00:00", cfg)
	require.NoError(t, err)
	assert.True(t, p.Clamped)
	assert.Equal(t, attendance.HHMM("18:00"), p.LastCheckOut)
}

func TestCorrect_OvernightSchedule(t *testing.T) {
	cfg := defaultConfig()
	cfg.EntryTimeMin, cfg.EntryTimeMax = "21:30", "22:30"
	cfg.ExitTimeMin, cfg.ExitTimeMax = "06:30", "07:30"

	for seed := uint64(0); seed < 100; seed++ {
		c := attendance.NewCorrector(attendance.NewSeededRand(seed))

		p, err := c.Correct("", "", "00:00", cfg)
		require.NoError(t, err)

		exit := minutes(t, p.LastCheckOut)
		assert.True(t, exit >= 390 && exit <= 450, "exit %s", p.LastCheckOut)
		total := minutes(t, p.TotalTime)
		assert.True(t, total >= 525 && total <= 555, "duration %s", p.TotalTime)
		assert.False(t, p.Clamped)
	}
}

func TestCorrect_Errors(t *testing.T) {
	c := attendance.NewCorrector(nil)

	_, err := c.Correct("07:00", "16:00", "9h", defaultConfig())
	assert.ErrorIs(t, err, attendance.ErrInvalidFormat)

	cfg := defaultConfig()
	cfg.EntryTimeMin, cfg.EntryTimeMax = "08:00", "07:00"
	_, err = c.Correct("07:00", "16:00", "09:00", cfg)
	assert.ErrorIs(t, err, attendance.ErrInvalidRange)
}

// =============================================================================
// BATCH
// =============================================================================

func TestCorrectRecords_OnePerWellFormedRecord(t *testing.T) {
	records := []attendance.PunchRecord{
		punches(t, "2025-03-03", "07:00", "16:00", "09:00"),
		punches(t, "2025-03-04", "07:00", "07:00", "00:00"),
		punches(t, "2025-03-05", "x", "16:00", "09:00"),
	}
	records[0].ID = "a"

	c := attendance.NewCorrector(attendance.NewSeededRand(9))
	got, err := c.CorrectRecords(records, attendance.NewResolver(nil))

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].RecordID)
	assert.Equal(t, "2025-03-04", got[1].Key.Date)
	assert.Len(t, attendance.RecordErrors(err), 1)
}

func TestCorrectedPunch_ApplyLeavesInputUntouched(t *testing.T) {
	rec := punches(t, "2025-03-03", "07:05", "07:05", "00:00")
	p := attendance.CorrectedPunch{FirstCheckIn: "07:05", LastCheckOut: "16:05", TotalTime: "09:00"}

	out := p.Apply(rec)

	assert.Equal(t, attendance.HHMM("16:05"), out.LastCheckOut)
	assert.Equal(t, attendance.HHMM("07:05"), rec.LastCheckOut)
	assert.Equal(t, rec.EmployeeID, out.EmployeeID)
}
