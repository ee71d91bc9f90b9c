package attendance

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// MinutesPerDay is the wrap point for times that cross midnight.
const MinutesPerDay = 24 * 60

// =============================================================================
// RANDOM SOURCE
// =============================================================================

// Rand is the source of every random choice made by the engine.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a uniform integer in [0, n). n must be > 0.
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand uses the math/rand/v2 top-level source, which is safe for
// concurrent use.
var DefaultRand Rand = globalRand{}

// NewSeededRand returns a deterministic source, for tests and replays.
// The returned source is not safe for concurrent use.
func NewSeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// =============================================================================
// HH:MM CONVERSIONS
// =============================================================================

// TimeToMinutes converts "HH:MM" to minutes. Both parts must be plain
// digits, so signs are rejected. Values are not range checked, so "25:70"
// is 1570.
func TimeToMinutes(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || !isDigits(hh) || !isDigits(mm) {
		return 0, &FormatError{Value: s}
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, &FormatError{Value: s}
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, &FormatError{Value: s}
	}
	return h*60 + m, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MinutesToTime formats minutes as zero-padded "HH:MM", or "-HH:MM" when
// negative. It does not wrap: callers wrap explicitly when an exit crosses
// midnight.
func MinutesToTime(m int) HHMM {
	if m < 0 {
		return "-" + MinutesToTime(-m)
	}
	return HHMM(fmt.Sprintf("%02d:%02d", m/60, m%60))
}

// WrapMinutes folds a minute-of-day into [0, 1440).
func WrapMinutes(m int) int {
	m %= MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return m
}

// MinutesBetween returns the span from entry to exit. An exit earlier than
// the entry is an overnight shift.
func MinutesBetween(entry, exit int) int {
	span := exit - entry
	if span < 0 {
		span += MinutesPerDay
	}
	return span
}

// FormatSignedMinutes formats minutes as "+HH:MM" or "-HH:MM".
func FormatSignedMinutes(m int) string {
	sign := "+"
	if m < 0 {
		sign = "-"
		m = -m
	}
	return sign + string(MinutesToTime(m))
}

// =============================================================================
// WINDOW - Inclusive range of minutes
// =============================================================================

type Window struct {
	Min int
	Max int
}

// NewWindow parses an "HH:MM" window and checks it is not inverted.
func NewWindow(field string, from, to HHMM) (Window, error) {
	lo, err := from.Minutes()
	if err != nil {
		return Window{}, err
	}
	hi, err := to.Minutes()
	if err != nil {
		return Window{}, err
	}
	w := Window{Min: lo, Max: hi}
	if w.Empty() {
		return Window{}, &InvalidRangeError{Field: field, Min: lo, Max: hi}
	}
	return w, nil
}

func (w Window) Contains(m int) bool { return m >= w.Min && m <= w.Max }
func (w Window) Empty() bool         { return w.Max < w.Min }

// Intersect returns the overlap of two windows; it may be Empty.
func (w Window) Intersect(o Window) Window {
	return Window{Min: max(w.Min, o.Min), Max: min(w.Max, o.Max)}
}

// Clamp moves m to the nearest bound when it falls outside the window.
func (w Window) Clamp(m int) int {
	return min(max(m, w.Min), w.Max)
}

// Random picks a uniform minute in the window, bounds included.
func (w Window) Random(r Rand) (int, error) {
	if w.Empty() {
		return 0, &InvalidRangeError{Min: w.Min, Max: w.Max}
	}
	return w.Min + r.IntN(w.Max-w.Min+1), nil
}

func (w Window) String() string {
	return fmt.Sprintf("%s-%s", MinutesToTime(w.Min), MinutesToTime(w.Max))
}

// =============================================================================
// RANDOM TIMES
// =============================================================================

// RandomTimeInWindow returns a uniform time in [minH:minM, maxH:maxM].
func RandomTimeInWindow(r Rand, minH, minM, maxH, maxM int) (HHMM, error) {
	w := Window{Min: minH*60 + minM, Max: maxH*60 + maxM}
	m, err := w.Random(r)
	if err != nil {
		return "", err
	}
	return MinutesToTime(m), nil
}

// RandomDurationInWindow returns a uniform duration in [targetMin, targetMax].
func RandomDurationInWindow(r Rand, targetMin, targetMax int) (int, error) {
	if targetMax < targetMin {
		return 0, &InvalidRangeError{Field: "duration", Min: targetMin, Max: targetMax}
	}
	return targetMin + r.IntN(targetMax-targetMin+1), nil
}
