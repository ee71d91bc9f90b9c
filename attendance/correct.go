/*
correct.go - Synthesizes corrected punches for one day

PURPOSE:
  Produces an entry/exit pair that fits the resolved schedule: entry inside
  the entry window, exit inside the exit window, duration inside
  [WorkHours - TotalTimeMin, WorkHours + TotalTimeMax].

DECISION TABLE (first match wins):
  1. TotalTime "00:00"        -> entry and duration drawn at random
  2. Entry missing            -> entry drawn, exit kept if duration fits
  3. Exit missing             -> exit drawn, entry kept if duration fits
  4. Both present and fitting -> unchanged, DetailCorrect
  5. Otherwise                -> redraw each field outside its window, then
                                 redraw the exit if the duration still misses

RANDOMNESS:
  Corrections are random on purpose so exported days look like real punches.
  Two runs over the same input may differ. Pass a seeded Rand to replay a run.

CLAMPING:
  When no exit inside the exit window gives an accepted duration (the entry
  is too far from the exit window), the exit is clamped to the nearest
  bound of the exit window and Clamped is set. Only then may the duration
  fall outside the accepted range.

OVERNIGHT SCHEDULES:
  An exit window that ends before the entry is read as next-day; generated
  times are wrapped back into [00:00, 24:00).
*/
package attendance

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DetailCorrect   = "Marcación correcta"
	DetailNoPunches = "Día sin marcación"
)

type CorrectedPunch struct {
	Key      RecordKey
	RecordID string

	FirstCheckIn HHMM
	LastCheckOut HHMM
	TotalTime    HHMM // span between the corrected punches

	Detail  string
	Changed bool
	Clamped bool // exit pinned to the exit window, duration may be out of range
}

// Apply derives the corrected record. The input record is left untouched.
func (p CorrectedPunch) Apply(rec PunchRecord) PunchRecord {
	rec.FirstCheckIn = p.FirstCheckIn
	rec.LastCheckOut = p.LastCheckOut
	rec.TotalTime = p.TotalTime
	return rec
}

// =============================================================================
// CORRECTOR
// =============================================================================

type Corrector struct {
	Rand Rand
}

// NewCorrector returns a corrector drawing from r, or DefaultRand when r is nil.
func NewCorrector(r Rand) *Corrector {
	if r == nil {
		r = DefaultRand
	}
	return &Corrector{Rand: r}
}

// CorrectRecords corrects each record against its resolved schedule.
// Records that cannot be parsed are reported in the returned error.
func (c *Corrector) CorrectRecords(records []PunchRecord, resolver *Resolver) ([]CorrectedPunch, error) {
	out := make([]CorrectedPunch, 0, len(records))
	var errs []error
	for _, rec := range records {
		p, err := c.CorrectRecord(rec, resolver.ResolveRecord(rec))
		if err != nil {
			errs = append(errs, recordError(rec, err))
			continue
		}
		out = append(out, p)
	}
	return out, errors.Join(errs...)
}

// CorrectRecord corrects one record and tags the result with its identity.
func (c *Corrector) CorrectRecord(rec PunchRecord, cfg ScheduleConfig) (CorrectedPunch, error) {
	p, err := c.Correct(rec.FirstCheckIn, rec.LastCheckOut, rec.TotalTime, cfg)
	if err != nil {
		return CorrectedPunch{}, err
	}
	p.Key = rec.Key()
	p.RecordID = rec.ID
	return p, nil
}

// Correct synthesizes a corrected entry/exit pair for one day.
func (c *Corrector) Correct(first, last, totalTime HHMM, cfg ScheduleConfig) (CorrectedPunch, error) {
	b, err := cfg.Bounds()
	if err != nil {
		return CorrectedPunch{}, err
	}
	if !totalTime.Missing() {
		if _, err := totalTime.Minutes(); err != nil {
			return CorrectedPunch{}, err
		}
	}

	switch {
	case totalTime.Missing(), first.Missing() && last.Missing():
		return c.withoutPunches(b)
	case first.Missing():
		exit, err := last.Minutes()
		if err != nil {
			return CorrectedPunch{}, err
		}
		return c.missingEntry(exit, b)
	case last.Missing():
		entry, err := first.Minutes()
		if err != nil {
			return CorrectedPunch{}, err
		}
		return c.missingExit(entry, b)
	}

	entry, err := first.Minutes()
	if err != nil {
		return CorrectedPunch{}, err
	}
	exit, err := last.Minutes()
	if err != nil {
		return CorrectedPunch{}, err
	}
	if first != last && b.Entry.Contains(entry) && b.Exit.Contains(exit) && b.Target.Contains(MinutesBetween(entry, exit)) {
		return CorrectedPunch{
			FirstCheckIn: first,
			LastCheckOut: last,
			TotalTime:    MinutesToTime(MinutesBetween(entry, exit)),
			Detail:       DetailCorrect,
		}, nil
	}
	return c.outOfBounds(entry, exit, b)
}

func (c *Corrector) withoutPunches(b Bounds) (CorrectedPunch, error) {
	entry, err := b.Entry.Random(c.Rand)
	if err != nil {
		return CorrectedPunch{}, err
	}
	exit, clamped, err := c.exitFor(entry, b)
	if err != nil {
		return CorrectedPunch{}, err
	}
	return punch(entry, exit, DetailNoPunches, true, clamped), nil
}

func (c *Corrector) missingEntry(exit int, b Bounds) (CorrectedPunch, error) {
	entry, err := b.Entry.Random(c.Rand)
	if err != nil {
		return CorrectedPunch{}, err
	}
	detail := fmt.Sprintf("Sin marcación de entrada: entrada generada %s", MinutesToTime(entry))
	if !b.Target.Contains(MinutesBetween(entry, exit)) {
		dur, err := RandomDurationInWindow(c.Rand, b.Target.Min, b.Target.Max)
		if err != nil {
			return CorrectedPunch{}, err
		}
		newExit := WrapMinutes(entry + dur)
		detail += fmt.Sprintf("; salida ajustada de %s a %s", MinutesToTime(exit), MinutesToTime(newExit))
		exit = newExit
	}
	return punch(entry, exit, detail, true, false), nil
}

func (c *Corrector) missingExit(entry int, b Bounds) (CorrectedPunch, error) {
	exit, err := b.Exit.Random(c.Rand)
	if err != nil {
		return CorrectedPunch{}, err
	}
	detail := fmt.Sprintf("Sin marcación de salida: salida generada %s", MinutesToTime(exit))
	if !b.Target.Contains(MinutesBetween(entry, exit)) {
		dur, err := RandomDurationInWindow(c.Rand, b.Target.Min, b.Target.Max)
		if err != nil {
			return CorrectedPunch{}, err
		}
		newEntry := WrapMinutes(exit - dur)
		detail += fmt.Sprintf("; entrada ajustada de %s a %s", MinutesToTime(entry), MinutesToTime(newEntry))
		entry = newEntry
	}
	return punch(entry, exit, detail, true, false), nil
}

func (c *Corrector) outOfBounds(entry, exit int, b Bounds) (CorrectedPunch, error) {
	var details []string
	if !b.Entry.Contains(entry) {
		m, err := b.Entry.Random(c.Rand)
		if err != nil {
			return CorrectedPunch{}, err
		}
		details = append(details, fmt.Sprintf("entrada %s fuera de %s, ajustada a %s",
			MinutesToTime(entry), b.Entry, MinutesToTime(m)))
		entry = m
	}
	if !b.Exit.Contains(exit) {
		m, err := b.Exit.Random(c.Rand)
		if err != nil {
			return CorrectedPunch{}, err
		}
		details = append(details, fmt.Sprintf("salida %s fuera de %s, ajustada a %s",
			MinutesToTime(exit), b.Exit, MinutesToTime(m)))
		exit = m
	}

	clamped := false
	if span := MinutesBetween(entry, exit); !b.Target.Contains(span) {
		m, cl, err := c.exitFor(entry, b)
		if err != nil {
			return CorrectedPunch{}, err
		}
		details = append(details, fmt.Sprintf("jornada de %s fuera de %s, salida ajustada de %s a %s",
			MinutesToTime(span), b.Target, MinutesToTime(exit), MinutesToTime(m)))
		exit, clamped = m, cl
	}

	if len(details) == 0 {
		return punch(entry, exit, DetailCorrect, false, false), nil
	}
	return punch(entry, exit, "Marcación corregida: "+strings.Join(details, "; "), true, clamped), nil
}

// exitFor draws an exit for the entry: a random accepted duration, redrawn
// inside the exit window when it lands outside it, clamped as a last resort.
func (c *Corrector) exitFor(entry int, b Bounds) (exit int, clamped bool, err error) {
	window := b.Exit
	if window.Max < entry {
		window = Window{Min: window.Min + MinutesPerDay, Max: window.Max + MinutesPerDay}
	}

	dur, err := RandomDurationInWindow(c.Rand, b.Target.Min, b.Target.Max)
	if err != nil {
		return 0, false, err
	}
	exit = entry + dur
	if window.Contains(exit) {
		return WrapMinutes(exit), false, nil
	}

	reach := Window{Min: entry + b.Target.Min, Max: entry + b.Target.Max}
	if fit := window.Intersect(reach); !fit.Empty() {
		exit, err = fit.Random(c.Rand)
		if err != nil {
			return 0, false, err
		}
		return WrapMinutes(exit), false, nil
	}
	return WrapMinutes(window.Clamp(exit)), true, nil
}

func punch(entry, exit int, detail string, changed, clamped bool) CorrectedPunch {
	return CorrectedPunch{
		FirstCheckIn: MinutesToTime(WrapMinutes(entry)),
		LastCheckOut: MinutesToTime(WrapMinutes(exit)),
		TotalTime:    MinutesToTime(MinutesBetween(WrapMinutes(entry), WrapMinutes(exit))),
		Detail:       detail,
		Changed:      changed,
		Clamped:      clamped,
	}
}
