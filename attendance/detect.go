/*
detect.go - Inconsistency detection over one period of punch records

PURPOSE:
  Classifies each day into zero or more inconsistency types against the
  schedule resolved for that day's department/position. Findings are
  recomputed on demand and never persisted.

RULES (independent, all may fire on the same record):
  1. Lone punch: check-in == check-out. Punch at or after 12:00 is taken to
     be the exit (no_entry); before 12:00 it is taken to be the entry
     (no_checkout).
  2. TotalTime above WorkHours + TotalTimeMin -> excessive_hours.
  3. Both punches present and distinct, span = exit - entry (overnight
     wraps): span above WorkHours + TotalTimeMax -> excessive_hours;
     span short of WorkHours - TotalTimeMin by more than TotalTimeMin
     -> missing_hours. With the default schedule that is a span under
     08:30, not under 08:45.

KNOWN LIMITATION:
  The noon rule misclassifies legitimate early-morning-only or
  late-night-only punches. It matches how the time-clock import has always
  been read; change it only together with the payroll team.
*/
package attendance

import (
	"errors"
	"fmt"
)

type InconsistencyType string

const (
	NoCheckout     InconsistencyType = "no_checkout"
	NoEntry        InconsistencyType = "no_entry"
	ExcessiveHours InconsistencyType = "excessive_hours"
	MissingHours   InconsistencyType = "missing_hours"
)

// LonePunchCutoff is the minute-of-day from which a lone punch is read as
// the exit of the day.
const LonePunchCutoff = 12 * 60

// Finding lists the inconsistencies of one record.
type Finding struct {
	Key          RecordKey
	RecordID     string
	EmployeeName string
	Types        []InconsistencyType
	Details      []string
}

// Has reports whether the finding includes the given type.
func (f Finding) Has(t InconsistencyType) bool {
	for _, have := range f.Types {
		if have == t {
			return true
		}
	}
	return false
}

func (f *Finding) add(t InconsistencyType, detail string) {
	if !f.Has(t) {
		f.Types = append(f.Types, t)
	}
	f.Details = append(f.Details, detail)
}

// =============================================================================
// DETECTOR
// =============================================================================

type Detector struct {
	Resolver *Resolver
}

func NewDetector(resolver *Resolver) *Detector {
	return &Detector{Resolver: resolver}
}

// Detect inspects every record. Records that cannot be parsed are reported
// in the returned error and do not stop the other records.
func (d *Detector) Detect(records []PunchRecord) ([]Finding, error) {
	var findings []Finding
	var errs []error
	for _, rec := range records {
		f, err := d.Inspect(rec)
		if err != nil {
			errs = append(errs, recordError(rec, err))
			continue
		}
		if f != nil {
			findings = append(findings, *f)
		}
	}
	return findings, errors.Join(errs...)
}

// Inspect applies every rule to one record. It returns nil when no rule fires.
func (d *Detector) Inspect(rec PunchRecord) (*Finding, error) {
	cfg := d.Resolver.ResolveRecord(rec)
	b, err := cfg.Bounds()
	if err != nil {
		return nil, err
	}

	f := Finding{Key: rec.Key(), RecordID: rec.ID, EmployeeName: rec.EmployeeName}

	if rec.LonePunch() {
		m, err := rec.FirstCheckIn.Minutes()
		if err != nil {
			return nil, err
		}
		if m >= LonePunchCutoff {
			f.add(NoEntry, fmt.Sprintf("Falta marcación de entrada (única marcación %s)", rec.FirstCheckIn))
		} else {
			f.add(NoCheckout, fmt.Sprintf("Falta marcación de salida (única marcación %s)", rec.FirstCheckIn))
		}
	}

	if rec.HasTime() {
		total, err := rec.TotalTime.Minutes()
		if err != nil {
			return nil, err
		}
		limit := b.Work + b.Below
		if total > limit {
			f.add(ExcessiveHours, fmt.Sprintf("Tiempo total %s excede en %s el máximo de %s",
				rec.TotalTime, MinutesToTime(total-limit), MinutesToTime(limit)))
		}
	}

	if rec.BothPunches() {
		entry, err := rec.FirstCheckIn.Minutes()
		if err != nil {
			return nil, err
		}
		exit, err := rec.LastCheckOut.Minutes()
		if err != nil {
			return nil, err
		}
		span := MinutesBetween(entry, exit)
		upper := b.Target.Max
		if span > upper {
			f.add(ExcessiveHours, fmt.Sprintf("Jornada %s-%s de %s excede en %s el máximo de %s",
				rec.FirstCheckIn, rec.LastCheckOut, MinutesToTime(span), MinutesToTime(span-upper), MinutesToTime(upper)))
		}
		if shortfall := b.Target.Min - span; shortfall > b.Below {
			f.add(MissingHours, fmt.Sprintf("Jornada %s-%s de %s, faltan %s para completar %s (%s bajo el mínimo de %s)",
				rec.FirstCheckIn, rec.LastCheckOut, MinutesToTime(span), MinutesToTime(b.Work-span), MinutesToTime(b.Work),
				MinutesToTime(shortfall), MinutesToTime(b.Target.Min)))
		}
	}

	if len(f.Types) == 0 {
		return nil, nil
	}
	return &f, nil
}
