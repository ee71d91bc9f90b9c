package attendance

import "errors"

// Summary rolls up one employee's records for a period.
type Summary struct {
	EmployeeID   EmployeeID
	EmployeeName string

	TotalDays      int
	AttendanceDays int // days with usable time
	ValidDays      int // two distinct punches
	InvalidDays    int // lone-punch days

	// Worked time, minutes folded into hours (TotalMinutes < 60).
	TotalHours   int
	TotalMinutes int

	TotalWorkableDays int // Monday to Friday in the period, 0 without a period
}

// WorkedMinutes returns the worked time in minutes.
func (s Summary) WorkedMinutes() int { return s.TotalHours*60 + s.TotalMinutes }

// Combine adds two summaries of disjoint record sets of the same period.
// Workable days describe the period, not the records, so they are not summed.
func (s Summary) Combine(o Summary) Summary {
	out := s
	if out.EmployeeID == "" {
		out.EmployeeID, out.EmployeeName = o.EmployeeID, o.EmployeeName
	}
	out.TotalDays += o.TotalDays
	out.AttendanceDays += o.AttendanceDays
	out.ValidDays += o.ValidDays
	out.InvalidDays += o.InvalidDays
	out.setWorked(s.WorkedMinutes() + o.WorkedMinutes())
	out.TotalWorkableDays = max(s.TotalWorkableDays, o.TotalWorkableDays)
	return out
}

func (s *Summary) setWorked(minutes int) {
	s.TotalHours, s.TotalMinutes = minutes/60, minutes%60
}

// Summarize aggregates records. period may be nil. A malformed total time
// leaves the day out of the worked time and is reported in the error.
func Summarize(records []PunchRecord, period *Period) (Summary, error) {
	var s Summary
	if len(records) > 0 {
		s.EmployeeID, s.EmployeeName = records[0].EmployeeID, records[0].EmployeeName
	}
	s.TotalDays = len(records)

	var errs []error
	worked := 0
	for _, rec := range records {
		switch {
		case rec.LonePunch():
			s.InvalidDays++
		case rec.BothPunches():
			s.ValidDays++
		}
		if !rec.HasTime() {
			continue
		}
		m, err := rec.TotalTime.Minutes()
		if err != nil {
			errs = append(errs, recordError(rec, err))
			continue
		}
		s.AttendanceDays++
		worked += m
	}
	s.setWorked(worked)

	if period != nil {
		if err := period.Validate(); err != nil {
			errs = append(errs, err)
		} else {
			s.TotalWorkableDays = len(period.Workdays())
		}
	}
	return s, errors.Join(errs...)
}

// MissingWorkdays returns the workdays of the period that have no record.
func MissingWorkdays(records []PunchRecord, period Period) ([]Date, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		seen[rec.Date.String()] = true
	}
	var missing []Date
	for _, d := range period.Workdays() {
		if !seen[d.String()] {
			missing = append(missing, d)
		}
	}
	return missing, nil
}
