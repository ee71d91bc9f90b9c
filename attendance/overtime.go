/*
overtime.go - Reconciles worked time against payroll overtime

PURPOSE:
  Two independent figures per employee and period:

  (a) Adjustment: how many hours payroll should add or remove, comparing
      the time on the punches with the expected shifts and the overtime
      payroll already reported.

        excess        = worked - daysWorked * work
        adjustable    = -excess + daysWithoutMarking * work
        final         = |adjustable| - payrollOvertime, negated again when
                        adjustable was negative

  (b) Redistribution: spreads the payroll overtime minutes over the
      employee's days so an exported punch sheet adds up. floor(total/n)
      minutes per day, the remainder one minute each on the last days.

  Redistribution is for export only and never feeds the adjustment.
*/
package attendance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// OvertimeMinutes converts payroll overtime hours (e.g. 2.5) to whole minutes.
func OvertimeMinutes(hours decimal.Decimal) int {
	return int(hours.Mul(decimal.NewFromInt(60)).Round(0).IntPart())
}

// =============================================================================
// ADJUSTMENT
// =============================================================================

type Adjustment struct {
	EmployeeName string

	DaysWorked         int
	DaysWithoutMarking int
	WorkedMinutes      int
	ExpectedMinutes    int // scheduled minutes over the days worked
	ExcessMinutes      int // positive: worked more than scheduled
	OwedMinutes        int // scheduled minutes over the days without marking
	AdjustableMinutes  int
	PayrollMinutes     int
	FinalMinutes       int

	HoursDifferenceFormatted string // "+HH:MM" or "-HH:MM"
}

type Reconciler struct {
	Resolver *Resolver
}

func NewReconciler(resolver *Resolver) *Reconciler {
	return &Reconciler{Resolver: resolver}
}

// ComputeAdjustment computes the hours adjustment for one employee. The
// expected shift length is resolved per record. Records with a malformed
// total time are left out and reported in the returned error.
func (rc *Reconciler) ComputeAdjustment(employeeName string, records []PunchRecord, payrollOvertimeHours decimal.Decimal) (Adjustment, error) {
	adj := Adjustment{EmployeeName: employeeName, PayrollMinutes: OvertimeMinutes(payrollOvertimeHours)}

	var errs []error
	for _, rec := range records {
		work := rc.Resolver.ResolveRecord(rec).WorkMinutes()
		if !rec.HasTime() {
			adj.DaysWithoutMarking++
			adj.OwedMinutes += work
			continue
		}
		m, err := rec.TotalTime.Minutes()
		if err != nil {
			errs = append(errs, recordError(rec, err))
			continue
		}
		adj.DaysWorked++
		adj.WorkedMinutes += m
		adj.ExpectedMinutes += work
	}

	adj.ExcessMinutes = adj.WorkedMinutes - adj.ExpectedMinutes
	adjustable := adj.OwedMinutes
	if adj.ExcessMinutes > 0 {
		adjustable -= adj.ExcessMinutes
	} else {
		adjustable += -adj.ExcessMinutes
	}
	adj.AdjustableMinutes = adjustable

	negative := adjustable < 0
	if negative {
		adjustable = -adjustable
	}
	adj.FinalMinutes = adjustable - adj.PayrollMinutes
	if negative {
		adj.FinalMinutes = -adj.FinalMinutes
	}
	adj.HoursDifferenceFormatted = FormatSignedMinutes(adj.FinalMinutes)

	return adj, errors.Join(errs...)
}

// =============================================================================
// REDISTRIBUTION
// =============================================================================

// Allocation is the overtime added to one record.
type Allocation struct {
	Key      RecordKey
	RecordID string
	Minutes  int
}

// Distribution holds one allocation per record, in record order.
type Distribution struct {
	Allocations []Allocation
}

// Total returns the sum of all allocated minutes.
func (d Distribution) Total() int {
	total := 0
	for _, a := range d.Allocations {
		total += a.Minutes
	}
	return total
}

// ByKey indexes the allocations by record identity.
func (d Distribution) ByKey() map[RecordKey]int {
	out := make(map[RecordKey]int, len(d.Allocations))
	for _, a := range d.Allocations {
		out[a.Key] += a.Minutes
	}
	return out
}

// RedistributeOvertime splits totalMinutes over the records. Every minute
// is allocated: the sum of the allocations equals totalMinutes whenever
// records is not empty.
func RedistributeOvertime(records []PunchRecord, totalMinutes int) (Distribution, error) {
	if totalMinutes < 0 {
		return Distribution{}, fmt.Errorf("%w: %d minutes", ErrNegativeOvertime, totalMinutes)
	}
	n := len(records)
	if n == 0 {
		return Distribution{}, nil
	}

	base, remainder := totalMinutes/n, totalMinutes%n
	d := Distribution{Allocations: make([]Allocation, n)}
	for i, rec := range records {
		m := base
		if i >= n-remainder {
			m++
		}
		d.Allocations[i] = Allocation{Key: rec.Key(), RecordID: rec.ID, Minutes: m}
	}
	return d, nil
}

// ApplyOvertime extends the corrected exit by minutes, wrapping past midnight.
func ApplyOvertime(p CorrectedPunch, minutes int) (CorrectedPunch, error) {
	if minutes == 0 {
		return p, nil
	}
	entry, err := p.FirstCheckIn.Minutes()
	if err != nil {
		return p, err
	}
	exit, err := p.LastCheckOut.Minutes()
	if err != nil {
		return p, err
	}
	exit = WrapMinutes(exit + minutes)
	p.LastCheckOut = MinutesToTime(exit)
	p.TotalTime = MinutesToTime(MinutesBetween(entry, exit))
	p.Detail += fmt.Sprintf("; +%d min de horas extra", minutes)
	p.Changed = true
	return p, nil
}
