package attendance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGINE - Period pipeline over many employees
// =============================================================================

// Engine wires the resolver, detector, corrector and reconciler together.
// Employees are processed independently of each other.
type Engine struct {
	Resolver   *Resolver
	Detector   *Detector
	Corrector  *Corrector
	Reconciler *Reconciler
}

// NewEngine builds an engine over configs. A nil r uses DefaultRand.
func NewEngine(configs []ScheduleConfig, r Rand) *Engine {
	resolver := NewResolver(configs)
	return &Engine{
		Resolver:   resolver,
		Detector:   NewDetector(resolver),
		Corrector:  NewCorrector(r),
		Reconciler: NewReconciler(resolver),
	}
}

// Inconsistencies flags anomalies in every record.
func (e *Engine) Inconsistencies(records []PunchRecord) ([]Finding, error) {
	return e.Detector.Detect(records)
}

// Corrections corrects every record against its schedule.
func (e *Engine) Corrections(records []PunchRecord) ([]CorrectedPunch, error) {
	return e.Corrector.CorrectRecords(records, e.Resolver)
}

// EmployeeAdjustment pairs an adjustment with the employee it belongs to.
type EmployeeAdjustment struct {
	EmployeeID EmployeeID
	Adjustment
}

// Adjustments computes the hours adjustment per employee. Employees absent
// from payroll are reconciled against zero overtime. The records may be
// raw or corrected (CorrectedPunch.Apply); raw records keep the days without
// marking visible.
func (e *Engine) Adjustments(records []PunchRecord, payroll map[EmployeeID]decimal.Decimal) ([]EmployeeAdjustment, error) {
	var out []EmployeeAdjustment
	var errs []error
	for _, g := range GroupByEmployee(records) {
		adj, err := e.Reconciler.ComputeAdjustment(g.EmployeeName, g.Records, payroll[g.EmployeeID])
		if err != nil {
			errs = append(errs, err)
		}
		out = append(out, EmployeeAdjustment{EmployeeID: g.EmployeeID, Adjustment: adj})
	}
	return out, errors.Join(errs...)
}

// ExportRow is one exported day: the source record, its corrected punch
// with the redistributed overtime applied, and the minutes added.
type ExportRow struct {
	Record          PunchRecord
	Corrected       CorrectedPunch
	OvertimeMinutes int
}

// Export corrects every record and spreads each employee's payroll overtime
// over the days that could be corrected.
func (e *Engine) Export(records []PunchRecord, payroll map[EmployeeID]decimal.Decimal) ([]ExportRow, error) {
	var rows []ExportRow
	var errs []error
	for _, g := range GroupByEmployee(records) {
		var kept []PunchRecord
		var punches []CorrectedPunch
		for _, rec := range g.Records {
			p, err := e.Corrector.CorrectRecord(rec, e.Resolver.ResolveRecord(rec))
			if err != nil {
				errs = append(errs, recordError(rec, err))
				continue
			}
			kept = append(kept, rec)
			punches = append(punches, p)
		}

		dist, err := RedistributeOvertime(kept, OvertimeMinutes(payroll[g.EmployeeID]))
		if err != nil {
			errs = append(errs, fmt.Errorf("employee %s: %w", g.EmployeeID, err))
			dist = Distribution{Allocations: make([]Allocation, len(kept))}
		}
		for i, rec := range kept {
			added := dist.Allocations[i].Minutes
			p, err := ApplyOvertime(punches[i], added)
			if err != nil {
				errs = append(errs, recordError(rec, err))
				continue
			}
			rows = append(rows, ExportRow{Record: rec, Corrected: p, OvertimeMinutes: added})
		}
	}
	return rows, errors.Join(errs...)
}

// Summaries aggregates records per employee. period may be nil.
func (e *Engine) Summaries(records []PunchRecord, period *Period) ([]Summary, error) {
	var out []Summary
	var errs []error
	for _, g := range GroupByEmployee(records) {
		s, err := Summarize(g.Records, period)
		if err != nil {
			errs = append(errs, err)
		}
		out = append(out, s)
	}
	return out, errors.Join(errs...)
}
