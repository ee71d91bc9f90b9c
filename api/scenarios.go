/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with a realistic
	two-week period (2025-03-03 to 2025-03-14) of time clock exports.
	Each scenario creates schedule configs, punch records and, where it
	matters, payroll overtime, to demonstrate one part of the engine.

AVAILABLE SCENARIOS:

	punctual-team:    Two employees with clean punches every workday
	missing-punches:  Lone punches, a day without marking, a missing workday
	overtime-payroll: Long days plus payroll overtime to reconcile and export

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Create schedule configs via the factory (YAML document)
 3. Import punch records
 4. Optionally record payroll overtime

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "missing-punches"}

	The server can also load one on startup (-seed / MARCACION_SEED).

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Attendance endpoints to run against the loaded data
  - factory/schedule.go: Schedule document format
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/marcacion/attendance"
)

// ErrUnknownScenario is returned for a scenario ID not in the catalog.
var ErrUnknownScenario = errors.New("unknown scenario")

// Resetter is implemented by stores that can drop all their data.
type Resetter interface {
	Reset(ctx context.Context) error
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	From        string `json:"from"`
	To          string `json:"to"`
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarioPeriod = attendance.Period{
	Start: attendance.NewDate(2025, 3, 3),
	End:   attendance.NewDate(2025, 3, 14),
}

var scenarios = []ScenarioDTO{
	{
		ID:          "punctual-team",
		Name:        "Punctual Team",
		Description: "Two production operators punching inside their windows every workday",
	},
	{
		ID:          "missing-punches",
		Name:        "Missing Punches",
		Description: "Forgotten check-outs and check-ins, a day without marking and an unrecorded workday",
	},
	{
		ID:          "overtime-payroll",
		Name:        "Overtime vs Payroll",
		Description: "Office staff staying late, with payroll overtime spread over the corrected days",
	},
}

const scenarioSchedules = `
schedules:
  - department_id: produccion
    entry_time_min: "06:30"
    entry_time_max: "07:30"
    exit_time_min: "15:30"
    exit_time_max: "16:30"
    work_hours: 9
    total_time_min: 15
    total_time_max: 15
  - department_id: oficina
    entry_time_min: "08:00"
    entry_time_max: "09:00"
    exit_time_min: "17:00"
    exit_time_max: "18:00"
    work_hours: 8.5
  - department_id: oficina
    position_id: analista
    entry_time_min: "07:30"
    entry_time_max: "08:30"
    exit_time_min: "16:30"
    exit_time_max: "17:30"
    work_hours: 9
    total_time_min: 10
    total_time_max: 20
`

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		s.From, s.To = scenarioPeriod.Start.String(), scenarioPeriod.End.String()
		out[i] = s
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			s.From, s.To = scenarioPeriod.Start.String(), scenarioPeriod.End.String()
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenarioHandler loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenarioHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.LoadScenario(r.Context(), req.ScenarioID); err != nil {
		switch {
		case errors.Is(err, ErrUnknownScenario):
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
		case errors.Is(err, errors.ErrUnsupported):
			writeError(w, http.StatusNotImplemented, "Store cannot be reset", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// LoadScenario resets the store and loads the scenario with the given ID.
func (h *Handler) LoadScenario(ctx context.Context, id string) error {
	var load func(context.Context) error
	switch id {
	case "punctual-team":
		load = h.loadPunctualTeamScenario
	case "missing-punches":
		load = h.loadMissingPunchesScenario
	case "overtime-payroll":
		load = h.loadOvertimePayrollScenario
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScenario, id)
	}

	if err := h.reset(ctx); err != nil {
		return err
	}
	if _, err := h.LoadSchedules(ctx, []byte(scenarioSchedules)); err != nil {
		return fmt.Errorf("failed to load schedules: %w", err)
	}
	if err := load(ctx); err != nil {
		return err
	}

	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
	h.Logger.Info("scenario loaded", "scenario", id)
	return nil
}

func (h *Handler) reset(ctx context.Context) error {
	rs, ok := h.Store.(Resetter)
	if !ok {
		return fmt.Errorf("reset: %w", errors.ErrUnsupported)
	}
	if err := rs.Reset(ctx); err != nil {
		return err
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// employee is the fixed part of a scenario's records.
type employee struct {
	id   attendance.EmployeeID
	name string
	dept attendance.DepartmentID
	pos  attendance.PositionID
}

// day builds a record from the two punches. Equal punches make a lone-punch
// day; empty punches make a day without marking.
func (e employee) day(d attendance.Date, in, out attendance.HHMM) attendance.PunchRecord {
	rec := attendance.PunchRecord{
		EmployeeID:   e.id,
		EmployeeName: e.name,
		DepartmentID: e.dept,
		PositionID:   e.pos,
		Date:         d,
		FirstCheckIn: in,
		LastCheckOut: out,
		TotalTime:    attendance.NoTime,
	}
	if rec.BothPunches() {
		entry, _ := in.Minutes()
		exit, _ := out.Minutes()
		rec.TotalTime = attendance.MinutesToTime(attendance.MinutesBetween(entry, exit))
	}
	return rec
}

// Scenario 1: Punctual Team
// Both operators punch inside the produccion windows with 9h days.
func (h *Handler) loadPunctualTeamScenario(ctx context.Context) error {
	ana := employee{id: "E001", name: "Ana Torres", dept: "produccion", pos: "operario"}
	luis := employee{id: "E002", name: "Luis Paredes", dept: "produccion", pos: "operario"}

	var records []attendance.PunchRecord
	for i, d := range scenarioPeriod.Workdays() {
		records = append(records,
			ana.day(d, "07:00", "16:00"),
			luis.day(d, attendance.MinutesToTime(6*60+45+i%3*10), attendance.MinutesToTime(15*60+45+i%3*10)),
		)
	}
	_, err := h.Store.SavePunchRecords(ctx, records)
	return err
}

// Scenario 2: Missing Punches
// Week one shows each kind of anomaly once; week two is clean except for
// Friday, which has no record at all.
func (h *Handler) loadMissingPunchesScenario(ctx context.Context) error {
	rosa := employee{id: "E010", name: "Rosa Medina", dept: "produccion", pos: "operario"}

	workdays := scenarioPeriod.Workdays()
	records := []attendance.PunchRecord{
		rosa.day(workdays[0], "07:05", "07:05"), // forgot to check out
		rosa.day(workdays[1], "16:10", "16:10"), // forgot to check in
		rosa.day(workdays[2], "", ""),           // day without marking
		rosa.day(workdays[3], "05:40", "18:20"), // outside both windows, long day
		rosa.day(workdays[4], "07:20", "14:00"), // left early
	}
	for _, d := range workdays[5 : len(workdays)-1] {
		records = append(records, rosa.day(d, "07:00", "16:00"))
	}
	_, err := h.Store.SavePunchRecords(ctx, records)
	return err
}

// Scenario 3: Overtime vs Payroll
// An analyst routinely leaves at 18:00 and payroll paid 7.5 hours of
// overtime for the period. A second office employee has no position
// config and falls back to the department schedule.
func (h *Handler) loadOvertimePayrollScenario(ctx context.Context) error {
	marta := employee{id: "E020", name: "Marta Quispe", dept: "oficina", pos: "analista"}
	jorge := employee{id: "E021", name: "Jorge Salas", dept: "oficina", pos: "asistente"}

	var records []attendance.PunchRecord
	for _, d := range scenarioPeriod.Workdays() {
		records = append(records,
			marta.day(d, "08:00", "18:00"),
			jorge.day(d, "08:30", "17:00"),
		)
	}
	if _, err := h.Store.SavePunchRecords(ctx, records); err != nil {
		return err
	}

	for _, p := range []attendance.PayrollOvertime{
		{EmployeeID: marta.id, Period: scenarioPeriod, Hours: decimal.RequireFromString("7.5")},
		{EmployeeID: jorge.id, Period: scenarioPeriod, Hours: decimal.Zero},
	} {
		if err := h.Store.SavePayrollOvertime(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
