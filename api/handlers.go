/*
handlers.go - HTTP API handlers for the attendance reconciliation engine

PURPOSE:
  Exposes the engine via REST API. Handles HTTP request/response, JSON
  serialization, loading a period from the store, and delegates every
  computation to the attendance package.

ENDPOINTS:
  Punches:
    POST   /api/punches                       Bulk import from the time clock
    GET    /api/punches?from&to&employee_id   List records of a period

  Schedules:
    GET    /api/schedules                     List schedule configs
    POST   /api/schedules                     Create/replace configs (JSON document)

  Payroll:
    POST   /api/payroll/overtime              Record payroll overtime for a period

  Attendance (all take ?from=YYYY-MM-DD&to=YYYY-MM-DD[&employee_id]):
    GET    /api/attendance/inconsistencies    Findings per record
    GET    /api/attendance/corrections        Corrected punches
    GET    /api/attendance/adjustments        Hours adjustment per employee
    GET    /api/attendance/export             Corrected punches + redistributed overtime
    GET    /api/attendance/summary            Rollup per employee

PARTIAL RESULTS:
  A malformed record never fails a period request. The response is 200 with
  every other result in "items" and the skipped records in "errors".

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, invalid schedule windows
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The API is meant to sit behind the HR backend.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/marcacion/attendance"
	"github.com/warp/marcacion/factory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store           attendance.Store
	ScheduleFactory *factory.ScheduleFactory
	Rand            attendance.Rand
	Logger          *slog.Logger

	validate *validator.Validate

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store. A nil logger
// discards logs.
func NewHandler(store attendance.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		Store:           store,
		ScheduleFactory: factory.NewScheduleFactory(),
		Rand:            attendance.DefaultRand,
		Logger:          logger,
		validate:        validator.New(),
	}
}

// LoadSchedules stores schedule configs from a YAML or JSON document.
func (h *Handler) LoadSchedules(ctx context.Context, data []byte) (int, error) {
	configs, err := h.ScheduleFactory.ParseYAML(data)
	if err != nil {
		return 0, err
	}
	for _, cfg := range configs {
		if err := h.Store.SaveScheduleConfig(ctx, cfg); err != nil {
			return 0, err
		}
	}
	return len(configs), nil
}

// engine builds an engine over the stored schedule configs.
func (h *Handler) engine(ctx context.Context) (*attendance.Engine, error) {
	configs, err := h.Store.ListScheduleConfigs(ctx)
	if err != nil {
		return nil, err
	}
	return attendance.NewEngine(configs, h.Rand), nil
}

// =============================================================================
// PUNCH HANDLERS
// =============================================================================

// ImportPunches stores a batch of punch records.
// POST /api/punches
func (h *Handler) ImportPunches(w http.ResponseWriter, r *http.Request) {
	var req ImportPunchesRequest
	if !h.decode(w, r, &req) {
		return
	}

	records := make([]attendance.PunchRecord, len(req.Records))
	for i, dto := range req.Records {
		rec, err := dto.toRecord()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid record %d", i), err)
			return
		}
		records[i] = rec
	}

	saved, err := h.Store.SavePunchRecords(r.Context(), records)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save punch records", err)
		return
	}
	h.Logger.Info("punch records imported", "count", len(saved))

	dtos := make([]PunchRecordDTO, len(saved))
	for i, rec := range saved {
		dtos[i] = toPunchRecordDTO(rec)
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// ListPunches returns the punch records of a period.
// GET /api/punches?from=2025-03-01&to=2025-03-31
func (h *Handler) ListPunches(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}
	records, err := h.Store.ListPunchRecords(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list punch records", err)
		return
	}

	dtos := make([]PunchRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toPunchRecordDTO(rec)
	}
	writePeriod(w, filter.Period, dtos, nil)
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ListSchedules returns every schedule config in resolution order.
// GET /api/schedules
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	configs, err := h.Store.ListScheduleConfigs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list schedules", err)
		return
	}

	dtos := make([]factory.ScheduleJSON, len(configs))
	for i, cfg := range configs {
		dtos[i] = factory.ToJSON(cfg)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSchedules creates or replaces schedule configs.
// POST /api/schedules
func (h *Handler) CreateSchedules(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	configs, err := h.ScheduleFactory.ParseJSON(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule", err)
		return
	}
	if len(configs) == 0 {
		writeError(w, http.StatusBadRequest, "No schedules in request", nil)
		return
	}

	dtos := make([]factory.ScheduleJSON, len(configs))
	for i, cfg := range configs {
		if err := h.Store.SaveScheduleConfig(r.Context(), cfg); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save schedule", err)
			return
		}
		dtos[i] = factory.ToJSON(cfg)
	}
	h.Logger.Info("schedule configs saved", "count", len(configs))
	writeJSON(w, http.StatusCreated, dtos)
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// SavePayrollOvertime records overtime reported by payroll.
// POST /api/payroll/overtime
func (h *Handler) SavePayrollOvertime(w http.ResponseWriter, r *http.Request) {
	var req PayrollOvertimeRequest
	if !h.decode(w, r, &req) {
		return
	}

	period, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	hours, err := decimal.NewFromString(req.Hours)
	if err != nil || hours.IsNegative() {
		writeError(w, http.StatusBadRequest, "Invalid hours", err)
		return
	}

	entry := attendance.PayrollOvertime{
		EmployeeID: attendance.EmployeeID(req.EmployeeID),
		Period:     period,
		Hours:      hours,
	}
	if err := h.Store.SavePayrollOvertime(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save payroll overtime", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// periodInput is what every attendance computation starts from.
type periodInput struct {
	filter  attendance.RecordFilter
	records []attendance.PunchRecord
	engine  *attendance.Engine
}

func (h *Handler) loadPeriod(w http.ResponseWriter, r *http.Request) (*periodInput, bool) {
	filter, ok := parseFilter(w, r)
	if !ok {
		return nil, false
	}
	records, err := h.Store.ListPunchRecords(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load punch records", err)
		return nil, false
	}
	if filter.EmployeeID != "" && len(records) == 0 {
		err := fmt.Errorf("%w: %s", attendance.ErrEmployeeNotFound, filter.EmployeeID)
		writeError(w, http.StatusNotFound, "No records for employee in period", err)
		return nil, false
	}
	engine, err := h.engine(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load schedules", err)
		return nil, false
	}
	return &periodInput{filter: filter, records: records, engine: engine}, true
}

func (h *Handler) loadPayroll(ctx context.Context, period attendance.Period) (map[attendance.EmployeeID]decimal.Decimal, error) {
	entries, err := h.Store.ListPayrollOvertime(ctx, period)
	if err != nil {
		return nil, err
	}
	return attendance.OvertimeByEmployee(entries), nil
}

// Inconsistencies flags anomalies in a period.
// GET /api/attendance/inconsistencies
func (h *Handler) Inconsistencies(w http.ResponseWriter, r *http.Request) {
	in, ok := h.loadPeriod(w, r)
	if !ok {
		return
	}
	findings, err := in.engine.Inconsistencies(in.records)
	if !h.checkBatch(w, err) {
		return
	}

	dtos := make([]FindingDTO, len(findings))
	for i, f := range findings {
		dtos[i] = toFindingDTO(f)
	}
	writePeriod(w, in.filter.Period, dtos, err)
}

// Corrections returns a corrected punch per record.
// GET /api/attendance/corrections
func (h *Handler) Corrections(w http.ResponseWriter, r *http.Request) {
	in, ok := h.loadPeriod(w, r)
	if !ok {
		return
	}
	punches, err := in.engine.Corrections(in.records)
	if !h.checkBatch(w, err) {
		return
	}

	dtos := make([]CorrectedPunchDTO, len(punches))
	for i, p := range punches {
		dtos[i] = toCorrectedPunchDTO(p)
	}
	writePeriod(w, in.filter.Period, dtos, err)
}

// Adjustments returns the hours adjustment per employee.
// GET /api/attendance/adjustments
func (h *Handler) Adjustments(w http.ResponseWriter, r *http.Request) {
	in, ok := h.loadPeriod(w, r)
	if !ok {
		return
	}
	payroll, err := h.loadPayroll(r.Context(), in.filter.Period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payroll overtime", err)
		return
	}
	adjustments, err := in.engine.Adjustments(in.records, payroll)
	if !h.checkBatch(w, err) {
		return
	}

	dtos := make([]AdjustmentDTO, len(adjustments))
	for i, a := range adjustments {
		dtos[i] = toAdjustmentDTO(a)
	}
	writePeriod(w, in.filter.Period, dtos, err)
}

// Export returns corrected punches with payroll overtime spread over the days.
// GET /api/attendance/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	in, ok := h.loadPeriod(w, r)
	if !ok {
		return
	}
	payroll, err := h.loadPayroll(r.Context(), in.filter.Period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payroll overtime", err)
		return
	}
	rows, err := in.engine.Export(in.records, payroll)
	if !h.checkBatch(w, err) {
		return
	}

	dtos := make([]ExportRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toExportRowDTO(row)
	}
	writePeriod(w, in.filter.Period, dtos, err)
}

// Summary returns a rollup per employee, with the workdays lacking records.
// GET /api/attendance/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	in, ok := h.loadPeriod(w, r)
	if !ok {
		return
	}
	period := in.filter.Period
	summaries, err := in.engine.Summaries(in.records, &period)
	if !h.checkBatch(w, err) {
		return
	}

	groups := attendance.GroupByEmployee(in.records)
	dtos := make([]SummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toSummaryDTO(s)
		missing, err := attendance.MissingWorkdays(groups[i].Records, period)
		if err != nil {
			continue
		}
		for _, d := range missing {
			dtos[i].MissingWorkdays = append(dtos[i].MissingWorkdays, d.String())
		}
	}
	writePeriod(w, period, dtos, err)
}

// Health reports the server is up.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads and validates a JSON body, writing the error response on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// checkBatch lets per-record failures through and stops on anything else,
// such as a schedule config with an inverted window or a negative payroll
// overtime total, even when record failures came with it.
func (h *Handler) checkBatch(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}
	recErrs, others := attendance.SplitBatchError(err)
	if len(others) > 0 {
		failed := errors.Join(others...)
		status := http.StatusInternalServerError
		if attendance.IsClientError(failed) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Computation failed", failed)
		return false
	}
	for _, recErr := range recErrs {
		var cfgErr *attendance.ConfigError
		if errors.As(recErr.Err, &cfgErr) {
			writeError(w, http.StatusBadRequest, "Invalid schedule config", cfgErr)
			return false
		}
		h.Logger.Warn("record skipped", "record", recErr.Key.String(), "error", recErr.Err)
	}
	return true
}

func parseFilter(w http.ResponseWriter, r *http.Request) (attendance.RecordFilter, bool) {
	q := r.URL.Query()
	period, err := parsePeriod(q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use from/to as YYYY-MM-DD)", err)
		return attendance.RecordFilter{}, false
	}
	return attendance.RecordFilter{
		Period:     period,
		EmployeeID: attendance.EmployeeID(q.Get("employee_id")),
	}, true
}

func parsePeriod(from, to string) (attendance.Period, error) {
	start, err := attendance.ParseDate(from)
	if err != nil {
		return attendance.Period{}, err
	}
	end, err := attendance.ParseDate(to)
	if err != nil {
		return attendance.Period{}, err
	}
	p := attendance.Period{Start: start, End: end}
	return p, p.Validate()
}

func writePeriod(w http.ResponseWriter, period attendance.Period, items any, err error) {
	writeJSON(w, http.StatusOK, PeriodResponse{
		From:   period.Start.String(),
		To:     period.End.String(),
		Items:  items,
		Errors: toRecordErrorDTOs(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
