/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Punches:     PunchRecordDTO, ImportPunchesRequest
  Payroll:     PayrollOvertimeRequest
  Attendance:  FindingDTO, CorrectedPunchDTO, AdjustmentDTO, ExportRowDTO, SummaryDTO
  Wrappers:    PeriodResponse, RecordErrorDTO, ErrorResponse

VALIDATION:
  Request types carry go-playground/validator tags, checked in handlers
  before any conversion.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: ScheduleJSON, the schedule document type
*/
package api

import (
	"github.com/warp/marcacion/attendance"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// PunchRecordDTO represents a punch record in requests and responses.
type PunchRecordDTO struct {
	ID           string `json:"id,omitempty"`
	EmployeeID   string `json:"employee_id" validate:"required"`
	EmployeeName string `json:"employee_name"`
	DepartmentID string `json:"department_id" validate:"required"`
	PositionID   string `json:"position_id,omitempty"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	FirstCheckIn string `json:"first_check_in,omitempty"`
	LastCheckOut string `json:"last_check_out,omitempty"`
	TotalTime    string `json:"total_time"`
}

// ImportPunchesRequest is a bulk import from the time clock.
type ImportPunchesRequest struct {
	Records []PunchRecordDTO `json:"records" validate:"required,min=1,dive"`
}

// PayrollOvertimeRequest records the overtime payroll reported for a period.
type PayrollOvertimeRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required"`
	PeriodStart string `json:"period_start" validate:"required,datetime=2006-01-02"`
	PeriodEnd   string `json:"period_end" validate:"required,datetime=2006-01-02"`
	Hours       string `json:"hours" validate:"required,numeric"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// FindingDTO represents the inconsistencies of one record.
type FindingDTO struct {
	RecordID     string   `json:"record_id,omitempty"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name"`
	Date         string   `json:"date"`
	Types        []string `json:"types"`
	Details      []string `json:"details"`
}

// CorrectedPunchDTO represents a corrected day.
type CorrectedPunchDTO struct {
	RecordID     string `json:"record_id,omitempty"`
	EmployeeID   string `json:"employee_id"`
	Date         string `json:"date"`
	FirstCheckIn string `json:"first_check_in"`
	LastCheckOut string `json:"last_check_out"`
	TotalTime    string `json:"total_time"`
	Detail       string `json:"detail"`
	Changed      bool   `json:"changed"`
	Clamped      bool   `json:"clamped,omitempty"`
}

// AdjustmentDTO represents the hours adjustment of one employee.
type AdjustmentDTO struct {
	EmployeeID               string `json:"employee_id"`
	EmployeeName             string `json:"employee_name"`
	DaysWorked               int    `json:"days_worked"`
	DaysWithoutMarking       int    `json:"days_without_marking"`
	WorkedMinutes            int    `json:"worked_minutes"`
	ExpectedMinutes          int    `json:"expected_minutes"`
	ExcessMinutes            int    `json:"excess_minutes"`
	AdjustableMinutes        int    `json:"adjustable_minutes"`
	PayrollOvertimeMinutes   int    `json:"payroll_overtime_minutes"`
	FinalMinutes             int    `json:"final_minutes"`
	HoursDifferenceFormatted string `json:"hours_difference"`
}

// ExportRowDTO is one exported day.
type ExportRowDTO struct {
	PunchRecordDTO
	CorrectedFirstCheckIn string `json:"corrected_first_check_in"`
	CorrectedLastCheckOut string `json:"corrected_last_check_out"`
	CorrectedTotalTime    string `json:"corrected_total_time"`
	OvertimeMinutes       int    `json:"overtime_minutes"`
	Detail                string `json:"detail"`
}

// SummaryDTO represents one employee's period rollup.
type SummaryDTO struct {
	EmployeeID        string   `json:"employee_id"`
	EmployeeName      string   `json:"employee_name"`
	TotalDays         int      `json:"total_days"`
	AttendanceDays    int      `json:"attendance_days"`
	ValidDays         int      `json:"valid_days"`
	InvalidDays       int      `json:"invalid_days"`
	TotalHours        int      `json:"total_hours"`
	TotalMinutes      int      `json:"total_minutes"`
	TotalWorkableDays int      `json:"total_workable_days"`
	MissingWorkdays   []string `json:"missing_workdays,omitempty"`
}

// RecordErrorDTO reports a record left out of a computation.
type RecordErrorDTO struct {
	RecordID   string `json:"record_id,omitempty"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Error      string `json:"error"`
}

// PeriodResponse wraps the results of a period computation. Errors lists
// the records that were skipped; Items still holds every other result.
type PeriodResponse struct {
	From   string           `json:"from"`
	To     string           `json:"to"`
	Items  any              `json:"items"`
	Errors []RecordErrorDTO `json:"errors,omitempty"`
}

// ErrorResponse is returned on failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toPunchRecordDTO(r attendance.PunchRecord) PunchRecordDTO {
	return PunchRecordDTO{
		ID:           r.ID,
		EmployeeID:   string(r.EmployeeID),
		EmployeeName: r.EmployeeName,
		DepartmentID: string(r.DepartmentID),
		PositionID:   string(r.PositionID),
		Date:         r.Date.String(),
		FirstCheckIn: string(r.FirstCheckIn),
		LastCheckOut: string(r.LastCheckOut),
		TotalTime:    string(r.TotalTime),
	}
}

func (d PunchRecordDTO) toRecord() (attendance.PunchRecord, error) {
	date, err := attendance.ParseDate(d.Date)
	if err != nil {
		return attendance.PunchRecord{}, err
	}
	total := attendance.HHMM(d.TotalTime)
	if total == "" {
		total = attendance.NoTime
	}
	return attendance.PunchRecord{
		ID:           d.ID,
		EmployeeID:   attendance.EmployeeID(d.EmployeeID),
		EmployeeName: d.EmployeeName,
		DepartmentID: attendance.DepartmentID(d.DepartmentID),
		PositionID:   attendance.PositionID(d.PositionID),
		Date:         date,
		FirstCheckIn: attendance.HHMM(d.FirstCheckIn),
		LastCheckOut: attendance.HHMM(d.LastCheckOut),
		TotalTime:    total,
	}, nil
}

func toFindingDTO(f attendance.Finding) FindingDTO {
	types := make([]string, len(f.Types))
	for i, t := range f.Types {
		types[i] = string(t)
	}
	return FindingDTO{
		RecordID:     f.RecordID,
		EmployeeID:   string(f.Key.EmployeeID),
		EmployeeName: f.EmployeeName,
		Date:         f.Key.Date,
		Types:        types,
		Details:      f.Details,
	}
}

func toCorrectedPunchDTO(p attendance.CorrectedPunch) CorrectedPunchDTO {
	return CorrectedPunchDTO{
		RecordID:     p.RecordID,
		EmployeeID:   string(p.Key.EmployeeID),
		Date:         p.Key.Date,
		FirstCheckIn: string(p.FirstCheckIn),
		LastCheckOut: string(p.LastCheckOut),
		TotalTime:    string(p.TotalTime),
		Detail:       p.Detail,
		Changed:      p.Changed,
		Clamped:      p.Clamped,
	}
}

func toAdjustmentDTO(a attendance.EmployeeAdjustment) AdjustmentDTO {
	return AdjustmentDTO{
		EmployeeID:               string(a.EmployeeID),
		EmployeeName:             a.EmployeeName,
		DaysWorked:               a.DaysWorked,
		DaysWithoutMarking:       a.DaysWithoutMarking,
		WorkedMinutes:            a.WorkedMinutes,
		ExpectedMinutes:          a.ExpectedMinutes,
		ExcessMinutes:            a.ExcessMinutes,
		AdjustableMinutes:        a.AdjustableMinutes,
		PayrollOvertimeMinutes:   a.PayrollMinutes,
		FinalMinutes:             a.FinalMinutes,
		HoursDifferenceFormatted: a.HoursDifferenceFormatted,
	}
}

func toExportRowDTO(row attendance.ExportRow) ExportRowDTO {
	return ExportRowDTO{
		PunchRecordDTO:        toPunchRecordDTO(row.Record),
		CorrectedFirstCheckIn: string(row.Corrected.FirstCheckIn),
		CorrectedLastCheckOut: string(row.Corrected.LastCheckOut),
		CorrectedTotalTime:    string(row.Corrected.TotalTime),
		OvertimeMinutes:       row.OvertimeMinutes,
		Detail:                row.Corrected.Detail,
	}
}

func toSummaryDTO(s attendance.Summary) SummaryDTO {
	return SummaryDTO{
		EmployeeID:        string(s.EmployeeID),
		EmployeeName:      s.EmployeeName,
		TotalDays:         s.TotalDays,
		AttendanceDays:    s.AttendanceDays,
		ValidDays:         s.ValidDays,
		InvalidDays:       s.InvalidDays,
		TotalHours:        s.TotalHours,
		TotalMinutes:      s.TotalMinutes,
		TotalWorkableDays: s.TotalWorkableDays,
	}
}

func toRecordErrorDTOs(err error) []RecordErrorDTO {
	var out []RecordErrorDTO
	for _, e := range attendance.RecordErrors(err) {
		out = append(out, RecordErrorDTO{
			RecordID:   e.ID,
			EmployeeID: string(e.Key.EmployeeID),
			Date:       e.Key.Date,
			Error:      e.Err.Error(),
		})
	}
	return out
}
