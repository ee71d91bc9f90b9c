/*
Package sqlite provides a SQLite-backed implementation of the data sources.

PURPOSE:
  Implements attendance.Store (punch records, schedule configs, payroll
  overtime) using SQLite. The engine never touches the database; the HTTP
  layer loads a period from here and hands plain slices to the engine.

KEY TABLES:
  punch_records:     One row per employee and day from the time-clock import
  schedule_configs:  Expected schedule per department (and position)
  payroll_overtime:  Overtime reported by payroll per employee and period

ORDERING:
  Both punch_records and schedule_configs carry an AUTOINCREMENT seq column.
  Upserts keep the original seq, so
  - records of the same date come back in import order,
  - schedule configs come back in insertion order (resolution picks the
    first config of a department).

DECIMALS:
  Work hours and payroll overtime hours are stored as decimal strings and
  read back with shopspring/decimal, never as floats.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode.

USAGE:
  store, err := sqlite.New("./data/marcacion.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - attendance/store.go: Interface definitions
  - attendance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/marcacion/attendance"
)

// Store implements attendance.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ attendance.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Punch records (time-clock import)
	CREATE TABLE IF NOT EXISTS punch_records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		employee_id TEXT NOT NULL,
		employee_name TEXT NOT NULL,
		department_id TEXT NOT NULL,
		position_id TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		first_check_in TEXT NOT NULL DEFAULT '',
		last_check_out TEXT NOT NULL DEFAULT '',
		total_time TEXT NOT NULL DEFAULT '00:00',
		created_at TEXT NOT NULL
	);

	-- Period loads (hot path)
	CREATE INDEX IF NOT EXISTS idx_punch_records_date
		ON punch_records(date, seq);
	CREATE INDEX IF NOT EXISTS idx_punch_records_employee_date
		ON punch_records(employee_id, date);

	-- Schedule configs
	CREATE TABLE IF NOT EXISTS schedule_configs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		department_id TEXT NOT NULL,
		position_id TEXT NOT NULL DEFAULT '',
		entry_time_min TEXT NOT NULL DEFAULT '',
		entry_time_max TEXT NOT NULL DEFAULT '',
		exit_time_min TEXT NOT NULL DEFAULT '',
		exit_time_max TEXT NOT NULL DEFAULT '',
		work_hours TEXT NOT NULL DEFAULT '0',
		total_time_min INTEGER,
		total_time_max INTEGER,
		updated_at TEXT NOT NULL,
		UNIQUE(department_id, position_id)
	);

	-- Payroll overtime
	CREATE TABLE IF NOT EXISTS payroll_overtime (
		employee_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		hours TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, period_start, period_end)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PUNCH RECORDS
// =============================================================================

// SavePunchRecords stores records atomically. Either all are written or none.
func (s *Store) SavePunchRecords(ctx context.Context, records []attendance.PunchRecord) ([]attendance.PunchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	query := `
		INSERT INTO punch_records (id, employee_id, employee_name, department_id, position_id,
			date, first_check_in, last_check_out, total_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			employee_name = excluded.employee_name,
			department_id = excluded.department_id,
			position_id = excluded.position_id,
			date = excluded.date,
			first_check_in = excluded.first_check_in,
			last_check_out = excluded.last_check_out,
			total_time = excluded.total_time
	`

	now := time.Now().UTC().Format(time.RFC3339)
	saved := make([]attendance.PunchRecord, len(records))
	for i, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if _, err := sqlTx.ExecContext(ctx, query,
			r.ID, string(r.EmployeeID), r.EmployeeName, string(r.DepartmentID), string(r.PositionID),
			r.Date.String(), string(r.FirstCheckIn), string(r.LastCheckOut), string(r.TotalTime), now,
		); err != nil {
			return nil, fmt.Errorf("failed to save punch record %s: %w", r.Key(), err)
		}
		saved[i] = r
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit punch records: %w", err)
	}
	return saved, nil
}

// ListPunchRecords returns matching records ordered by date, then import order.
func (s *Store) ListPunchRecords(ctx context.Context, filter attendance.RecordFilter) ([]attendance.PunchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, employee_name, department_id, position_id,
			date, first_check_in, last_check_out, total_time
		FROM punch_records
		WHERE date >= ? AND date <= ?`
	args := []any{filter.Period.Start.String(), filter.Period.End.String()}
	if filter.EmployeeID != "" {
		query += " AND employee_id = ?"
		args = append(args, string(filter.EmployeeID))
	}
	query += " ORDER BY date, seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []attendance.PunchRecord
	for rows.Next() {
		var r attendance.PunchRecord
		var employeeID, departmentID, positionID, date, first, last, total string
		if err := rows.Scan(&r.ID, &employeeID, &r.EmployeeName, &departmentID, &positionID,
			&date, &first, &last, &total); err != nil {
			return nil, err
		}
		r.Date, err = attendance.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("punch record %s: %w", r.ID, err)
		}
		r.EmployeeID = attendance.EmployeeID(employeeID)
		r.DepartmentID = attendance.DepartmentID(departmentID)
		r.PositionID = attendance.PositionID(positionID)
		r.FirstCheckIn = attendance.HHMM(first)
		r.LastCheckOut = attendance.HHMM(last)
		r.TotalTime = attendance.HHMM(total)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// SCHEDULE CONFIGS
// =============================================================================

func (s *Store) SaveScheduleConfig(ctx context.Context, cfg attendance.ScheduleConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO schedule_configs (department_id, position_id, entry_time_min, entry_time_max,
			exit_time_min, exit_time_max, work_hours, total_time_min, total_time_max, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(department_id, position_id) DO UPDATE SET
			entry_time_min = excluded.entry_time_min,
			entry_time_max = excluded.entry_time_max,
			exit_time_min = excluded.exit_time_min,
			exit_time_max = excluded.exit_time_max,
			work_hours = excluded.work_hours,
			total_time_min = excluded.total_time_min,
			total_time_max = excluded.total_time_max,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(cfg.DepartmentID), string(cfg.PositionID),
		string(cfg.EntryTimeMin), string(cfg.EntryTimeMax),
		string(cfg.ExitTimeMin), string(cfg.ExitTimeMax),
		cfg.WorkHours.String(), cfg.TotalTimeMin, cfg.TotalTimeMax,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListScheduleConfigs returns configs in insertion order.
func (s *Store) ListScheduleConfigs(ctx context.Context) ([]attendance.ScheduleConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT department_id, position_id, entry_time_min, entry_time_max,
			exit_time_min, exit_time_max, work_hours, total_time_min, total_time_max
		FROM schedule_configs ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []attendance.ScheduleConfig
	for rows.Next() {
		var c attendance.ScheduleConfig
		var departmentID, positionID, entryMin, entryMax, exitMin, exitMax, workHours string
		if err := rows.Scan(&departmentID, &positionID, &entryMin, &entryMax,
			&exitMin, &exitMax, &workHours, &c.TotalTimeMin, &c.TotalTimeMax); err != nil {
			return nil, err
		}
		c.DepartmentID = attendance.DepartmentID(departmentID)
		c.PositionID = attendance.PositionID(positionID)
		c.EntryTimeMin, c.EntryTimeMax = attendance.HHMM(entryMin), attendance.HHMM(entryMax)
		c.ExitTimeMin, c.ExitTimeMax = attendance.HHMM(exitMin), attendance.HHMM(exitMax)
		c.WorkHours = parseDecimal(workHours)
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// =============================================================================
// PAYROLL OVERTIME
// =============================================================================

func (s *Store) SavePayrollOvertime(ctx context.Context, p attendance.PayrollOvertime) error {
	if err := p.Period.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO payroll_overtime (employee_id, period_start, period_end, hours, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, period_start, period_end) DO UPDATE SET
			hours = excluded.hours,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(p.EmployeeID), p.Period.Start.String(), p.Period.End.String(),
		p.Hours.String(), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListPayrollOvertime returns figures whose period lies within period.
func (s *Store) ListPayrollOvertime(ctx context.Context, period attendance.Period) ([]attendance.PayrollOvertime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, period_start, period_end, hours
		FROM payroll_overtime
		WHERE period_start >= ? AND period_end <= ?
		ORDER BY employee_id, period_start`,
		period.Start.String(), period.End.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []attendance.PayrollOvertime
	for rows.Next() {
		var employeeID, start, end, hours string
		if err := rows.Scan(&employeeID, &start, &end, &hours); err != nil {
			return nil, err
		}
		p := attendance.PayrollOvertime{EmployeeID: attendance.EmployeeID(employeeID), Hours: parseDecimal(hours)}
		if p.Period.Start, err = attendance.ParseDate(start); err != nil {
			return nil, err
		}
		if p.Period.End, err = attendance.ParseDate(end); err != nil {
			return nil, err
		}
		entries = append(entries, p)
	}
	return entries, rows.Err()
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset deletes all data. For development and demo scenarios only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"punch_records", "schedule_configs", "payroll_overtime"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
