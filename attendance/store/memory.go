// Package store provides in-memory data sources for the attendance engine.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/warp/marcacion/attendance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	records   []attendance.PunchRecord // ordered by date, then insertion
	byID      map[string]int
	schedules []attendance.ScheduleConfig
	payroll   []attendance.PayrollOvertime
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]int)}
}

var _ attendance.Store = (*Memory)(nil)

func (m *Memory) SavePunchRecords(_ context.Context, records []attendance.PunchRecord) ([]attendance.PunchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := make([]attendance.PunchRecord, len(records))
	for i, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if _, ok := m.byID[r.ID]; ok {
			m.removeLocked(r.ID)
		}
		m.insertLocked(r)
		saved[i] = r
	}
	return saved, nil
}

func (m *Memory) insertLocked(r attendance.PunchRecord) {
	// Binary search for insertion point after every record of the same date
	i := sort.Search(len(m.records), func(i int) bool {
		return m.records[i].Date.After(r.Date)
	})
	m.records = append(m.records, attendance.PunchRecord{})
	copy(m.records[i+1:], m.records[i:])
	m.records[i] = r
	m.reindexLocked()
}

func (m *Memory) removeLocked(id string) {
	i := m.byID[id]
	m.records = append(m.records[:i], m.records[i+1:]...)
	m.reindexLocked()
}

func (m *Memory) reindexLocked() {
	m.byID = make(map[string]int, len(m.records))
	for i, r := range m.records {
		m.byID[r.ID] = i
	}
}

func (m *Memory) ListPunchRecords(_ context.Context, filter attendance.RecordFilter) ([]attendance.PunchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []attendance.PunchRecord
	for _, r := range m.records {
		if filter.Matches(r) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *Memory) SaveScheduleConfig(_ context.Context, cfg attendance.ScheduleConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.schedules {
		if c.DepartmentID == cfg.DepartmentID && c.PositionID == cfg.PositionID {
			m.schedules[i] = cfg
			return nil
		}
	}
	m.schedules = append(m.schedules, cfg)
	return nil
}

func (m *Memory) ListScheduleConfigs(_ context.Context) ([]attendance.ScheduleConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]attendance.ScheduleConfig, len(m.schedules))
	copy(result, m.schedules)
	return result, nil
}

func (m *Memory) SavePayrollOvertime(_ context.Context, p attendance.PayrollOvertime) error {
	if err := p.Period.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.payroll {
		if e.EmployeeID == p.EmployeeID && e.Period.Start.Equal(p.Period.Start) && e.Period.End.Equal(p.Period.End) {
			m.payroll[i] = p
			return nil
		}
	}
	m.payroll = append(m.payroll, p)
	return nil
}

func (m *Memory) ListPayrollOvertime(_ context.Context, period attendance.Period) ([]attendance.PayrollOvertime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []attendance.PayrollOvertime
	for _, p := range m.payroll {
		if period.Contains(p.Period.Start) && period.Contains(p.Period.End) {
			result = append(result, p)
		}
	}
	return result, nil
}

// Reset drops all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records, m.schedules, m.payroll = nil, nil, nil
	m.byID = make(map[string]int)
	return nil
}
