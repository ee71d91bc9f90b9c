/*
scheduler.go - Periodic inconsistency scanner

PURPOSE:
  Periodically runs the detector over the trailing days so supervisors see
  forgotten punches before the payroll cut-off, without anyone calling the
  API. The last scan is kept for GET /api/scanner/last.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Scans [today-Lookback, today-1]; today is still in progress
  - Logs one line per employee with findings
  - Never writes: corrections stay an explicit request

CONFIGURATION:
  - CheckInterval: How often to scan (default: 1 hour, 0 disables)
  - Lookback: Days to scan back from yesterday (default: 7)

USAGE:
  scanner := NewInconsistencyScanner(handler)
  scanner.Start()
  // ... later
  scanner.Stop()

SEE ALSO:
  - handlers.go: Inconsistencies endpoint (same computation on demand)
  - attendance/detect.go: Detector
*/
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/warp/marcacion/attendance"
)

// ScanResult is the outcome of one scan.
type ScanResult struct {
	RanAt          time.Time                    `json:"ran_at"`
	From           string                       `json:"from"`
	To             string                       `json:"to"`
	Records        int                          `json:"records"`
	Findings       int                          `json:"findings"`
	SkippedRecords int                          `json:"skipped_records"`
	ByEmployee     map[attendance.EmployeeID]int `json:"by_employee"`
	Error          string                       `json:"error,omitempty"`
}

// InconsistencyScanner runs the detector on a timer.
type InconsistencyScanner struct {
	Handler       *Handler
	CheckInterval time.Duration
	Lookback      int
	Now           func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	last   *ScanResult
}

// NewInconsistencyScanner creates a new scanner.
func NewInconsistencyScanner(handler *Handler) *InconsistencyScanner {
	return &InconsistencyScanner{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Lookback:      7,
		Now:           time.Now,
	}
}

// Start begins the scanner.
func (s *InconsistencyScanner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CheckInterval <= 0 {
		s.Handler.Logger.Info("inconsistency scanner disabled")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.run(s.ticker, s.stop)

	s.Handler.Logger.Info("inconsistency scanner started", "interval", s.CheckInterval, "lookback_days", s.Lookback)
}

// Stop stops the scanner and waits for a running scan to finish.
func (s *InconsistencyScanner) Stop() {
	s.mu.Lock()
	if s.ticker == nil {
		s.mu.Unlock()
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.ticker = nil
	s.mu.Unlock()

	s.wg.Wait()
	s.Handler.Logger.Info("inconsistency scanner stopped")
}

func (s *InconsistencyScanner) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	// Run immediately on start
	s.RunNow(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow scans immediately and records the result.
func (s *InconsistencyScanner) RunNow(ctx context.Context) ScanResult {
	result := s.scan(ctx)

	s.mu.Lock()
	s.last = &result
	s.mu.Unlock()
	return result
}

// Last returns the most recent scan, or nil before the first one.
func (s *InconsistencyScanner) Last() *ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	out := *s.last
	return &out
}

// Period returns the days the next scan covers.
func (s *InconsistencyScanner) Period() attendance.Period {
	now := s.Now().UTC()
	yesterday := attendance.NewDate(now.Year(), now.Month(), now.Day()).AddDays(-1)
	lookback := max(s.Lookback, 1)
	return attendance.Period{Start: yesterday.AddDays(1 - lookback), End: yesterday}
}

func (s *InconsistencyScanner) scan(ctx context.Context) ScanResult {
	h := s.Handler
	period := s.Period()
	result := ScanResult{
		RanAt:      s.Now(),
		From:       period.Start.String(),
		To:         period.End.String(),
		ByEmployee: make(map[attendance.EmployeeID]int),
	}

	records, err := h.Store.ListPunchRecords(ctx, attendance.RecordFilter{Period: period})
	if err != nil {
		h.Logger.Error("scan: failed to load punch records", "error", err)
		result.Error = err.Error()
		return result
	}
	engine, err := h.engine(ctx)
	if err != nil {
		h.Logger.Error("scan: failed to load schedules", "error", err)
		result.Error = err.Error()
		return result
	}

	findings, err := engine.Inconsistencies(records)
	result.Records = len(records)
	result.Findings = len(findings)
	recErrs, others := attendance.SplitBatchError(err)
	result.SkippedRecords = len(recErrs)
	if len(others) > 0 {
		result.Error = errors.Join(others...).Error()
	}
	for _, f := range findings {
		result.ByEmployee[f.Key.EmployeeID]++
	}

	for id, n := range result.ByEmployee {
		h.Logger.Warn("scan: punches need review", "employee_id", id, "days", n, "from", result.From, "to", result.To)
	}
	h.Logger.Info("scan completed",
		"from", result.From, "to", result.To,
		"records", result.Records, "findings", result.Findings, "skipped", result.SkippedRecords)
	return result
}

// LastScan returns the most recent scan result.
// GET /api/scanner/last
func (s *InconsistencyScanner) LastScan(w http.ResponseWriter, r *http.Request) {
	last := s.Last()
	if last == nil {
		writeError(w, http.StatusNotFound, "No scan has run yet", nil)
		return
	}
	writeJSON(w, http.StatusOK, last)
}
