/*
schedule.go - Expected attendance policy and its resolution

PURPOSE:
  A ScheduleConfig says when a department (optionally narrowed to one
  position) is expected to clock in and out, how long a shift lasts and how
  far a day may deviate from that before it is flagged or corrected.

RESOLUTION ORDER:
  1. Config with the same department AND position
  2. First config of the department, in insertion order
  3. The resolver's default schedule

  Resolution never fails. The default schedule is a named value
  (DefaultSchedule) handed to the Resolver, not literals inside the
  algorithms.

DEFAULTS:
  Unconfigured fields fall back to DefaultSchedule's value: entry
  06:30-07:30, exit 15:30-16:30, 9 work hours, 15/15 tolerance. Times and
  hours are unconfigured at their zero value; tolerances are unconfigured
  when nil, so an explicit 0 is a zero-tolerance schedule.

SEE ALSO:
  - factory/schedule.go: JSON and YAML schedule documents
  - detect.go, correct.go: Consumers of Bounds
*/
package attendance

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SCHEDULE CONFIG
// =============================================================================

type ScheduleConfig struct {
	DepartmentID DepartmentID
	PositionID   PositionID // empty = whole department

	EntryTimeMin HHMM
	EntryTimeMax HHMM
	ExitTimeMin  HHMM
	ExitTimeMax  HHMM

	// WorkHours is the expected shift length, e.g. 9 or 8.5.
	WorkHours decimal.Decimal

	// Tolerance in minutes below/above WorkHours that still counts as on
	// schedule. nil = unconfigured.
	TotalTimeMin *int
	TotalTimeMax *int
}

// Minutes returns a pointer to m, for the tolerance fields.
func Minutes(m int) *int { return &m }

// DefaultSchedule applies when no config matches a record's department.
var DefaultSchedule = ScheduleConfig{
	EntryTimeMin: "06:30",
	EntryTimeMax: "07:30",
	ExitTimeMin:  "15:30",
	ExitTimeMax:  "16:30",
	WorkHours:    decimal.NewFromInt(9),
	TotalTimeMin: Minutes(15),
	TotalTimeMax: Minutes(15),
}

// WithDefaults fills unset fields from DefaultSchedule.
func (c ScheduleConfig) WithDefaults() ScheduleConfig {
	return c.withDefaultsFrom(DefaultSchedule)
}

func (c ScheduleConfig) withDefaultsFrom(d ScheduleConfig) ScheduleConfig {
	if c.EntryTimeMin == "" {
		c.EntryTimeMin = d.EntryTimeMin
	}
	if c.EntryTimeMax == "" {
		c.EntryTimeMax = d.EntryTimeMax
	}
	if c.ExitTimeMin == "" {
		c.ExitTimeMin = d.ExitTimeMin
	}
	if c.ExitTimeMax == "" {
		c.ExitTimeMax = d.ExitTimeMax
	}
	if !c.WorkHours.IsPositive() {
		c.WorkHours = d.WorkHours
	}
	c.TotalTimeMin = orDefault(c.TotalTimeMin, d.TotalTimeMin)
	c.TotalTimeMax = orDefault(c.TotalTimeMax, d.TotalTimeMax)
	return c
}

// orDefault returns a copy of v, or of d when v is unset, so resolved
// configs never alias DefaultSchedule.
func orDefault(v, d *int) *int {
	if v == nil {
		v = d
	}
	if v == nil {
		return nil
	}
	return Minutes(*v)
}

// Tolerances returns the minutes accepted below and above WorkHours.
// Unconfigured tolerances count as 0; resolve the config first.
func (c ScheduleConfig) Tolerances() (below, above int) {
	if c.TotalTimeMin != nil {
		below = *c.TotalTimeMin
	}
	if c.TotalTimeMax != nil {
		above = *c.TotalTimeMax
	}
	return below, above
}

// WorkMinutes returns WorkHours in whole minutes.
func (c ScheduleConfig) WorkMinutes() int {
	return int(c.WorkHours.Mul(decimal.NewFromInt(60)).Round(0).IntPart())
}

// Validate checks that both windows parse and are not inverted.
func (c ScheduleConfig) Validate() error {
	_, err := c.Bounds()
	return err
}

// Bounds parses the config into minute windows. Errors are attributed to
// the config through *ConfigError.
func (c ScheduleConfig) Bounds() (Bounds, error) {
	entry, err := NewWindow("entry", c.EntryTimeMin, c.EntryTimeMax)
	if err != nil {
		return Bounds{}, c.wrap(err)
	}
	exit, err := NewWindow("exit", c.ExitTimeMin, c.ExitTimeMax)
	if err != nil {
		return Bounds{}, c.wrap(err)
	}
	work := c.WorkMinutes()
	below, above := c.Tolerances()
	target := Window{Min: work - below, Max: work + above}
	if target.Empty() {
		return Bounds{}, c.wrap(&InvalidRangeError{Field: "duration", Min: target.Min, Max: target.Max})
	}
	return Bounds{Entry: entry, Exit: exit, Target: target, Work: work, Below: below, Above: above}, nil
}

func (c ScheduleConfig) wrap(err error) error {
	return &ConfigError{DepartmentID: c.DepartmentID, PositionID: c.PositionID, Err: err}
}

// Bounds is a ScheduleConfig parsed into minutes.
type Bounds struct {
	Entry  Window
	Exit   Window
	Target Window // accepted shift duration
	Work   int    // expected shift duration
	Below  int    // tolerance under Work
	Above  int    // tolerance over Work
}

// =============================================================================
// RESOLVER
// =============================================================================

type Resolver struct {
	Configs []ScheduleConfig
	Default ScheduleConfig
}

// NewResolver returns a resolver over configs that falls back to DefaultSchedule.
func NewResolver(configs []ScheduleConfig) *Resolver {
	return &Resolver{Configs: configs, Default: DefaultSchedule}
}

// Resolve returns the schedule for a department and optional position,
// with unset fields filled from the resolver's default.
func (r *Resolver) Resolve(departmentID DepartmentID, positionID PositionID) ScheduleConfig {
	def := r.Default.withDefaultsFrom(DefaultSchedule)
	if positionID != "" {
		for _, c := range r.Configs {
			if c.DepartmentID == departmentID && c.PositionID == positionID {
				return c.withDefaultsFrom(def)
			}
		}
	}
	for _, c := range r.Configs {
		if c.DepartmentID == departmentID {
			return c.withDefaultsFrom(def)
		}
	}
	out := def
	out.DepartmentID = departmentID
	out.PositionID = ""
	return out
}

// ResolveRecord resolves the schedule that applies to a record.
func (r *Resolver) ResolveRecord(rec PunchRecord) ScheduleConfig {
	return r.Resolve(rec.DepartmentID, rec.PositionID)
}

// Resolve is Resolver.Resolve over configs with DefaultSchedule as fallback.
func Resolve(departmentID DepartmentID, positionID PositionID, configs []ScheduleConfig) ScheduleConfig {
	return NewResolver(configs).Resolve(departmentID, positionID)
}
