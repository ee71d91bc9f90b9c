/*
Package factory provides JSON and YAML to Go schedule config conversion.

PURPOSE:
  Converts schedule config documents, as produced by the admin schedule
  screen or kept in version control, into validated attendance.ScheduleConfig
  values. HR can change expected hours without code changes.

DOCUMENT SCHEMA (JSON; YAML uses the same keys):
  {
    "department_id": "produccion",
    "position_id": "operario",          // optional
    "entry_time_min": "06:30",
    "entry_time_max": "07:30",
    "exit_time_min": "15:30",
    "exit_time_max": "16:30",
    "work_hours": "9",                  // string or number, decimal hours
    "total_time_min": 15,               // tolerance minutes, 0 is kept
    "total_time_max": 15
  }

  A file may hold a single config, a list of configs, or
  {"schedules": [...]}.

KEY FEATURES:
  - Validates windows (entry/exit not inverted, HH:MM format)
  - Keeps omitted fields empty so the resolver applies its defaults
  - Keeps the document order, which decides the department fallback

USAGE:
  f := factory.NewScheduleFactory()
  configs, err := f.ParseYAML(data)
  configs, err := f.ParseJSON(data)

SEE ALSO:
  - attendance/schedule.go: ScheduleConfig and the Resolver
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/marcacion/attendance"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// ScheduleJSON is the document representation of a schedule config.
type ScheduleJSON struct {
	DepartmentID string  `json:"department_id" yaml:"department_id"`
	PositionID   string  `json:"position_id,omitempty" yaml:"position_id,omitempty"`
	EntryTimeMin string  `json:"entry_time_min,omitempty" yaml:"entry_time_min,omitempty"`
	EntryTimeMax string  `json:"entry_time_max,omitempty" yaml:"entry_time_max,omitempty"`
	ExitTimeMin  string  `json:"exit_time_min,omitempty" yaml:"exit_time_min,omitempty"`
	ExitTimeMax  string  `json:"exit_time_max,omitempty" yaml:"exit_time_max,omitempty"`
	WorkHours    Decimal `json:"work_hours,omitempty" yaml:"work_hours,omitempty"`
	TotalTimeMin *int    `json:"total_time_min,omitempty" yaml:"total_time_min,omitempty"`
	TotalTimeMax *int    `json:"total_time_max,omitempty" yaml:"total_time_max,omitempty"`
}

// ScheduleFile wraps a list of schedules.
type ScheduleFile struct {
	Schedules []ScheduleJSON `json:"schedules" yaml:"schedules"`
}

// Decimal accepts both "8.5" and 8.5 in documents.
type Decimal struct {
	decimal.Decimal
}

func (d *Decimal) UnmarshalYAML(node *yaml.Node) error {
	v, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", node.Value, err)
	}
	d.Decimal = v
	return nil
}

func (d Decimal) MarshalYAML() (any, error) {
	return d.String(), nil
}

// =============================================================================
// FACTORY
// =============================================================================

// ScheduleFactory converts documents to schedule configs.
type ScheduleFactory struct{}

func NewScheduleFactory() *ScheduleFactory {
	return &ScheduleFactory{}
}

// ParseJSON parses a single config, a list, or a {"schedules": [...]} file.
func (f *ScheduleFactory) ParseJSON(data []byte) ([]attendance.ScheduleConfig, error) {
	trimmed := bytes.TrimSpace(data)
	var docs []ScheduleJSON
	switch {
	case len(trimmed) == 0:
		return nil, nil
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("invalid schedule JSON: %w", err)
		}
	default:
		var file ScheduleFile
		if err := json.Unmarshal(trimmed, &file); err == nil && len(file.Schedules) > 0 {
			docs = file.Schedules
			break
		}
		var one ScheduleJSON
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("invalid schedule JSON: %w", err)
		}
		docs = []ScheduleJSON{one}
	}
	return f.convert(docs)
}

// ParseYAML parses a list of configs or a {schedules: [...]} file.
func (f *ScheduleFactory) ParseYAML(data []byte) ([]attendance.ScheduleConfig, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("invalid schedule YAML: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	var docs []ScheduleJSON
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&docs); err != nil {
			return nil, fmt.Errorf("invalid schedule YAML: %w", err)
		}
	case yaml.MappingNode:
		var file ScheduleFile
		if err := root.Decode(&file); err != nil {
			return nil, fmt.Errorf("invalid schedule YAML: %w", err)
		}
		docs = file.Schedules
		if len(docs) == 0 {
			var one ScheduleJSON
			if err := root.Decode(&one); err != nil {
				return nil, fmt.Errorf("invalid schedule YAML: %w", err)
			}
			docs = []ScheduleJSON{one}
		}
	default:
		return nil, fmt.Errorf("invalid schedule YAML: unexpected document kind")
	}
	return f.convert(docs)
}

// Convert validates one document.
func (f *ScheduleFactory) Convert(doc ScheduleJSON) (attendance.ScheduleConfig, error) {
	if doc.DepartmentID == "" {
		return attendance.ScheduleConfig{}, fmt.Errorf("department_id is required")
	}
	cfg := attendance.ScheduleConfig{
		DepartmentID: attendance.DepartmentID(doc.DepartmentID),
		PositionID:   attendance.PositionID(doc.PositionID),
		EntryTimeMin: attendance.HHMM(doc.EntryTimeMin),
		EntryTimeMax: attendance.HHMM(doc.EntryTimeMax),
		ExitTimeMin:  attendance.HHMM(doc.ExitTimeMin),
		ExitTimeMax:  attendance.HHMM(doc.ExitTimeMax),
		WorkHours:    doc.WorkHours.Decimal,
		TotalTimeMin: doc.TotalTimeMin,
		TotalTimeMax: doc.TotalTimeMax,
	}
	if below, above := cfg.Tolerances(); below < 0 || above < 0 {
		return attendance.ScheduleConfig{}, fmt.Errorf("schedule %s: tolerance cannot be negative", doc.DepartmentID)
	}
	// Validate with defaults so a half-filled window is checked against the default bound.
	if err := cfg.WithDefaults().Validate(); err != nil {
		return attendance.ScheduleConfig{}, err
	}
	return cfg, nil
}

func (f *ScheduleFactory) convert(docs []ScheduleJSON) ([]attendance.ScheduleConfig, error) {
	configs := make([]attendance.ScheduleConfig, 0, len(docs))
	for i, doc := range docs {
		cfg, err := f.Convert(doc)
		if err != nil {
			return nil, fmt.Errorf("schedule %d: %w", i, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// ToJSON converts a config back to its document form.
func ToJSON(cfg attendance.ScheduleConfig) ScheduleJSON {
	return ScheduleJSON{
		DepartmentID: string(cfg.DepartmentID),
		PositionID:   string(cfg.PositionID),
		EntryTimeMin: string(cfg.EntryTimeMin),
		EntryTimeMax: string(cfg.EntryTimeMax),
		ExitTimeMin:  string(cfg.ExitTimeMin),
		ExitTimeMax:  string(cfg.ExitTimeMax),
		WorkHours:    Decimal{cfg.WorkHours},
		TotalTimeMin: cfg.TotalTimeMin,
		TotalTimeMax: cfg.TotalTimeMax,
	}
}
