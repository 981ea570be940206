package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dotcommander/schedlint/internal/cue"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported schedule format")

// dateLayouts are tried in order when parsing snapshot timestamps.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// document is the on-disk shape of a schedule snapshot.
type document struct {
	ProjectID     string        `json:"project_id" yaml:"project_id"`
	Name          string        `json:"name" yaml:"name"`
	DataDate      string        `json:"data_date" yaml:"data_date"`
	Activities    []activityDoc `json:"activities" yaml:"activities"`
	Relationships []relationDoc `json:"relationships" yaml:"relationships"`
}

type activityDoc struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Type            string   `json:"type" yaml:"type"`
	Duration        float64  `json:"duration" yaml:"duration"`
	PlannedStart    string   `json:"planned_start" yaml:"planned_start"`
	PlannedFinish   string   `json:"planned_finish" yaml:"planned_finish"`
	ActualStart     string   `json:"actual_start" yaml:"actual_start"`
	ActualFinish    string   `json:"actual_finish" yaml:"actual_finish"`
	TotalFloat      *float64 `json:"total_float" yaml:"total_float"`
	FreeFloat       *float64 `json:"free_float" yaml:"free_float"`
	Status          string   `json:"status" yaml:"status"`
	PercentComplete float64  `json:"percent_complete" yaml:"percent_complete"`
	ConstraintType  string   `json:"constraint_type" yaml:"constraint_type"`
	ConstraintDate  string   `json:"constraint_date" yaml:"constraint_date"`
}

type relationDoc struct {
	Predecessor string  `json:"predecessor" yaml:"predecessor"`
	Successor   string  `json:"successor" yaml:"successor"`
	Type        string  `json:"type" yaml:"type"`
	Lag         float64 `json:"lag" yaml:"lag"`
}

// Loader reads schedule snapshots from disk. It is the data-access side of
// an assessment: structural problems (wrong types, unknown enum values,
// unparseable dates) are load errors, while semantic problems pass through
// for the rule evaluators to find.
type Loader struct {
	validator *cue.Validator
}

// NewLoader creates a Loader with the embedded CUE schemas compiled.
func NewLoader() (*Loader, error) {
	v := cue.NewValidator()
	if err := v.LoadSchemas(); err != nil {
		return nil, err
	}
	return &Loader{validator: v}, nil
}

// NewLoaderWithValidator creates a Loader that shares an existing validator.
func NewLoaderWithValidator(v *cue.Validator) *Loader {
	return &Loader{validator: v}
}

// LoadFile reads a .json, .yaml or .yml snapshot.
func (l *Loader) LoadFile(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule %s: %w", path, err)
	}

	s, err := l.Load(path, data)
	if err != nil {
		return nil, err
	}

	if s.ProjectID == "" {
		s.ProjectID = ProjectIDFromPath(path)
	}
	return s, nil
}

// Load decodes a snapshot whose format is chosen by name's extension.
func (l *Loader) Load(name string, data []byte) (*Schedule, error) {
	raw, err := decodeRaw(name, data)
	if err != nil {
		return nil, err
	}

	if l.validator != nil {
		verrs, err := l.validator.ValidateSchedule(name, raw)
		if err != nil {
			return nil, fmt.Errorf("validating %s: %w", name, err)
		}
		if err := cue.AsError(verrs); err != nil {
			return nil, err
		}
	}

	var doc document
	if err := decodeDocument(name, data, &doc); err != nil {
		return nil, err
	}

	return doc.toSchedule(name)
}

func decodeRaw(name string, data []byte) (map[string]any, error) {
	raw := make(map[string]any)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON %s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	return raw, nil
}

func decodeDocument(name string, data []byte, doc *document) error {
	if strings.ToLower(filepath.Ext(name)) == ".json" {
		if err := json.Unmarshal(data, doc); err != nil {
			return fmt.Errorf("failed to decode schedule %s: %w", name, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to decode schedule %s: %w", name, err)
	}
	return nil
}

func (d *document) toSchedule(name string) (*Schedule, error) {
	var errs []error
	date := func(field, v string) *time.Time {
		t, err := parseDate(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
		return t
	}

	s := &Schedule{
		ProjectID:     d.ProjectID,
		Name:          d.Name,
		DataDate:      date("data_date", d.DataDate),
		Activities:    make([]Activity, 0, len(d.Activities)),
		Relationships: make([]Relationship, 0, len(d.Relationships)),
	}

	for i, a := range d.Activities {
		prefix := fmt.Sprintf("activities[%d]", i)
		act := Activity{
			ID:              a.ID,
			Name:            a.Name,
			Type:            ActivityType(a.Type),
			Duration:        a.Duration,
			PlannedStart:    date(prefix+".planned_start", a.PlannedStart),
			PlannedFinish:   date(prefix+".planned_finish", a.PlannedFinish),
			ActualStart:     date(prefix+".actual_start", a.ActualStart),
			ActualFinish:    date(prefix+".actual_finish", a.ActualFinish),
			TotalFloat:      a.TotalFloat,
			FreeFloat:       a.FreeFloat,
			Status:          Status(a.Status),
			PercentComplete: a.PercentComplete,
			ConstraintType:  ConstraintType(a.ConstraintType),
			ConstraintDate:  date(prefix+".constraint_date", a.ConstraintDate),
		}
		if act.Type == "" {
			act.Type = TypeTask
		}
		if act.Status == "" {
			act.Status = StatusNotStarted
		}
		if act.ConstraintType == "" {
			act.ConstraintType = ConstraintNone
		}
		s.Activities = append(s.Activities, act)
	}

	for _, r := range d.Relationships {
		rel := Relationship{
			Predecessor: r.Predecessor,
			Successor:   r.Successor,
			Type:        RelationType(strings.ToUpper(r.Type)),
			Lag:         r.Lag,
		}
		if rel.Type == "" {
			rel.Type = FinishToStart
		}
		s.Relationships = append(s.Relationships, rel)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid dates in %s: %w", name, errors.Join(errs...))
	}
	return s, nil
}

func parseDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised date %q", v)
}

// ProjectIDFromPath derives a project id from a snapshot file name:
// "site/tower-a.schedule.json" -> "tower-a".
func ProjectIDFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, ".schedule")
}
