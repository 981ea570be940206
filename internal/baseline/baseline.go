package baseline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dotcommander/schedlint/internal/catalog"
	"github.com/dotcommander/schedlint/internal/report"
)

// DefaultFile is the baseline file name used when none is given.
const DefaultFile = ".schedlintbaseline.json"

// Baseline is a snapshot of earlier scores, keyed by project, used to report
// score trends between runs.
type Baseline struct {
	Version  string         `json:"version"`
	Catalog  string         `json:"catalog"` // fingerprint of the catalog the scores came from
	Projects []ProjectScore `json:"projects"`
	index    map[string]int // project id -> position in Projects
}

// ProjectScore is one project's recorded scores.
type ProjectScore struct {
	ProjectID string             `json:"project_id"`
	Score     int                `json:"score"`
	Composite float64            `json:"composite"`
	Rules     map[string]float64 `json:"rules"` // rule id -> sub-score
}

// Create builds a baseline from reports. Projects are sorted by id and a
// repeated project keeps its last report.
func Create(reports []*report.QualityReport, cat *catalog.Catalog) *Baseline {
	byID := make(map[string]ProjectScore, len(reports))
	for _, r := range reports {
		if r == nil {
			continue
		}
		byID[r.ProjectID] = snapshot(r)
	}

	projects := make([]ProjectScore, 0, len(byID))
	for _, ps := range byID {
		projects = append(projects, ps)
	}

	// Sort for deterministic output
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].ProjectID < projects[j].ProjectID
	})

	b := &Baseline{
		Version:  "1.0",
		Catalog:  Fingerprint(cat),
		Projects: projects,
	}
	b.buildIndex()
	return b
}

func snapshot(r *report.QualityReport) ProjectScore {
	ps := ProjectScore{
		ProjectID: r.ProjectID,
		Score:     r.Score,
		Composite: r.Composite,
		Rules:     make(map[string]float64, len(r.Standard)+len(r.Custom)),
	}
	for _, rr := range r.Results() {
		ps.Rules[rr.RuleID] = rr.Score
	}
	return ps
}

// Load loads a baseline from a JSON file.
func Load(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file: %w", err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse baseline file: %w", err)
	}

	b.buildIndex()
	return &b, nil
}

// Save writes the baseline to a JSON file.
func (b *Baseline) Save(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write baseline file: %w", err)
	}

	return nil
}

func (b *Baseline) buildIndex() {
	b.index = make(map[string]int, len(b.Projects))
	for i, p := range b.Projects {
		b.index[p.ProjectID] = i
	}
}

// Project returns the recorded scores for a project.
func (b *Baseline) Project(id string) (ProjectScore, bool) {
	if b == nil || b.index == nil {
		return ProjectScore{}, false
	}
	i, ok := b.index[id]
	if !ok {
		return ProjectScore{}, false
	}
	return b.Projects[i], true
}

// Fingerprint creates a stable hash of the catalog's scoring-relevant
// fields: rule ids, weights, thresholds, params and the blend weight.
func Fingerprint(c *catalog.Catalog) string {
	if c == nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "blend=%g\n", c.CustomBlendWeight)
	write := func(fam catalog.Family, rules []catalog.RuleDefinition) {
		for _, r := range rules {
			fmt.Fprintf(&sb, "%s|%s|%s|%s|%g|%s", fam, r.ID, r.EvaluatorKey(), r.Category, r.Weight, r.Threshold.Label)
			keys := make([]string, 0, len(r.Params))
			for k := range r.Params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&sb, "|%s=%g", k, r.Params[k])
			}
			sb.WriteByte('\n')
		}
	}
	write(catalog.FamilyStandard, c.Standard)
	write(catalog.FamilyCustom, c.Custom)

	hash := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%x", hash)
}
