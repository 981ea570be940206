// Package report packages rule outcomes and composites into the
// QualityReport handed to formatters. Assembly is pure: identical inputs
// produce identical reports, so nothing time-dependent is recorded.
package report

import (
	"github.com/dotcommander/schedlint/internal/catalog"
	"github.com/dotcommander/schedlint/internal/scoring"
)

// RuleResult is the outcome of one rule.
type RuleResult struct {
	RuleID         string           `json:"rule_id"`
	Name           string           `json:"name"`
	Family         catalog.Family   `json:"family"`
	Category       catalog.Category `json:"category,omitempty"`
	Weight         float64          `json:"weight"`
	Threshold      int              `json:"threshold"`
	ThresholdLabel string           `json:"threshold_label"`
	Observed       float64          `json:"observed"`
	Score          float64          `json:"score"`
	Passed         bool             `json:"passed"`
	Subjects       []string         `json:"subjects,omitempty"`
	Truncated      int              `json:"truncated,omitempty"` // subjects omitted beyond the cap
}

// CategoryScore is a standard-family category rollup.
type CategoryScore struct {
	Category  catalog.Category `json:"category"`
	Score     float64          `json:"score"`
	Weight    float64          `json:"weight"`
	RuleCount int              `json:"rule_count"`
}

// QualityReport is the full assessment of one schedule.
type QualityReport struct {
	ProjectID     string `json:"project_id"`
	ProjectName   string `json:"project_name,omitempty"`
	Source        string `json:"source,omitempty"`
	Activities    int    `json:"activities"`
	Relationships int    `json:"relationships"`

	Standard   []RuleResult    `json:"standard"`
	Custom     []RuleResult    `json:"custom"`
	Categories []CategoryScore `json:"categories"`

	StandardComposite float64  `json:"standard_composite"`
	CustomComposite   *float64 `json:"custom_composite"`
	BlendWeight       float64  `json:"blend_weight"`
	Composite         float64  `json:"composite"`
	Score             int      `json:"score"` // composite on a 0-100 scale
	Tier              string   `json:"tier"`
}

// Header identifies the assessed schedule.
type Header struct {
	ProjectID     string
	ProjectName   string
	Source        string
	Activities    int
	Relationships int
}

// Assemble builds the report. Rule results keep the order they were given
// in, which is catalog order.
func Assemble(h Header, standard, custom []RuleResult, c scoring.Composite) *QualityReport {
	r := &QualityReport{
		ProjectID:         h.ProjectID,
		ProjectName:       h.ProjectName,
		Source:            h.Source,
		Activities:        h.Activities,
		Relationships:     h.Relationships,
		Standard:          nonNil(standard),
		Custom:            nonNil(custom),
		Categories:        make([]CategoryScore, 0, len(c.Categories)),
		StandardComposite: c.Standard,
		BlendWeight:       c.BlendWeight,
		Composite:         c.Final,
		Score:             scoring.Percent(c.Final),
	}
	if c.Custom != nil {
		v := *c.Custom
		r.CustomComposite = &v
	}
	r.Tier = scoring.TierFromScore(r.Score)

	for _, cr := range c.Categories {
		r.Categories = append(r.Categories, CategoryScore{
			Category:  cr.Category,
			Score:     cr.Score,
			Weight:    cr.Weight,
			RuleCount: cr.RuleCount,
		})
	}
	return r
}

// Results returns standard then custom rule results.
func (r *QualityReport) Results() []RuleResult {
	out := make([]RuleResult, 0, len(r.Standard)+len(r.Custom))
	out = append(out, r.Standard...)
	return append(out, r.Custom...)
}

// Failed returns the rules that exceeded their threshold, in report order.
func (r *QualityReport) Failed() []RuleResult {
	var out []RuleResult
	for _, rr := range r.Results() {
		if !rr.Passed {
			out = append(out, rr)
		}
	}
	return out
}

// Rule finds a result by rule id.
func (r *QualityReport) Rule(id string) (RuleResult, bool) {
	for _, rr := range r.Results() {
		if rr.RuleID == id {
			return rr, true
		}
	}
	return RuleResult{}, false
}

func nonNil(rs []RuleResult) []RuleResult {
	if rs == nil {
		return []RuleResult{}
	}
	return rs
}
