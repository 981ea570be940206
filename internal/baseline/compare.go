package baseline

import "github.com/dotcommander/schedlint/internal/report"

// Trend classifies a score change.
type Trend string

const (
	TrendNew       Trend = "new"
	TrendImproved  Trend = "improved"
	TrendRegressed Trend = "regressed"
	TrendUnchanged Trend = "unchanged"
)

// scoreEpsilon absorbs float noise when comparing rule sub-scores.
const scoreEpsilon = 1e-9

// RuleDelta is the change of one rule's sub-score.
type RuleDelta struct {
	RuleID   string  `json:"rule_id"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
}

// Delta compares a report against the baseline entry for its project.
type Delta struct {
	ProjectID      string      `json:"project_id"`
	Trend          Trend       `json:"trend"`
	Previous       int         `json:"previous"`
	Current        int         `json:"current"`
	Change         int         `json:"change"`
	Regressed      []RuleDelta `json:"regressed,omitempty"`
	Improved       []RuleDelta `json:"improved,omitempty"`
	CatalogChanged bool        `json:"catalog_changed,omitempty"`
}

// Compare returns the delta between r and the recorded scores. Rules are
// listed in report order. catalogFingerprint, when non-empty, is checked
// against the one recorded in the baseline.
func (b *Baseline) Compare(r *report.QualityReport, catalogFingerprint string) Delta {
	d := Delta{ProjectID: r.ProjectID, Current: r.Score}

	prev, ok := b.Project(r.ProjectID)
	if !ok {
		d.Trend = TrendNew
		return d
	}

	d.Previous = prev.Score
	d.Change = r.Score - prev.Score
	d.CatalogChanged = catalogFingerprint != "" && b.Catalog != "" && catalogFingerprint != b.Catalog

	for _, rr := range r.Results() {
		was, ok := prev.Rules[rr.RuleID]
		if !ok {
			continue
		}
		switch {
		case rr.Score < was-scoreEpsilon:
			d.Regressed = append(d.Regressed, RuleDelta{RuleID: rr.RuleID, Previous: was, Current: rr.Score})
		case rr.Score > was+scoreEpsilon:
			d.Improved = append(d.Improved, RuleDelta{RuleID: rr.RuleID, Previous: was, Current: rr.Score})
		}
	}

	switch {
	case r.Composite < prev.Composite-scoreEpsilon:
		d.Trend = TrendRegressed
	case r.Composite > prev.Composite+scoreEpsilon:
		d.Trend = TrendImproved
	default:
		d.Trend = TrendUnchanged
	}
	return d
}

// CompareAll compares every report, keeping report order.
func (b *Baseline) CompareAll(reports []*report.QualityReport, catalogFingerprint string) []Delta {
	out := make([]Delta, 0, len(reports))
	for _, r := range reports {
		out = append(out, b.Compare(r, catalogFingerprint))
	}
	return out
}

// Regressions returns the deltas whose composite went down by more than
// tolerance points.
func Regressions(deltas []Delta, tolerance int) []Delta {
	var out []Delta
	for _, d := range deltas {
		if d.Trend == TrendRegressed && -d.Change > tolerance {
			out = append(out, d)
		}
	}
	return out
}
