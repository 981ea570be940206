package report

import (
	"sort"

	"github.com/dotcommander/schedlint/internal/scoring"
)

// Tiers lists the quality tiers from best to worst.
var Tiers = []string{"A", "B", "C", "D", "F"}

// ProjectScore is a project's position in a digest.
type ProjectScore struct {
	ProjectID string `json:"project_id"`
	Source    string `json:"source,omitempty"`
	Score     int    `json:"score"`
	Tier      string `json:"tier"`
}

// RuleViolation counts how many projects failed a rule.
type RuleViolation struct {
	RuleID    string  `json:"rule_id"`
	Name      string  `json:"name"`
	Projects  int     `json:"projects"`
	MeanScore float64 `json:"mean_score"`
}

// Digest summarizes a batch of reports.
type Digest struct {
	Projects     int             `json:"projects"`
	MeanScore    float64         `json:"mean_score"`
	MeanTier     string          `json:"mean_tier"`
	TierCounts   map[string]int  `json:"tier_counts"`
	Lowest       []ProjectScore  `json:"lowest"`
	MostViolated []RuleViolation `json:"most_violated"`
}

// Summarize builds a digest over reports keeping at most top entries in the
// lowest-scoring and most-violated lists. Ties break on id so the result is
// stable.
func Summarize(reports []*QualityReport, top int) *Digest {
	d := &Digest{TierCounts: make(map[string]int, len(Tiers))}
	for _, t := range Tiers {
		d.TierCounts[t] = 0
	}

	type ruleAgg struct {
		name     string
		failed   int
		scoreSum float64
		seen     int
	}
	rules := make(map[string]*ruleAgg)
	var order []string

	var total int
	for _, r := range reports {
		if r == nil {
			continue
		}
		d.Projects++
		total += r.Score
		d.TierCounts[r.Tier]++
		d.Lowest = append(d.Lowest, ProjectScore{ProjectID: r.ProjectID, Source: r.Source, Score: r.Score, Tier: r.Tier})

		for _, rr := range r.Results() {
			agg, ok := rules[rr.RuleID]
			if !ok {
				agg = &ruleAgg{name: rr.Name}
				rules[rr.RuleID] = agg
				order = append(order, rr.RuleID)
			}
			agg.seen++
			agg.scoreSum += rr.Score
			if !rr.Passed {
				agg.failed++
			}
		}
	}

	if d.Projects > 0 {
		d.MeanScore = float64(total) / float64(d.Projects)
	}
	d.MeanTier = scoring.TierFromScore(int(d.MeanScore + 0.5))

	sort.SliceStable(d.Lowest, func(i, j int) bool {
		if d.Lowest[i].Score != d.Lowest[j].Score {
			return d.Lowest[i].Score < d.Lowest[j].Score
		}
		return d.Lowest[i].ProjectID < d.Lowest[j].ProjectID
	})
	if top > 0 && len(d.Lowest) > top {
		d.Lowest = d.Lowest[:top]
	}

	for _, id := range order {
		agg := rules[id]
		if agg.failed == 0 {
			continue
		}
		d.MostViolated = append(d.MostViolated, RuleViolation{
			RuleID:    id,
			Name:      agg.name,
			Projects:  agg.failed,
			MeanScore: agg.scoreSum / float64(agg.seen),
		})
	}
	sort.SliceStable(d.MostViolated, func(i, j int) bool {
		if d.MostViolated[i].Projects != d.MostViolated[j].Projects {
			return d.MostViolated[i].Projects > d.MostViolated[j].Projects
		}
		return d.MostViolated[i].RuleID < d.MostViolated[j].RuleID
	})
	if top > 0 && len(d.MostViolated) > top {
		d.MostViolated = d.MostViolated[:top]
	}

	return d
}
