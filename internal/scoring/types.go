// Package scoring turns observed violation counts into 0..1 sub-scores and
// rolls them up into category, family and blended composite scores.
package scoring

import (
	"math"

	"github.com/dotcommander/schedlint/internal/catalog"
)

// RuleScore is one evaluated rule ready for aggregation.
type RuleScore struct {
	RuleID   string
	Category catalog.Category // empty for custom rules
	Weight   float64
	Score    float64 // 0..1
}

// CategoryRollup is the weighted mean of the standard rules in a category.
// Categories without rules score 1.0 with a RuleCount of zero.
type CategoryRollup struct {
	Category  catalog.Category
	Score     float64
	Weight    float64
	RuleCount int
}

// Composite is the result of aggregating a full rule set.
type Composite struct {
	Categories []CategoryRollup
	Standard   float64

	// Custom is nil when the custom family is empty.
	Custom *float64

	// BlendWeight is the weight actually applied to the custom composite,
	// zero when the custom family is empty.
	BlendWeight float64
	Final       float64
}

// Percent converts a 0..1 score to a rounded 0-100 integer.
func Percent(score float64) int {
	return int(math.Round(clamp01(score) * 100))
}

// TierFromScore returns the quality tier for a 0-100 score.
func TierFromScore(score int) string {
	switch {
	case score >= 85:
		return "A"
	case score >= 70:
		return "B"
	case score >= 50:
		return "C"
	case score >= 30:
		return "D"
	default:
		return "F"
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
