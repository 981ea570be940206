package scoring

import "github.com/dotcommander/schedlint/internal/catalog"

// WeightedMean returns sum(w*s)/sum(w). An empty or weightless set scores
// 1.0: nothing was measured, so nothing failed.
func WeightedMean(scores []RuleScore) float64 {
	var num, den float64
	for _, s := range scores {
		num += s.Weight * s.Score
		den += s.Weight
	}
	if den <= 0 {
		return 1
	}
	return clamp01(num / den)
}

// Rollup computes the per-category weighted means of the standard family,
// one entry per category in catalog.Categories order.
func Rollup(standard []RuleScore) []CategoryRollup {
	byCategory := make(map[catalog.Category][]RuleScore)
	for _, s := range standard {
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}

	cats := catalog.Categories()
	out := make([]CategoryRollup, 0, len(cats))
	for _, c := range cats {
		rules := byCategory[c]
		var weight float64
		for _, r := range rules {
			weight += r.Weight
		}
		out = append(out, CategoryRollup{
			Category:  c,
			Score:     WeightedMean(rules),
			Weight:    weight,
			RuleCount: len(rules),
		})
	}
	return out
}

// Blend combines the family composites. A nil custom composite forces the
// blend weight to zero so the final score equals the standard composite.
func Blend(standard float64, custom *float64, blendWeight float64) (final, applied float64) {
	if custom == nil {
		return clamp01(standard), 0
	}
	b := clamp01(blendWeight)
	return clamp01(standard*(1-b) + *custom*b), b
}

// Aggregate rolls up both families. The standard composite is the weighted
// mean over every standard rule directly, not a mean of category means.
func Aggregate(standard, custom []RuleScore, blendWeight float64) Composite {
	c := Composite{
		Categories: Rollup(standard),
		Standard:   WeightedMean(standard),
	}
	if len(custom) > 0 {
		v := WeightedMean(custom)
		c.Custom = &v
	}
	c.Final, c.BlendWeight = Blend(c.Standard, c.Custom, blendWeight)
	return c
}
