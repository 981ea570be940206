package scoring

import "math"

// Normalize maps an observed count against its resolved threshold to a
// sub-score. At or under the threshold the rule passes with 1.0; past it the
// score decays linearly, reaching zero once the overshoot equals the
// threshold. A zero threshold decays per unit, so one violation over a
// zero-tolerance rule already scores 0.
func Normalize(observed float64, threshold int) float64 {
	if math.IsNaN(observed) {
		return 0
	}
	t := float64(threshold)
	if observed <= t {
		return 1
	}
	return clamp01(1 - (observed-t)/math.Max(t, 1))
}
