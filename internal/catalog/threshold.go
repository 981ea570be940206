package catalog

import (
	"fmt"
	"math"
)

// SizeContext describes the schedule a threshold is resolved against.
type SizeContext struct {
	TotalActivities    int
	TotalRelationships int
}

// ThresholdFunc maps schedule size to the number of violations a rule
// tolerates before its sub-score starts to decay.
type ThresholdFunc func(SizeContext) int

// Threshold pairs a ThresholdFunc with a human-readable description.
type Threshold struct {
	Resolve ThresholdFunc
	Label   string
}

// Ratio tolerates round(p * activities) violations, never fewer than one.
func Ratio(p float64) Threshold {
	return Threshold{
		Resolve: func(sc SizeContext) int { return ratioFloor(p, sc.TotalActivities) },
		Label:   fmt.Sprintf("%s of activities (min 1)", percent(p)),
	}
}

// RelationshipRatio tolerates round(p * relationships) violations, never
// fewer than one.
func RelationshipRatio(p float64) Threshold {
	return Threshold{
		Resolve: func(sc SizeContext) int { return ratioFloor(p, sc.TotalRelationships) },
		Label:   fmt.Sprintf("%s of relationships (min 1)", percent(p)),
	}
}

// Fixed tolerates exactly n violations. Fixed(0) is zero tolerance.
func Fixed(n int) Threshold {
	if n < 0 {
		n = 0
	}
	return Threshold{
		Resolve: func(SizeContext) int { return n },
		Label:   fmt.Sprintf("fixed %d", n),
	}
}

func ratioFloor(p float64, n int) int {
	if n < 0 {
		n = 0
	}
	v := int(math.Round(p * float64(n)))
	if v < 1 {
		return 1
	}
	return v
}

func percent(p float64) string {
	return fmt.Sprintf("%g%%", math.Round(p*10000)/100)
}
