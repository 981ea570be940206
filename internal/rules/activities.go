package rules

import (
	"github.com/dotcommander/schedlint/internal/catalog"
	"github.com/dotcommander/schedlint/internal/schedule"
)

// HardConstraints counts activities constrained by anything other than
// none or as-soon-as-possible.
func HardConstraints(ix *schedule.Index, _ Params) Measurement {
	return countActivities(ix, func(a *schedule.Activity) bool {
		return a.ConstraintType.IsHard()
	})
}

// HighDuration counts incomplete discrete activities longer than the
// ceiling. Level-of-effort work is exempt since its duration follows the
// activities it supports.
func HighDuration(ix *schedule.Index, p Params) Measurement {
	ceiling := p.Get(catalog.ParamCeiling, 44)
	return countActivities(ix, func(a *schedule.Activity) bool {
		if a.IsComplete() || a.Type == schedule.TypeLevelOfEffort {
			return false
		}
		return a.Duration > ceiling
	})
}

// NegativeFloat counts incomplete activities with total float below zero.
func NegativeFloat(ix *schedule.Index, _ Params) Measurement {
	return countActivities(ix, func(a *schedule.Activity) bool {
		return !a.IsComplete() && a.TotalFloat != nil && *a.TotalFloat < 0
	})
}

// HighFloat counts incomplete activities with total float above the ceiling.
func HighFloat(ix *schedule.Index, p Params) Measurement {
	ceiling := p.Get(catalog.ParamCeiling, 44)
	return countActivities(ix, func(a *schedule.Activity) bool {
		return !a.IsComplete() && a.TotalFloat != nil && *a.TotalFloat > ceiling
	})
}

// CriticalDensity counts incomplete critical activities. Paired with a
// ratio threshold it flags schedules where too much of the remaining work
// sits on the critical path.
func CriticalDensity(ix *schedule.Index, p Params) Measurement {
	critical := p.Get(catalog.ParamCriticalFloat, 0)
	return countActivities(ix, func(a *schedule.Activity) bool {
		return !a.IsComplete() && a.IsCritical(critical)
	})
}

// MilestoneDuration counts milestones with a non-zero duration.
func MilestoneDuration(ix *schedule.Index, _ Params) Measurement {
	return countActivities(ix, func(a *schedule.Activity) bool {
		return a.Type.IsMilestone() && a.Duration != 0
	})
}

// MissingConstraintDates counts hard constraints that lack a date.
func MissingConstraintDates(ix *schedule.Index, _ Params) Measurement {
	return countActivities(ix, func(a *schedule.Activity) bool {
		return a.ConstraintType.IsHard() && a.ConstraintType != schedule.ConstraintALAP && a.ConstraintDate == nil
	})
}
