package rules

import (
	"github.com/dotcommander/schedlint/internal/schedule"
)

// InvalidDates counts activities with impossible dates: a finish before its
// start, actual dates after the data date, or an actual start before the
// actual finish of a finish-to-start predecessor. Each activity counts once.
func InvalidDates(ix *schedule.Index, _ Params) Measurement {
	dataDate := ix.Schedule.DataDate
	return countActivities(ix, func(a *schedule.Activity) bool {
		if a.PlannedStart != nil && a.PlannedFinish != nil && a.PlannedFinish.Before(*a.PlannedStart) {
			return true
		}
		if a.ActualStart != nil && a.ActualFinish != nil && a.ActualFinish.Before(*a.ActualStart) {
			return true
		}
		if dataDate != nil {
			if a.ActualStart != nil && a.ActualStart.After(*dataDate) {
				return true
			}
			if a.ActualFinish != nil && a.ActualFinish.After(*dataDate) {
				return true
			}
		}
		if a.ActualStart == nil {
			return false
		}
		for _, ri := range ix.Preds[a.ID] {
			r := ix.Relationship(ri)
			if r.Type != schedule.FinishToStart {
				continue
			}
			pred := ix.ByID[r.Predecessor]
			if pred.ActualFinish != nil && a.ActualStart.Before(*pred.ActualFinish) {
				return true
			}
		}
		return false
	})
}

// ProgressIntegrity counts activities whose status and percent complete
// contradict each other, plus in-progress work with no progress whose
// planned finish is already behind the data date.
func ProgressIntegrity(ix *schedule.Index, _ Params) Measurement {
	dataDate := ix.Schedule.DataDate
	return countActivities(ix, func(a *schedule.Activity) bool {
		switch a.Status {
		case schedule.StatusComplete:
			if a.PercentComplete == 0 {
				return true
			}
		case schedule.StatusNotStarted:
			if a.PercentComplete > 0 {
				return true
			}
		case schedule.StatusInProgress:
			if a.PercentComplete == 0 && dataDate != nil && a.PlannedFinish != nil && a.PlannedFinish.Before(*dataDate) {
				return true
			}
		}
		return a.PercentComplete >= 100 && !a.IsComplete()
	})
}

// ResourceOverloadRisk counts activities in progress at the data date.
// Many parallel open activities compete for the same crews.
func ResourceOverloadRisk(ix *schedule.Index, _ Params) Measurement {
	return countActivities(ix, func(a *schedule.Activity) bool {
		return a.Status == schedule.StatusInProgress
	})
}
