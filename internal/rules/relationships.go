package rules

import (
	"github.com/dotcommander/schedlint/internal/catalog"
	"github.com/dotcommander/schedlint/internal/schedule"
)

// OrphanReferences counts relationships whose predecessor or successor id
// does not resolve to an activity.
func OrphanReferences(ix *schedule.Index, _ Params) Measurement {
	var m Measurement
	for _, i := range ix.Dangling {
		m.add(relationLabel(ix.Relationship(i)))
	}
	return m
}

// LeadsLags counts relationships carrying any lead or lag.
func LeadsLags(ix *schedule.Index, _ Params) Measurement {
	return countRelationships(ix, func(r schedule.Relationship) bool {
		return r.Lag != 0
	})
}

// RelationshipTypes counts relationships that are not finish-to-start.
func RelationshipTypes(ix *schedule.Index, _ Params) Measurement {
	return countRelationships(ix, func(r schedule.Relationship) bool {
		return r.Type != schedule.FinishToStart
	})
}

// LongLags counts lags longer than the ceiling parameter. Leads are not
// lags and are left to LeadsLags.
func LongLags(ix *schedule.Index, p Params) Measurement {
	ceiling := p.Get(catalog.ParamCeiling, 10)
	return countRelationships(ix, func(r schedule.Relationship) bool {
		return r.Lag > ceiling
	})
}

func countRelationships(ix *schedule.Index, pred func(r schedule.Relationship) bool) Measurement {
	var m Measurement
	for _, r := range ix.Schedule.Relationships {
		if pred(r) {
			m.add(relationLabel(r))
		}
	}
	return m
}
