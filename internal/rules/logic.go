package rules

import (
	"fmt"

	"github.com/dotcommander/schedlint/internal/schedule"
)

// MissingLogic counts activities with no resolved predecessor and no
// resolved successor. Start and finish milestones are exempt.
func MissingLogic(ix *schedule.Index, _ Params) Measurement {
	return countActivities(ix, func(a *schedule.Activity) bool {
		if a.Type.IsMilestone() {
			return false
		}
		return !ix.HasPredecessor(a.ID) && !ix.HasSuccessor(a.ID)
	})
}

// DuplicateLogic counts relationships that repeat an earlier relationship
// with the same predecessor, successor and type.
func DuplicateLogic(ix *schedule.Index, _ Params) Measurement {
	type edgeKey struct {
		pred, succ string
		typ        schedule.RelationType
	}

	var m Measurement
	seen := make(map[edgeKey]bool, ix.RelationshipCount())
	for _, r := range ix.Schedule.Relationships {
		key := edgeKey{r.Predecessor, r.Successor, r.Type}
		if seen[key] {
			m.add(relationLabel(r))
			continue
		}
		seen[key] = true
	}
	return m
}

// CircularLogic runs Kahn's algorithm over resolved relationships and
// counts the activities that never reach in-degree zero: those on a loop
// and those only reachable through one.
func CircularLogic(ix *schedule.Index, _ Params) Measurement {
	ids := uniqueIDs(ix)

	inDegree := make(map[string]int, len(ids))
	var queue []string
	for _, id := range ids {
		inDegree[id] = len(ix.Preds[id])
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := 0
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		sorted++

		for _, ri := range ix.Succs[node] {
			succ := ix.Relationship(ri).Successor
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	var m Measurement
	if sorted == len(ids) {
		return m
	}
	for _, id := range ids {
		if inDegree[id] > 0 {
			m.add(id)
		}
	}
	return m
}

// uniqueIDs returns activity ids in schedule order without repeats.
func uniqueIDs(ix *schedule.Index) []string {
	ids := make([]string, 0, len(ix.ByID))
	seen := make(map[string]bool, len(ix.ByID))
	for i := range ix.Schedule.Activities {
		id := ix.Schedule.Activities[i].ID
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func relationLabel(r schedule.Relationship) string {
	if r.Lag != 0 {
		return fmt.Sprintf("%s->%s %s%+g", r.Predecessor, r.Successor, r.Type, r.Lag)
	}
	return fmt.Sprintf("%s->%s %s", r.Predecessor, r.Successor, r.Type)
}

func (m *Measurement) add(subject string) {
	m.Value++
	m.Subjects = append(m.Subjects, subject)
}

// countActivities counts activities matching pred, in schedule order.
func countActivities(ix *schedule.Index, pred func(a *schedule.Activity) bool) Measurement {
	var m Measurement
	for i := range ix.Schedule.Activities {
		a := &ix.Schedule.Activities[i]
		if pred(a) {
			m.add(a.ID)
		}
	}
	return m
}
