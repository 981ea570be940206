package schedule

// Index holds adjacency for a Schedule, built once per assessment and shared
// by every evaluator. Edges are stored as positions into
// Schedule.Relationships so evaluators can inspect type and lag.
type Index struct {
	Schedule *Schedule

	// ByID maps activity id to the first activity carrying it.
	ByID map[string]*Activity

	// Preds and Succs hold relationships whose both ends resolve.
	Preds map[string][]int
	Succs map[string][]int

	// Dangling holds relationships with at least one unresolved end.
	Dangling []int
}

// NewIndex indexes s in a single pass over activities and relationships.
// A nil schedule yields an empty index.
func NewIndex(s *Schedule) *Index {
	if s == nil {
		s = &Schedule{}
	}

	ix := &Index{
		Schedule: s,
		ByID:     make(map[string]*Activity, len(s.Activities)),
		Preds:    make(map[string][]int),
		Succs:    make(map[string][]int),
	}

	for i := range s.Activities {
		a := &s.Activities[i]
		if _, seen := ix.ByID[a.ID]; !seen {
			ix.ByID[a.ID] = a
		}
	}

	for i, r := range s.Relationships {
		_, predOK := ix.ByID[r.Predecessor]
		_, succOK := ix.ByID[r.Successor]
		if !predOK || !succOK {
			ix.Dangling = append(ix.Dangling, i)
			continue
		}
		ix.Succs[r.Predecessor] = append(ix.Succs[r.Predecessor], i)
		ix.Preds[r.Successor] = append(ix.Preds[r.Successor], i)
	}

	return ix
}

// ActivityCount returns the number of activities in the snapshot.
func (ix *Index) ActivityCount() int {
	return len(ix.Schedule.Activities)
}

// RelationshipCount returns the number of relationships in the snapshot.
func (ix *Index) RelationshipCount() int {
	return len(ix.Schedule.Relationships)
}

// Relationship returns the relationship at position i.
func (ix *Index) Relationship(i int) Relationship {
	return ix.Schedule.Relationships[i]
}

// HasPredecessor reports whether id has at least one resolved predecessor.
func (ix *Index) HasPredecessor(id string) bool {
	return len(ix.Preds[id]) > 0
}

// HasSuccessor reports whether id has at least one resolved successor.
func (ix *Index) HasSuccessor(id string) bool {
	return len(ix.Succs[id]) > 0
}
