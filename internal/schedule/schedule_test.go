package schedule

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func TestConstraintTypeIsHard(t *testing.T) {
	tests := []struct {
		c    ConstraintType
		want bool
	}{
		{"", false},
		{ConstraintNone, false},
		{ConstraintASAP, false},
		{ConstraintALAP, true},
		{ConstraintSNET, true},
		{ConstraintFNLT, true},
		{ConstraintMSO, true},
		{ConstraintMFO, true},
		{"something-else", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.c), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.IsHard())
		})
	}
}

func TestActivityIsCritical(t *testing.T) {
	assert.False(t, (&Activity{}).IsCritical(0), "no float data is never critical")
	assert.True(t, (&Activity{TotalFloat: floatPtr(0)}).IsCritical(0))
	assert.True(t, (&Activity{TotalFloat: floatPtr(-3)}).IsCritical(0))
	assert.False(t, (&Activity{TotalFloat: floatPtr(1)}).IsCritical(0))
	assert.True(t, (&Activity{TotalFloat: floatPtr(1)}).IsCritical(2))
}

func TestNewIndex(t *testing.T) {
	s := &Schedule{
		Activities: []Activity{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "A", Name: "duplicate id"}},
		Relationships: []Relationship{
			{Predecessor: "A", Successor: "B", Type: FinishToStart},
			{Predecessor: "B", Successor: "C", Type: StartToStart},
			{Predecessor: "B", Successor: "MISSING", Type: FinishToStart},
			{Predecessor: "GHOST", Successor: "A", Type: FinishToStart},
		},
	}

	ix := NewIndex(s)

	assert.Equal(t, 4, ix.ActivityCount())
	assert.Equal(t, 4, ix.RelationshipCount())
	assert.Len(t, ix.ByID, 3)
	assert.Equal(t, "", ix.ByID["A"].Name, "first activity wins on duplicate ids")

	assert.Equal(t, []int{0}, ix.Succs["A"])
	assert.Equal(t, []int{1}, ix.Succs["B"])
	assert.Equal(t, []int{0}, ix.Preds["B"])
	assert.Equal(t, []int{2, 3}, ix.Dangling)

	assert.False(t, ix.HasPredecessor("A"), "dangling edges do not count as logic")
	assert.True(t, ix.HasSuccessor("A"))
	assert.Equal(t, StartToStart, ix.Relationship(1).Type)
}

func TestNewIndex_Nil(t *testing.T) {
	ix := NewIndex(nil)
	require.NotNil(t, ix)
	assert.Equal(t, 0, ix.ActivityCount())
	assert.Empty(t, ix.Dangling)
}

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader()
	require.NoError(t, err)
	return l
}

func TestLoader_JSON(t *testing.T) {
	l := newTestLoader(t)

	data := []byte(`{
		"name": "Tower A",
		"data_date": "2024-03-01",
		"activities": [
			{"id": "A1", "duration": 5, "planned_start": "2024-01-01", "planned_finish": "2024-01-06",
			 "total_float": -2, "status": "in_progress", "percent_complete": 40, "constraint_type": "mso",
			 "constraint_date": "2024-01-01T08:00:00Z"},
			{"id": "A2", "type": "finish_milestone"}
		],
		"relationships": [
			{"predecessor": "A1", "successor": "A2", "lag": 2},
			{"predecessor": "A1", "successor": "NOPE", "type": "SS"}
		]
	}`)

	s, err := l.Load("tower-a.schedule.json", data)
	require.NoError(t, err)

	assert.Equal(t, "Tower A", s.Name)
	require.NotNil(t, s.DataDate)
	require.Len(t, s.Activities, 2)

	a1 := s.Activities[0]
	assert.Equal(t, TypeTask, a1.Type)
	assert.Equal(t, 5.0, a1.Duration)
	require.NotNil(t, a1.TotalFloat)
	assert.Equal(t, -2.0, *a1.TotalFloat)
	assert.Nil(t, a1.FreeFloat)
	assert.Equal(t, StatusInProgress, a1.Status)
	assert.Equal(t, ConstraintMSO, a1.ConstraintType)
	require.NotNil(t, a1.PlannedFinish)
	assert.Equal(t, 6, a1.PlannedFinish.Day())

	a2 := s.Activities[1]
	assert.Equal(t, TypeFinishMilestone, a2.Type)
	assert.Equal(t, StatusNotStarted, a2.Status)
	assert.Equal(t, ConstraintNone, a2.ConstraintType)

	require.Len(t, s.Relationships, 2)
	assert.Equal(t, FinishToStart, s.Relationships[0].Type)
	assert.Equal(t, 2.0, s.Relationships[0].Lag)
	assert.Equal(t, StartToStart, s.Relationships[1].Type)
}

func TestLoader_YAMLFile(t *testing.T) {
	l := newTestLoader(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.schedule.yaml")

	content := `name: Bridge
activities:
  - id: S
    type: start_milestone
  - id: W1
    duration: 10
    planned_start: "2024-02-01"
    total_float: 3
relationships:
  - predecessor: S
    successor: W1
    type: FS
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := l.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bridge", s.ProjectID, "project id falls back to file name")
	assert.Len(t, s.Activities, 2)
	assert.Len(t, s.Relationships, 1)
}

func TestLoader_Errors(t *testing.T) {
	l := newTestLoader(t)

	tests := []struct {
		name string
		file string
		data string
	}{
		{"malformed json", "x.json", `{"activities": [`},
		{"schema violation", "x.json", `{"activities": [{"id": "A", "status": "paused"}]}`},
		{"missing activities", "x.yaml", "name: empty\n"},
		{"unknown field", "x.json", `{"activities": [], "owner": "me"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Load(tt.file, []byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoader_UnsupportedFormat(t *testing.T) {
	l := newTestLoader(t)
	_, err := l.Load("plan.xer", []byte("%T TASK"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestLoader_DirtyDataIsNotAnError(t *testing.T) {
	l := newTestLoader(t)

	// Finish before start and dangling ids are findings, not load failures.
	data := []byte(`{"activities": [
		{"id": "A", "planned_start": "2024-05-01", "planned_finish": "2024-04-01", "status": "complete"}
	], "relationships": [{"predecessor": "A", "successor": "B"}, {"predecessor": "A", "successor": "B"}]}`)

	s, err := l.Load("dirty.json", data)
	require.NoError(t, err)
	assert.Len(t, s.Relationships, 2)
}

func TestParseDate(t *testing.T) {
	for _, v := range []string{"2024-01-02", "2024-01-02T10:00:00Z", "2024-01-02T10:00:00", "2024-01-02 10:00:00", "2024-01-02T10:00"} {
		d, err := parseDate(v)
		require.NoError(t, err, v)
		require.NotNil(t, d, v)
		assert.Equal(t, 2, d.Day())
	}

	d, err := parseDate("")
	assert.NoError(t, err)
	assert.Nil(t, d)

	_, err = parseDate("yesterday")
	assert.Error(t, err)
}

func TestProjectIDFromPath(t *testing.T) {
	assert.Equal(t, "tower-a", ProjectIDFromPath("/x/tower-a.schedule.json"))
	assert.Equal(t, "plan", ProjectIDFromPath("plan.yaml"))
}
