// Package schedule defines the activity network consumed by the assessment
// engine: activities, dependency relationships and the snapshot that holds
// them. Values in this package are treated as read-only by every consumer.
package schedule

import "time"

// ActivityType distinguishes ordinary work from milestones.
type ActivityType string

const (
	TypeTask            ActivityType = "task"
	TypeStartMilestone  ActivityType = "start_milestone"
	TypeFinishMilestone ActivityType = "finish_milestone"
	TypeLevelOfEffort   ActivityType = "level_of_effort"
)

// IsMilestone reports whether the type is a start or finish milestone.
func (t ActivityType) IsMilestone() bool {
	return t == TypeStartMilestone || t == TypeFinishMilestone
}

// Status is the progress state of an activity.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// ConstraintType is the date constraint placed on an activity.
type ConstraintType string

const (
	ConstraintNone ConstraintType = "none"
	ConstraintASAP ConstraintType = "asap" // as soon as possible
	ConstraintALAP ConstraintType = "alap" // as late as possible
	ConstraintSNET ConstraintType = "snet" // start no earlier than
	ConstraintSNLT ConstraintType = "snlt" // start no later than
	ConstraintFNET ConstraintType = "fnet" // finish no earlier than
	ConstraintFNLT ConstraintType = "fnlt" // finish no later than
	ConstraintMSO  ConstraintType = "mso"  // mandatory start
	ConstraintMFO  ConstraintType = "mfo"  // mandatory finish
)

// IsHard reports whether the constraint overrides logic-driven dates.
// Anything other than none or as-soon-as-possible counts.
func (c ConstraintType) IsHard() bool {
	switch c {
	case "", ConstraintNone, ConstraintASAP:
		return false
	default:
		return true
	}
}

// RelationType is the dependency type between two activities.
type RelationType string

const (
	FinishToStart  RelationType = "FS"
	StartToStart   RelationType = "SS"
	FinishToFinish RelationType = "FF"
	StartToFinish  RelationType = "SF"
)

// Activity is a unit of scheduled work. Durations and floats are in days.
type Activity struct {
	ID              string
	Name            string
	Type            ActivityType
	Duration        float64
	PlannedStart    *time.Time
	PlannedFinish   *time.Time
	ActualStart     *time.Time
	ActualFinish    *time.Time
	TotalFloat      *float64 // nil when the source did not report float
	FreeFloat       *float64
	Status          Status
	PercentComplete float64
	ConstraintType  ConstraintType
	ConstraintDate  *time.Time
}

// IsComplete reports whether the activity is finished.
func (a *Activity) IsComplete() bool {
	return a.Status == StatusComplete
}

// IsCritical reports whether total float is at or below threshold.
// Activities without float data are never critical.
func (a *Activity) IsCritical(threshold float64) bool {
	return a.TotalFloat != nil && *a.TotalFloat <= threshold
}

// Relationship is a directed dependency edge. A negative Lag is a lead.
type Relationship struct {
	Predecessor string
	Successor   string
	Type        RelationType
	Lag         float64
}

// Schedule is an immutable snapshot of a project's activity network.
// Relationships may reference ids that are not present in Activities;
// detecting that is the job of the orphan diagnostic.
type Schedule struct {
	ProjectID     string
	Name          string
	DataDate      *time.Time
	Activities    []Activity
	Relationships []Relationship
}
