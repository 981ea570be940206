package catalog

// Standard rule ids. These are also the evaluator keys of the built-in
// evaluators.
const (
	RuleMissingLogic      = "missing_logic"
	RuleDuplicateLogic    = "duplicate_logic"
	RuleCircularLogic     = "circular_logic"
	RuleOrphanReferences  = "orphan_references"
	RuleLeadsLags         = "leads_lags"
	RuleRelationshipTypes = "relationship_types"
	RuleHardConstraints   = "hard_constraints"
	RuleHighDuration      = "high_duration"
	RuleNegativeFloat     = "negative_float"
	RuleHighFloat         = "high_float"
	RuleCriticalDensity   = "critical_density"
	RuleInvalidDates      = "invalid_dates"
	RuleProgressIntegrity = "progress_integrity"
)

// Custom rule ids shipped with the default catalog.
const (
	RuleResourceOverloadRisk   = "resource_overload_risk"
	RuleMilestoneDuration      = "milestone_duration"
	RuleLongLags               = "long_lags"
	RuleMissingConstraintDates = "missing_constraint_dates"
)

// Evaluator parameter names.
const (
	ParamCeiling       = "ceiling"        // days
	ParamCriticalFloat = "critical_float" // days
)

// Default returns a fresh copy of the built-in catalog: a DCMA-14 style
// standard family and a small custom family blended at 20%.
func Default() *Catalog {
	return &Catalog{
		Standard:          DefaultStandardRules(),
		Custom:            DefaultCustomRules(),
		CustomBlendWeight: DefaultCustomBlendWeight,
	}
}

// DefaultStandardRules returns the built-in standard rules in report order.
func DefaultStandardRules() []RuleDefinition {
	return []RuleDefinition{
		{
			ID:          RuleMissingLogic,
			Name:        "Missing Logic",
			Category:    CategoryLogic,
			Weight:      3,
			Threshold:   Ratio(0.05),
			Description: "Activities with neither a predecessor nor a successor, excluding start and finish milestones.",
		},
		{
			ID:          RuleDuplicateLogic,
			Name:        "Duplicate Logic",
			Category:    CategoryLogic,
			Weight:      1,
			Threshold:   Ratio(0),
			Description: "Relationships repeating an existing predecessor, successor and type.",
		},
		{
			ID:          RuleCircularLogic,
			Name:        "Circular Logic",
			Category:    CategoryLogic,
			Weight:      3,
			Threshold:   Fixed(0),
			Description: "Activities on, or only reachable through, a dependency loop.",
		},
		{
			ID:          RuleOrphanReferences,
			Name:        "Orphan References",
			Category:    CategoryRelationships,
			Weight:      2,
			Threshold:   Ratio(0),
			Description: "Relationships pointing at an activity id that does not exist.",
		},
		{
			ID:          RuleLeadsLags,
			Name:        "Leads and Lags",
			Category:    CategoryRelationships,
			Weight:      2,
			Threshold:   Ratio(0.05),
			Description: "Relationships with a non-zero lead or lag.",
		},
		{
			ID:          RuleRelationshipTypes,
			Name:        "Relationship Types",
			Category:    CategoryRelationships,
			Weight:      1,
			Threshold:   RelationshipRatio(0.10),
			Description: "Relationships other than finish-to-start.",
		},
		{
			ID:          RuleHardConstraints,
			Name:        "Hard Constraints",
			Category:    CategoryConstraints,
			Weight:      2,
			Threshold:   Ratio(0.05),
			Description: "Activities with a date constraint other than none or as-soon-as-possible.",
		},
		{
			ID:          RuleHighDuration,
			Name:        "High Duration",
			Category:    CategoryDuration,
			Weight:      2,
			Threshold:   Ratio(0.05),
			Params:      map[string]float64{ParamCeiling: 44},
			Description: "Incomplete activities longer than the duration ceiling.",
		},
		{
			ID:          RuleNegativeFloat,
			Name:        "Negative Float",
			Category:    CategoryFloat,
			Weight:      3,
			Threshold:   Fixed(0),
			Description: "Incomplete activities with total float below zero.",
		},
		{
			ID:          RuleHighFloat,
			Name:        "High Float",
			Category:    CategoryFloat,
			Weight:      2,
			Threshold:   Ratio(0.05),
			Params:      map[string]float64{ParamCeiling: 44},
			Description: "Incomplete activities with total float above the float ceiling.",
		},
		{
			ID:          RuleCriticalDensity,
			Name:        "Critical Density",
			Category:    CategoryFloat,
			Weight:      1,
			Threshold:   Ratio(0.35),
			Params:      map[string]float64{ParamCriticalFloat: 0},
			Description: "Incomplete activities on the critical path (total float at or below the critical float).",
		},
		{
			ID:          RuleInvalidDates,
			Name:        "Invalid Dates",
			Category:    CategoryStatus,
			Weight:      3,
			Threshold:   Fixed(0),
			Description: "Finish before start, actuals after the data date, or actual start before a finish-to-start predecessor's actual finish.",
		},
		{
			ID:          RuleProgressIntegrity,
			Name:        "Progress Integrity",
			Category:    CategoryStatus,
			Weight:      2,
			Threshold:   Ratio(0),
			Description: "Status and percent complete that contradict each other, or stalled in-progress work past its planned finish.",
		},
	}
}

// DefaultCustomRules returns the organization rules shipped by default.
func DefaultCustomRules() []RuleDefinition {
	return []RuleDefinition{
		{
			ID:          RuleResourceOverloadRisk,
			Name:        "Resource Overload Risk",
			Weight:      2,
			Threshold:   Ratio(0.15),
			Description: "Activities in progress at the same time.",
		},
		{
			ID:          RuleMilestoneDuration,
			Name:        "Milestone Duration",
			Weight:      1,
			Threshold:   Ratio(0),
			Description: "Milestones carrying a non-zero duration.",
		},
		{
			ID:          RuleLongLags,
			Name:        "Long Lags",
			Weight:      1,
			Threshold:   Ratio(0.02),
			Params:      map[string]float64{ParamCeiling: 10},
			Description: "Lags longer than the lag ceiling.",
		},
		{
			ID:          RuleMissingConstraintDates,
			Name:        "Missing Constraint Dates",
			Weight:      1,
			Threshold:   Fixed(0),
			Description: "Date constraints without a constraint date.",
		},
	}
}
