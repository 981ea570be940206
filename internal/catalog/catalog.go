// Package catalog holds the rule definitions that drive an assessment.
// The catalog is configuration only: it names rules, weights them and says
// how many violations each tolerates. Which function evaluates a rule is
// looked up separately by evaluator key.
package catalog

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCatalog marks configuration errors. An assessment never runs
// against a catalog that fails validation.
var ErrInvalidCatalog = errors.New("invalid rule catalog")

// DefaultCustomBlendWeight is the share of the final composite given to the
// custom family when it is non-empty.
const DefaultCustomBlendWeight = 0.2

// RuleDefinition describes one diagnostic rule.
type RuleDefinition struct {
	ID          string
	Name        string
	Category    Category // empty for custom rules
	Weight      float64
	Threshold   Threshold
	Evaluator   string // evaluator key; ID when empty
	Params      map[string]float64
	Description string
}

// EvaluatorKey returns the key used to look up this rule's evaluator.
func (r RuleDefinition) EvaluatorKey() string {
	if r.Evaluator != "" {
		return r.Evaluator
	}
	return r.ID
}

// DisplayName returns Name, falling back to ID.
func (r RuleDefinition) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// Catalog is the full rule configuration for an assessment.
type Catalog struct {
	Standard          []RuleDefinition
	Custom            []RuleDefinition
	CustomBlendWeight float64
}

// Clone returns a deep copy so callers can retune without touching the
// original.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		Standard:          cloneRules(c.Standard),
		Custom:            cloneRules(c.Custom),
		CustomBlendWeight: c.CustomBlendWeight,
	}
	return out
}

func cloneRules(in []RuleDefinition) []RuleDefinition {
	if in == nil {
		return nil
	}
	out := make([]RuleDefinition, len(in))
	for i, r := range in {
		if r.Params != nil {
			params := make(map[string]float64, len(r.Params))
			for k, v := range r.Params {
				params[k] = v
			}
			r.Params = params
		}
		out[i] = r
	}
	return out
}

// Rule returns the rule with the given id from either family.
func (c *Catalog) Rule(id string) (RuleDefinition, Family, bool) {
	for _, r := range c.Standard {
		if r.ID == id {
			return r, FamilyStandard, true
		}
	}
	for _, r := range c.Custom {
		if r.ID == id {
			return r, FamilyCustom, true
		}
	}
	return RuleDefinition{}, "", false
}

// Validate checks the catalog for configuration errors. known reports
// whether an evaluator key is registered; a nil known skips that check.
// Every problem is reported, wrapped in ErrInvalidCatalog.
func (c *Catalog) Validate(known func(key string) bool) error {
	var problems []error

	if math.IsNaN(c.CustomBlendWeight) || c.CustomBlendWeight < 0 || c.CustomBlendWeight > 1 {
		problems = append(problems, fmt.Errorf("custom blend weight %v must be within [0,1]", c.CustomBlendWeight))
	}

	seen := make(map[string]Family)
	check := func(family Family, i int, r RuleDefinition) {
		where := fmt.Sprintf("%s rule %d", family, i)
		if r.ID == "" {
			problems = append(problems, fmt.Errorf("%s: missing id", where))
		} else {
			where = fmt.Sprintf("%s rule %s", family, r.ID)
			if prev, dup := seen[r.ID]; dup {
				problems = append(problems, fmt.Errorf("%s: duplicate id (already defined in %s family)", where, prev))
			}
			seen[r.ID] = family
		}

		switch family {
		case FamilyStandard:
			if !r.Category.IsValid() {
				problems = append(problems, fmt.Errorf("%s: invalid category %q", where, r.Category))
			}
		case FamilyCustom:
			if r.Category != "" {
				problems = append(problems, fmt.Errorf("%s: custom rules do not take a category (got %q)", where, r.Category))
			}
		}

		if math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) || r.Weight <= 0 {
			problems = append(problems, fmt.Errorf("%s: weight %v must be positive", where, r.Weight))
		}

		if r.Threshold.Resolve == nil {
			problems = append(problems, fmt.Errorf("%s: threshold function is missing", where))
		}

		for k, v := range r.Params {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				problems = append(problems, fmt.Errorf("%s: param %s is not a finite number", where, k))
			}
		}

		if known != nil && !known(r.EvaluatorKey()) {
			problems = append(problems, fmt.Errorf("%s: unknown evaluator %q", where, r.EvaluatorKey()))
		}
	}

	for i, r := range c.Standard {
		check(FamilyStandard, i, r)
	}
	for i, r := range c.Custom {
		check(FamilyCustom, i, r)
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(problems...))
}
