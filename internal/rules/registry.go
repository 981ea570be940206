// Package rules implements the schedule diagnostics. Each evaluator is a
// pure function over a prebuilt schedule.Index; evaluators never fail, and
// dirty data simply shows up in the measurement.
package rules

import (
	"sort"
	"sync"

	"github.com/dotcommander/schedlint/internal/catalog"
	"github.com/dotcommander/schedlint/internal/schedule"
)

// Params carries numeric tuning such as ceilings.
type Params map[string]float64

// Get returns the named parameter or def when it is unset.
func (p Params) Get(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// Measurement is what an evaluator observed: a count or metric, plus the
// activity or relationship identifiers that produced it, in schedule order.
type Measurement struct {
	Value    float64
	Subjects []string
}

// Evaluator inspects a schedule and returns an observed violation count.
type Evaluator func(ix *schedule.Index, p Params) Measurement

// Registry maps evaluator keys to evaluator functions. It is kept apart
// from the rule catalog so weights and thresholds can be retuned without
// touching evaluator code.
type Registry struct {
	mu         sync.RWMutex
	evaluators map[string]Evaluator
}

// NewRegistry returns a registry with every built-in evaluator registered.
func NewRegistry() *Registry {
	r := &Registry{evaluators: make(map[string]Evaluator)}

	r.Register(catalog.RuleMissingLogic, MissingLogic)
	r.Register(catalog.RuleDuplicateLogic, DuplicateLogic)
	r.Register(catalog.RuleCircularLogic, CircularLogic)
	r.Register(catalog.RuleOrphanReferences, OrphanReferences)
	r.Register(catalog.RuleLeadsLags, LeadsLags)
	r.Register(catalog.RuleRelationshipTypes, RelationshipTypes)
	r.Register(catalog.RuleHardConstraints, HardConstraints)
	r.Register(catalog.RuleHighDuration, HighDuration)
	r.Register(catalog.RuleNegativeFloat, NegativeFloat)
	r.Register(catalog.RuleHighFloat, HighFloat)
	r.Register(catalog.RuleCriticalDensity, CriticalDensity)
	r.Register(catalog.RuleInvalidDates, InvalidDates)
	r.Register(catalog.RuleProgressIntegrity, ProgressIntegrity)

	r.Register(catalog.RuleResourceOverloadRisk, ResourceOverloadRisk)
	r.Register(catalog.RuleMilestoneDuration, MilestoneDuration)
	r.Register(catalog.RuleLongLags, LongLags)
	r.Register(catalog.RuleMissingConstraintDates, MissingConstraintDates)

	return r
}

// Register adds or replaces the evaluator for key.
func (r *Registry) Register(key string, e Evaluator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluators[key] = e
}

// Lookup returns the evaluator registered under key.
func (r *Registry) Lookup(key string) (Evaluator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.evaluators[key]
	return e, ok
}

// Has reports whether key is registered. It matches the signature
// catalog.Catalog.Validate expects.
func (r *Registry) Has(key string) bool {
	_, ok := r.Lookup(key)
	return ok
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.evaluators))
	for k := range r.evaluators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
