// Package engine runs a rule catalog against schedules: it indexes the
// network once, fans the evaluators out, normalizes each observation against
// its size-aware threshold and assembles the QualityReport.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/dotcommander/schedlint/internal/catalog"
	"github.com/dotcommander/schedlint/internal/report"
	"github.com/dotcommander/schedlint/internal/rules"
	"github.com/dotcommander/schedlint/internal/schedule"
	"github.com/dotcommander/schedlint/internal/scoring"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxSubjects caps the identifiers kept per rule result.
const DefaultMaxSubjects = 20

// Options tunes an Engine.
type Options struct {
	// Concurrency limits parallel evaluators per schedule and parallel
	// schedules in AssessAll. Zero means GOMAXPROCS.
	Concurrency int

	// MaxSubjects caps Subjects per rule result. Zero means
	// DefaultMaxSubjects; negative keeps every subject.
	MaxSubjects int

	// BlendWeight overrides the catalog's custom blend weight when set.
	BlendWeight *float64

	Logger *slog.Logger
}

// Engine holds a validated catalog joined to an evaluator registry. It is
// safe for concurrent use.
type Engine struct {
	catalog  *catalog.Catalog
	registry *rules.Registry
	opts     Options
	log      *slog.Logger
}

// New validates cat against reg and returns an Engine. The catalog is
// copied, so later changes by the caller have no effect. Errors wrap
// catalog.ErrInvalidCatalog.
func New(cat *catalog.Catalog, reg *rules.Registry, opts Options) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("%w: no catalog", catalog.ErrInvalidCatalog)
	}
	if reg == nil {
		reg = rules.NewRegistry()
	}

	c := cat.Clone()
	if opts.BlendWeight != nil {
		c.CustomBlendWeight = *opts.BlendWeight
	}
	if err := c.Validate(reg.Has); err != nil {
		return nil, err
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	if opts.MaxSubjects == 0 {
		opts.MaxSubjects = DefaultMaxSubjects
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Engine{catalog: c, registry: reg, opts: opts, log: log}, nil
}

// Assess validates the catalog and assesses one schedule with it.
func Assess(ctx context.Context, s *schedule.Schedule, cat *catalog.Catalog, reg *rules.Registry, opts Options) (*report.QualityReport, error) {
	e, err := New(cat, reg, opts)
	if err != nil {
		return nil, err
	}
	return e.Assess(ctx, s)
}

// Catalog returns a copy of the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog.Clone()
}

// Assess evaluates every rule against s. Dirty data never fails an
// assessment; the only error is context cancellation.
func (e *Engine) Assess(ctx context.Context, s *schedule.Schedule) (*report.QualityReport, error) {
	ix := schedule.NewIndex(s)
	size := catalog.SizeContext{
		TotalActivities:    ix.ActivityCount(),
		TotalRelationships: ix.RelationshipCount(),
	}

	standard, err := e.evaluate(ctx, ix, size, e.catalog.Standard, catalog.FamilyStandard)
	if err != nil {
		return nil, err
	}
	custom, err := e.evaluate(ctx, ix, size, e.catalog.Custom, catalog.FamilyCustom)
	if err != nil {
		return nil, err
	}

	composite := scoring.Aggregate(ruleScores(standard), ruleScores(custom), e.catalog.CustomBlendWeight)

	h := report.Header{
		ProjectID:     ix.Schedule.ProjectID,
		ProjectName:   ix.Schedule.Name,
		Activities:    size.TotalActivities,
		Relationships: size.TotalRelationships,
	}
	rep := report.Assemble(h, standard, custom, composite)

	e.log.Debug("schedule assessed",
		"project", rep.ProjectID,
		"activities", rep.Activities,
		"relationships", rep.Relationships,
		"score", rep.Score,
		"failed_rules", len(rep.Failed()),
	)
	return rep, nil
}

// evaluate runs defs in parallel, each writing its own slot so results
// keep catalog order.
func (e *Engine) evaluate(ctx context.Context, ix *schedule.Index, size catalog.SizeContext, defs []catalog.RuleDefinition, fam catalog.Family) ([]report.RuleResult, error) {
	results := make([]report.RuleResult, len(defs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i, def := range defs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			eval, ok := e.registry.Lookup(def.EvaluatorKey())
			if !ok {
				// New validated every key against this registry.
				return fmt.Errorf("%w: rule %s: unknown evaluator %q", catalog.ErrInvalidCatalog, def.ID, def.EvaluatorKey())
			}

			m := eval(ix, rules.Params(def.Params))
			threshold := def.Threshold.Resolve(size)
			results[i] = e.result(def, fam, threshold, m)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) result(def catalog.RuleDefinition, fam catalog.Family, threshold int, m rules.Measurement) report.RuleResult {
	subjects, truncated := capSubjects(m.Subjects, e.opts.MaxSubjects)
	return report.RuleResult{
		RuleID:         def.ID,
		Name:           def.DisplayName(),
		Family:         fam,
		Category:       def.Category,
		Weight:         def.Weight,
		Threshold:      threshold,
		ThresholdLabel: def.Threshold.Label,
		Observed:       m.Value,
		Score:          scoring.Normalize(m.Value, threshold),
		Passed:         m.Value <= float64(threshold),
		Subjects:       subjects,
		Truncated:      truncated,
	}
}

func capSubjects(subjects []string, limit int) ([]string, int) {
	if limit < 0 || len(subjects) <= limit {
		return subjects, 0
	}
	out := make([]string, limit)
	copy(out, subjects[:limit])
	return out, len(subjects) - limit
}

func ruleScores(results []report.RuleResult) []scoring.RuleScore {
	out := make([]scoring.RuleScore, len(results))
	for i, r := range results {
		out[i] = scoring.RuleScore{
			RuleID:   r.RuleID,
			Category: r.Category,
			Weight:   r.Weight,
			Score:    r.Score,
		}
	}
	return out
}
