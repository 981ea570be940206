package engine

import (
	"context"

	"github.com/dotcommander/schedlint/internal/report"
	"github.com/dotcommander/schedlint/internal/schedule"
	"golang.org/x/sync/errgroup"
)

// AssessAll assesses schedules concurrently. Reports are returned in input
// order; a nil schedule yields the report of an empty schedule.
func (e *Engine) AssessAll(ctx context.Context, schedules []*schedule.Schedule) ([]*report.QualityReport, error) {
	reports := make([]*report.QualityReport, len(schedules))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i, s := range schedules {
		g.Go(func() error {
			rep, err := e.Assess(ctx, s)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
