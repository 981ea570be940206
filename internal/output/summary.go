// Package output renders assessment results for people and machines.
package output

import (
	"github.com/dotcommander/schedlint/internal/baseline"
	"github.com/dotcommander/schedlint/internal/report"
)

// Tool identifies the producer in machine-readable output.
const Tool = "schedlint"

// Summary is everything a single assess run produced.
type Summary struct {
	Root      string
	Reports   []*report.QualityReport
	Deltas    []baseline.Delta // aligned with Reports when a baseline was given
	Failures  []LoadFailure
	FailBelow int
}

// LoadFailure records a schedule file that could not be assessed.
type LoadFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Formatter renders assessment summaries and batch digests.
type Formatter interface {
	Format(s *Summary) error
	FormatDigest(d *report.Digest) error
}

// Delta returns the baseline delta for report i, if any.
func (s *Summary) Delta(i int) (baseline.Delta, bool) {
	if i < 0 || i >= len(s.Deltas) {
		return baseline.Delta{}, false
	}
	return s.Deltas[i], true
}

// BelowThreshold returns the reports scoring under FailBelow.
func (s *Summary) BelowThreshold() []*report.QualityReport {
	var out []*report.QualityReport
	for _, r := range s.Reports {
		if r.Score < s.FailBelow {
			out = append(out, r)
		}
	}
	return out
}

// label names a report for display: its source file when known, otherwise
// its project id.
func label(r *report.QualityReport) string {
	if r.Source != "" {
		return r.Source
	}
	if r.ProjectID != "" {
		return r.ProjectID
	}
	return "(unnamed schedule)"
}
