package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dotcommander/schedlint/internal/baseline"
	"github.com/dotcommander/schedlint/internal/report"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	w       io.Writer
	verbose bool
}

// NewMarkdownFormatter creates a new MarkdownFormatter
func NewMarkdownFormatter(w io.Writer, verbose bool) *MarkdownFormatter {
	return &MarkdownFormatter{w: w, verbose: verbose}
}

// Format formats the assessment summary as Markdown
func (f *MarkdownFormatter) Format(s *Summary) error {
	var b strings.Builder

	b.WriteString("# Schedule Quality Report\n\n")
	if s.Root != "" {
		fmt.Fprintf(&b, "**Root:** `%s`\n\n", s.Root)
	}

	b.WriteString("## Summary\n\n")
	b.WriteString("| Schedule | Score | Tier | Failed Rules | Trend |\n")
	b.WriteString("|----------|-------|------|--------------|-------|\n")
	for i, r := range s.Reports {
		trend := "-"
		if d, ok := s.Delta(i); ok {
			trend = trendCell(d)
		}
		fmt.Fprintf(&b, "| %s | %d | %s | %d | %s |\n", escapeCell(label(r)), r.Score, r.Tier, len(r.Failed()), trend)
	}
	b.WriteString("\n")

	if len(s.Reports) == 0 {
		b.WriteString("*No schedules found to assess.*\n\n")
	}

	for _, r := range s.Reports {
		f.writeReport(&b, r)
	}

	if len(s.Failures) > 0 {
		b.WriteString("## Errors\n\n")
		for _, lf := range s.Failures {
			fmt.Fprintf(&b, "- **%s** - %s\n", lf.File, lf.Error)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Conclusion\n\n")
	below := s.BelowThreshold()
	switch {
	case len(below) == 0 && len(s.Failures) == 0:
		fmt.Fprintf(&b, "✓ %d %s at or above %d\n", len(s.Reports), pluralizeCount("schedule", len(s.Reports)), s.FailBelow)
	default:
		fmt.Fprintf(&b, "✗ %d below %d, %d failed to load\n", len(below), s.FailBelow, len(s.Failures))
	}

	_, err := io.WriteString(f.w, b.String())
	return err
}

func (f *MarkdownFormatter) writeReport(b *strings.Builder, r *report.QualityReport) {
	fmt.Fprintf(b, "### %s\n\n", label(r))
	fmt.Fprintf(b, "Score: **%d** (%s)  \n", r.Score, r.Tier)
	fmt.Fprintf(b, "Activities: %d, Relationships: %d\n\n", r.Activities, r.Relationships)

	b.WriteString("| Category | Score | Rules |\n")
	b.WriteString("|----------|-------|-------|\n")
	for _, c := range r.Categories {
		fmt.Fprintf(b, "| %s | %.2f | %d |\n", c.Category, c.Score, c.RuleCount)
	}
	b.WriteString("\n")

	results := r.Failed()
	if f.verbose {
		results = r.Results()
	}
	if len(results) == 0 {
		b.WriteString("All rules passed.\n\n---\n\n")
		return
	}

	b.WriteString("| Rule | Observed | Threshold | Score | Status |\n")
	b.WriteString("|------|----------|-----------|-------|--------|\n")
	for _, rr := range results {
		fmt.Fprintf(b, "| %s | %g | %d | %.2f | %s |\n", rr.Name, rr.Observed, rr.Threshold, rr.Score, getStatusEmoji(rr.Passed))
	}
	b.WriteString("\n")

	for _, rr := range results {
		if len(rr.Subjects) == 0 || rr.Passed {
			continue
		}
		fmt.Fprintf(b, "- **%s**: %s", rr.Name, strings.Join(wrapCode(rr.Subjects), ", "))
		if rr.Truncated > 0 {
			fmt.Fprintf(b, " and %d more", rr.Truncated)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n---\n\n")
}

// FormatDigest formats a batch digest as Markdown
func (f *MarkdownFormatter) FormatDigest(d *report.Digest) error {
	var b strings.Builder

	b.WriteString("# Schedule Quality Summary\n\n")
	fmt.Fprintf(&b, "**Schedules:** %d  \n**Mean score:** %.1f (%s)\n\n", d.Projects, d.MeanScore, d.MeanTier)

	b.WriteString("## Quality Distribution\n\n| Tier | Count |\n|------|-------|\n")
	for _, t := range report.Tiers {
		fmt.Fprintf(&b, "| %s | %d |\n", t, d.TierCounts[t])
	}
	b.WriteString("\n")

	if len(d.MostViolated) > 0 {
		b.WriteString("## Most Violated Rules\n\n| Rule | Schedules | Mean Score |\n|------|-----------|------------|\n")
		for _, v := range d.MostViolated {
			fmt.Fprintf(&b, "| %s | %d | %.2f |\n", v.Name, v.Projects, v.MeanScore)
		}
		b.WriteString("\n")
	}

	if len(d.Lowest) > 0 {
		b.WriteString("## Lowest Scoring\n\n| Schedule | Score | Tier |\n|----------|-------|------|\n")
		for _, p := range d.Lowest {
			name := p.Source
			if name == "" {
				name = p.ProjectID
			}
			fmt.Fprintf(&b, "| %s | %d | %s |\n", escapeCell(name), p.Score, p.Tier)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(f.w, b.String())
	return err
}

// getStatusEmoji returns an emoji for the status
func getStatusEmoji(passed bool) string {
	if passed {
		return "✅"
	}
	return "❌"
}

func trendCell(d baseline.Delta) string {
	switch d.Trend {
	case baseline.TrendRegressed:
		return fmt.Sprintf("▼ %d", d.Change)
	case baseline.TrendImproved:
		return fmt.Sprintf("▲ +%d", d.Change)
	default:
		return string(d.Trend)
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func wrapCode(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = "`" + s + "`"
	}
	return out
}
