package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dotcommander/schedlint/internal/baseline"
	"github.com/dotcommander/schedlint/internal/report"
	"golang.org/x/term"
)

// ConsoleFormatter formats output for console display
type ConsoleFormatter struct {
	w        io.Writer
	quiet    bool
	verbose  bool
	colorize bool
	styles   consoleStyles
}

type consoleStyles struct {
	green lipgloss.Style
	red   lipgloss.Style
	amber lipgloss.Style
	blue  lipgloss.Style
	dim   lipgloss.Style
	bold  lipgloss.Style
}

func newConsoleStyles(colorize bool) consoleStyles {
	if !colorize {
		plain := lipgloss.NewStyle()
		return consoleStyles{plain, plain, plain, plain, plain, plain}
	}
	return consoleStyles{
		green: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		red:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		amber: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		blue:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		bold:  lipgloss.NewStyle().Bold(true),
	}
}

// NewConsoleFormatter creates a ConsoleFormatter writing to w. Colour is
// enabled only when w is a terminal.
func NewConsoleFormatter(w io.Writer, quiet, verbose bool) *ConsoleFormatter {
	colorize := isTTY(w)
	return &ConsoleFormatter{
		w:        w,
		quiet:    quiet,
		verbose:  verbose,
		colorize: colorize,
		styles:   newConsoleStyles(colorize),
	}
}

// isTTY returns true if w is a terminal
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// tierStyle picks the colour for a tier.
func (f *ConsoleFormatter) tierStyle(tier string) lipgloss.Style {
	switch tier {
	case "A":
		return f.styles.green
	case "B":
		return f.styles.blue
	case "C":
		return f.styles.amber
	default:
		return f.styles.red
	}
}

// Format formats the assessment summary for console output
func (f *ConsoleFormatter) Format(s *Summary) error {
	if f.quiet {
		// Only the exit code matters in quiet mode
		return nil
	}

	for i, r := range s.Reports {
		f.printReport(r)
		if d, ok := s.Delta(i); ok {
			f.printDelta(d)
		}
	}
	f.printFailures(s.Failures)
	f.printConclusion(s)
	return nil
}

// printReport prints one schedule's score and its failed rules.
func (f *ConsoleFormatter) printReport(r *report.QualityReport) {
	failed := r.Failed()
	icon := "✓"
	if len(failed) > 0 {
		icon = "✗"
	}

	ts := f.tierStyle(r.Tier)
	fmt.Fprintf(f.w, "%s %s  %s  %s\n",
		ts.Render(icon),
		f.styles.bold.Render(label(r)),
		ts.Render(fmt.Sprintf("%3d %s", r.Score, r.Tier)),
		f.styles.dim.Render(fmt.Sprintf("(%d activities, %d relationships)", r.Activities, r.Relationships)))

	var cats []string
	for _, c := range r.Categories {
		if c.RuleCount == 0 && !f.verbose {
			continue
		}
		cats = append(cats, fmt.Sprintf("%s %.2f", c.Category, c.Score))
	}
	line := "    " + strings.Join(cats, "  ")
	if r.CustomComposite != nil {
		line += fmt.Sprintf("  | custom %.2f (blend %.0f%%)", *r.CustomComposite, r.BlendWeight*100)
	}
	fmt.Fprintln(f.w, f.styles.dim.Render(line))

	results := failed
	if f.verbose {
		results = r.Results()
	}
	for _, rr := range results {
		f.printRule(rr)
	}
}

func (f *ConsoleFormatter) printRule(rr report.RuleResult) {
	prefix := "    ✘ "
	style := f.styles.red
	if rr.Passed {
		prefix = "    ✓ "
		style = f.styles.green
	}

	fmt.Fprintf(f.w, "%s%s  %s  %s\n",
		style.Render(prefix),
		rr.Name,
		fmt.Sprintf("%g observed, threshold %d (%s)", rr.Observed, rr.Threshold, rr.ThresholdLabel),
		style.Render(fmt.Sprintf("score %.2f", rr.Score)))

	if len(rr.Subjects) > 0 && !rr.Passed {
		subjects := strings.Join(rr.Subjects, ", ")
		if rr.Truncated > 0 {
			subjects += fmt.Sprintf(" +%d more", rr.Truncated)
		}
		fmt.Fprintf(f.w, "        %s\n", f.styles.dim.Render(subjects))
	}
}

func (f *ConsoleFormatter) printDelta(d baseline.Delta) {
	var text string
	style := f.styles.dim
	switch d.Trend {
	case baseline.TrendNew:
		text = "new since baseline"
	case baseline.TrendRegressed:
		text = fmt.Sprintf("▼ %d vs baseline %d (regressed)", d.Change, d.Previous)
		style = f.styles.red
	case baseline.TrendImproved:
		text = fmt.Sprintf("▲ +%d vs baseline %d (improved)", d.Change, d.Previous)
		style = f.styles.green
	default:
		text = "unchanged since baseline"
	}
	fmt.Fprintf(f.w, "    %s\n", style.Render(text))

	for _, rd := range d.Regressed {
		fmt.Fprintf(f.w, "      %s\n", f.styles.red.Render(fmt.Sprintf("%s %.2f → %.2f", rd.RuleID, rd.Previous, rd.Current)))
	}
	if d.CatalogChanged {
		fmt.Fprintf(f.w, "    %s\n", f.styles.amber.Render("catalog changed since baseline; scores may not be comparable"))
	}
}

func (f *ConsoleFormatter) printFailures(failures []LoadFailure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintln(f.w)
	fmt.Fprintln(f.w, f.styles.bold.Render("Errors:"))
	for _, lf := range failures {
		fmt.Fprintf(f.w, "  %s %s: %s\n", f.styles.red.Render("✘"), lf.File, lf.Error)
	}
}

// printConclusion prints the closing summary line
func (f *ConsoleFormatter) printConclusion(s *Summary) {
	total := len(s.Reports)
	if total == 0 && len(s.Failures) == 0 {
		fmt.Fprintln(f.w, "No schedules found.")
		return
	}

	var sum, rulesFailed int
	for _, r := range s.Reports {
		sum += r.Score
		rulesFailed += len(r.Failed())
	}

	text := fmt.Sprintf("%d %s assessed", total, pluralizeCount("schedule", total))
	if total > 0 {
		text += fmt.Sprintf(", mean score %d", (sum+total/2)/total)
	}
	if below := len(s.BelowThreshold()); below > 0 {
		text += fmt.Sprintf(", %d below %d", below, s.FailBelow)
	}
	if len(s.Failures) > 0 {
		text += fmt.Sprintf(", %d failed to load", len(s.Failures))
	}

	fmt.Fprintln(f.w)
	perfect := total > 0 && rulesFailed == 0 && len(s.Failures) == 0
	switch {
	case f.colorize && perfect:
		printCelebration(f.w, text)
	case perfect:
		fmt.Fprintln(f.w, f.styles.green.Render(text))
	case len(s.BelowThreshold()) > 0 || len(s.Failures) > 0:
		fmt.Fprintln(f.w, f.styles.red.Render(text))
	default:
		fmt.Fprintln(f.w, text)
	}
}

// pluralizeCount returns singular or plural form based on count.
func pluralizeCount(s string, count int) string {
	if count == 1 {
		return s
	}
	return s + "s"
}
