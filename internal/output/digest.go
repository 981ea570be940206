package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dotcommander/schedlint/internal/report"
)

// digestStyles holds all the styles used in the digest box.
type digestStyles struct {
	header lipgloss.Style
	tierA  lipgloss.Style
	tierB  lipgloss.Style
	tierC  lipgloss.Style
	tierDF lipgloss.Style
	dim    lipgloss.Style
}

func newDigestStyles(colorize bool) digestStyles {
	if !colorize {
		plain := lipgloss.NewStyle()
		return digestStyles{plain, plain, plain, plain, plain, plain}
	}
	return digestStyles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		tierA:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		tierB:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		tierC:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		tierDF: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (s digestStyles) tier(t string) lipgloss.Style {
	switch t {
	case "A":
		return s.tierA
	case "B":
		return s.tierB
	case "C":
		return s.tierC
	default:
		return s.tierDF
	}
}

// FormatDigest prints the portfolio summary box.
func (f *ConsoleFormatter) FormatDigest(d *report.Digest) error {
	styles := newDigestStyles(f.colorize)
	w := f.w

	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.header.Render("╔═══════════════════════════════════════════════════════════╗"))
	fmt.Fprintln(w, styles.header.Render("║              SCHEDULE QUALITY SUMMARY                     ║"))
	fmt.Fprintln(w, styles.header.Render("╠═══════════════════════════════════════════════════════════╣"))
	fmt.Fprintf(w, "║ Schedules Assessed: %-38d ║\n", d.Projects)
	fmt.Fprintf(w, "║ Mean Score: %-5.1f │ Mean Tier: %-28s ║\n", d.MeanScore, d.MeanTier)

	fmt.Fprintln(w, styles.header.Render("╠───────────────────────────────────────────────────────────╣"))
	fmt.Fprintln(w, "║ QUALITY DISTRIBUTION                                      ║")
	bands := []struct {
		tier, label, color string
	}{
		{"A", "A (85-100)", "10"},
		{"B", "B (70-84) ", "12"},
		{"C", "C (50-69) ", "3"},
		{"D", "D (30-49) ", "9"},
		{"F", "F (<30)   ", "9"},
	}
	total := float64(d.Projects)
	if total == 0 {
		total = 1
	}
	for _, b := range bands {
		n := d.TierCounts[b.tier]
		fmt.Fprintf(w, "║   %s: %-4d (%5.1f%%)  %s                     ║\n",
			styles.tier(b.tier).Render(b.label), n, float64(n)/total*100,
			f.renderBar(n, d.Projects, b.color))
	}

	fmt.Fprintln(w, styles.header.Render("╠───────────────────────────────────────────────────────────╣"))
	fmt.Fprintln(w, "║ MOST VIOLATED RULES                                       ║")
	if len(d.MostViolated) == 0 {
		fmt.Fprintln(w, "║   none                                                    ║")
	}
	for i, v := range d.MostViolated {
		fmt.Fprintf(w, "║   %s %-40s %3d ║\n",
			styles.dim.Render(fmt.Sprintf("%d.", i+1)), truncateRight(v.Name, 40), v.Projects)
	}

	fmt.Fprintln(w, styles.header.Render("╠───────────────────────────────────────────────────────────╣"))
	fmt.Fprintln(w, "║ LOWEST SCORING SCHEDULES                                  ║")
	for i, p := range d.Lowest {
		name := p.Source
		if name == "" {
			name = p.ProjectID
		}
		fmt.Fprintf(w, "║   %s %-35s %s %3d ║\n",
			styles.dim.Render(fmt.Sprintf("%d.", i+1)),
			truncateLeft(name, 35),
			styles.tier(p.Tier).Render(p.Tier),
			p.Score)
	}

	fmt.Fprintln(w, styles.header.Render("╚═══════════════════════════════════════════════════════════╝"))
	fmt.Fprintln(w)
	return nil
}

func (f *ConsoleFormatter) renderBar(count, total int, color string) string {
	if total == 0 {
		return strings.Repeat(" ", 10)
	}
	barWidth := 10
	filled := (count * barWidth) / total
	if count > 0 && filled == 0 {
		filled = 1
	}
	if !f.colorize {
		return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	return style.Render(strings.Repeat("█", filled)) + dim.Render(strings.Repeat("░", barWidth-filled))
}

func truncateRight(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func truncateLeft(s string, n int) string {
	if len(s) > n {
		return "..." + s[len(s)-(n-3):]
	}
	return s
}
