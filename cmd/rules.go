package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dotcommander/schedlint/internal/catalog"
	"github.com/dotcommander/schedlint/internal/config"
	"github.com/dotcommander/schedlint/internal/rules"
	"github.com/spf13/cobra"
)

var (
	sizeActivities    int
	sizeRelationships int
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the resolved rule catalog",
	Long: `The rules command prints every rule in the active catalog: the built-in
standard rules plus any overrides and custom rules from --catalog.

Thresholds are resolved for a schedule of the given size:
  --activities N       activity count used for ratio thresholds
  --relationships M    relationship count used for relationship ratios`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRules(os.Stdout); err != nil {
			fail(err)
		}
	},
}

func init() {
	rulesCmd.Flags().IntVar(&sizeActivities, "activities", 100, "Activity count to resolve thresholds against")
	rulesCmd.Flags().IntVar(&sizeRelationships, "relationships", 100, "Relationship count to resolve thresholds against")
	rootCmd.AddCommand(rulesCmd)
}

func runRules(w io.Writer) error {
	cfg, err := config.LoadConfig(rootPath)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	reg := rules.NewRegistry()
	loader, err := catalog.NewLoader(reg.Has)
	if err != nil {
		return fmt.Errorf("error loading schemas: %w", err)
	}
	cat, err := loader.LoadFile(cfg.Catalog)
	if err != nil {
		return err
	}
	if cfg.BlendWeight != nil {
		cat.CustomBlendWeight = *cfg.BlendWeight
	}

	printCatalog(w, cat, catalog.SizeContext{TotalActivities: sizeActivities, TotalRelationships: sizeRelationships})
	return nil
}

func printCatalog(w io.Writer, cat *catalog.Catalog, size catalog.SizeContext) {
	fmt.Fprintf(w, "Thresholds for %d activities, %d relationships\n\n", size.TotalActivities, size.TotalRelationships)

	fmt.Fprintln(w, "STANDARD")
	printRuleTable(w, cat.Standard, size)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "CUSTOM (blend %.0f%%)\n", cat.CustomBlendWeight*100)
	if len(cat.Custom) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	printRuleTable(w, cat.Custom, size)
}

func printRuleTable(w io.Writer, defs []catalog.RuleDefinition, size catalog.SizeContext) {
	fmt.Fprintf(w, "  %-26s %-14s %6s %9s  %s\n", "RULE", "CATEGORY", "WEIGHT", "THRESHOLD", "BASIS")
	for _, def := range defs {
		category := string(def.Category)
		if category == "" {
			category = "-"
		}
		basis := def.Threshold.Label
		if p := formatParams(def.Params); p != "" {
			basis += "; " + p
		}
		if def.EvaluatorKey() != def.ID {
			basis += "; evaluator " + def.EvaluatorKey()
		}
		fmt.Fprintf(w, "  %-26s %-14s %6g %9d  %s\n", def.ID, category, def.Weight, def.Threshold.Resolve(size), basis)
	}
}

func formatParams(params map[string]float64) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, params[k])
	}
	return strings.Join(parts, ", ")
}
