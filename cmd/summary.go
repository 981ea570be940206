package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/dotcommander/schedlint/internal/config"
	"github.com/dotcommander/schedlint/internal/outputters"
	"github.com/dotcommander/schedlint/internal/report"
	"github.com/spf13/cobra"
)

var summaryTop int

var summaryCmd = &cobra.Command{
	Use:   "summary [files...]",
	Short: "Show quality summary across all schedules",
	Long: `Assesses every discovered schedule (or the files given) and displays a
portfolio summary: tier distribution, the most violated rules and the
lowest-scoring schedules.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSummary(cmd.Context(), args); err != nil {
			fail(err)
		}
	},
}

func init() {
	summaryCmd.Flags().IntVar(&summaryTop, "top", 5, "Entries shown in the ranked lists")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(ctx context.Context, args []string) error {
	cfg, err := config.LoadConfig(rootPath)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	log := cfg.Logger(os.Stderr)

	a, err := newAssessment(cfg, log)
	if err != nil {
		return err
	}
	reports, failures, err := a.assessAll(ctx, args)
	if err != nil {
		return err
	}
	for _, f := range failures {
		log.Warn("excluded from summary", "file", f.File, "err", f.Error)
	}

	digest := report.Summarize(reports, summaryTop)
	if err := outputters.NewOutputter(cfg).FormatDigest(digest); err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	return nil
}
