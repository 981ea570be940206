package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootPath     string
	quiet        bool
	verbose      bool
	outputFormat string
	outputFile   string
	catalogPath  string
	concurrency  int
	maxSubjects  int
	blendWeight  float64
)

// exitFunc is swapped out in tests.
var exitFunc = os.Exit

var rootCmd = &cobra.Command{
	Use:   "schedlint",
	Short: "Schedule quality assessment for project activity networks",
	Long: `schedlint assesses project schedule snapshots against DCMA-style
diagnostics (missing logic, leads and lags, hard constraints, float, status
integrity and more) and reports a 0-100 quality score per schedule.

By default, schedlint assesses every *.schedule.{json,yaml,yml} file under the
root. Use the assess command to name files explicitly.`,
	Run: func(cmd *cobra.Command, args []string) {
		runAssessCommand(cmd, args)
	},
}

// Execute runs the root command with interrupt handling.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		exitFunc(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&rootPath, "root", "r", "", "Directory to search for schedules (default: current directory)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Show every rule, not just failures")
	flags.StringVarP(&outputFormat, "format", "f", "console", "Output format (console|json|markdown|prometheus)")
	flags.StringVarP(&outputFile, "output", "o", "", "Output file for reports (required unless --format console)")
	flags.StringVar(&catalogPath, "catalog", "", "YAML rule catalog overriding the built-in rules")
	flags.IntVar(&concurrency, "concurrency", 8, "Rules and schedules evaluated in parallel")
	flags.IntVar(&maxSubjects, "max-subjects", 20, "Offending ids listed per rule (negative for all)")
	flags.Float64Var(&blendWeight, "blend-weight", 0, "Share of the final score given to custom rules (0-1)")

	viper.BindPFlag("root", flags.Lookup("root"))
	viper.BindPFlag("quiet", flags.Lookup("quiet"))
	viper.BindPFlag("verbose", flags.Lookup("verbose"))
	viper.BindPFlag("format", flags.Lookup("format"))
	viper.BindPFlag("output", flags.Lookup("output"))
	viper.BindPFlag("catalog", flags.Lookup("catalog"))
	viper.BindPFlag("concurrency", flags.Lookup("concurrency"))
	viper.BindPFlag("maxSubjects", flags.Lookup("max-subjects"))
}

// initConfig applies flags whose zero value is meaningful and so cannot be
// bound directly.
func initConfig() {
	if f := rootCmd.PersistentFlags().Lookup("blend-weight"); f != nil && f.Changed {
		viper.Set("blendWeight", blendWeight)
	}
}

// fail prints err and exits non-zero.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exitFunc(1)
}
