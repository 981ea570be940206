package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dotcommander/schedlint/internal/baseline"
	"github.com/dotcommander/schedlint/internal/catalog"
	"github.com/dotcommander/schedlint/internal/config"
	"github.com/dotcommander/schedlint/internal/discovery"
	"github.com/dotcommander/schedlint/internal/engine"
	"github.com/dotcommander/schedlint/internal/git"
	"github.com/dotcommander/schedlint/internal/output"
	"github.com/dotcommander/schedlint/internal/outputters"
	"github.com/dotcommander/schedlint/internal/report"
	"github.com/dotcommander/schedlint/internal/rules"
	"github.com/dotcommander/schedlint/internal/schedule"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	baselinePath   string
	createBaseline bool
	failBelow      int
	changedOnly    bool
	stagedOnly     bool
	maxRegression  int
)

// errBelowThreshold marks a run that completed but must exit non-zero.
var errBelowThreshold = errors.New("schedules scored below threshold")

var assessCmd = &cobra.Command{
	Use:   "assess [files...]",
	Short: "Assess schedule snapshots and report quality scores",
	Long: `Assess scores each schedule against the rule catalog.

With no arguments every schedule under --root matching the include patterns
(default **/*.schedule.json, **/*.schedule.yaml, **/*.schedule.yml) is
assessed. Files that fail to load are reported and do not stop the run.

Git:
  --changed           only schedules with uncommitted changes
  --staged            only schedules in the git index

Baselines:
  --create-baseline   record current scores (default .schedlintbaseline.json)
  --baseline FILE     compare against recorded scores and show trends
  --fail-on-regression N
                      exit 1 when a score drops more than N points

Exit status is 1 when any schedule scores below --fail-below, regresses past
--fail-on-regression, or a file could not be loaded.`,
	Run: func(cmd *cobra.Command, args []string) {
		runAssessCommand(cmd, args)
	},
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, assessCmd} {
		c.Flags().StringVar(&baselinePath, "baseline", "", "Baseline file to compare against")
		c.Flags().BoolVar(&createBaseline, "create-baseline", false, "Write current scores as the new baseline")
		c.Flags().IntVar(&failBelow, "fail-below", 0, "Exit 1 when any score (0-100) is below this value")
		c.Flags().BoolVar(&changedOnly, "changed", false, "Only assess schedules with uncommitted git changes")
		c.Flags().BoolVar(&stagedOnly, "staged", false, "Only assess schedules staged in git")
		c.Flags().IntVar(&maxRegression, "fail-on-regression", -1, "Exit 1 when any score drops more than N points below the baseline (-1 disables)")
	}
	rootCmd.AddCommand(assessCmd)
}

func runAssessCommand(cmd *cobra.Command, args []string) {
	viper.BindPFlag("baseline", cmd.Flags().Lookup("baseline"))
	viper.BindPFlag("failBelow", cmd.Flags().Lookup("fail-below"))

	if err := runAssess(cmd.Context(), args); err != nil {
		if errors.Is(err, errBelowThreshold) {
			exitFunc(1)
			return
		}
		fail(err)
	}
}

func runAssess(ctx context.Context, args []string) error {
	cfg, err := config.LoadConfig(rootPath)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	a, err := newAssessment(cfg, cfg.Logger(os.Stderr))
	if err != nil {
		return err
	}

	files, err := a.files(args)
	if err != nil {
		return err
	}
	summary, err := a.run(ctx, files)
	if err != nil {
		return err
	}

	path := cfg.Baseline
	if createBaseline && path == "" {
		path = filepath.Join(cfg.Root, baseline.DefaultFile)
	}
	if path != "" && !createBaseline {
		b, err := baseline.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load baseline: %w", err)
		}
		summary.Deltas = b.CompareAll(summary.Reports, baseline.Fingerprint(a.catalog))
	}

	if err := outputters.NewOutputter(cfg).Format(summary); err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}

	if createBaseline {
		if err := baseline.Create(summary.Reports, a.catalog).Save(path); err != nil {
			return fmt.Errorf("failed to save baseline: %w", err)
		}
		a.log.Info("baseline written", "path", path, "projects", len(summary.Reports))
	}

	if len(summary.BelowThreshold()) > 0 || len(summary.Failures) > 0 {
		return errBelowThreshold
	}
	if maxRegression >= 0 {
		if regressed := baseline.Regressions(summary.Deltas, maxRegression); len(regressed) > 0 {
			for _, d := range regressed {
				a.log.Warn("score regressed", "project", d.ProjectID, "change", d.Change)
			}
			return errBelowThreshold
		}
	}
	return nil
}

// assessment holds what one CLI run needs to load and score schedules.
type assessment struct {
	cfg     *config.Config
	log     *slog.Logger
	catalog *catalog.Catalog
	engine  *engine.Engine
	loader  *schedule.Loader
}

// scheduleFile is a schedule to load with the name shown in reports.
type scheduleFile struct {
	Path    string
	Display string
}

func newAssessment(cfg *config.Config, log *slog.Logger) (*assessment, error) {
	reg := rules.NewRegistry()

	catLoader, err := catalog.NewLoader(reg.Has)
	if err != nil {
		return nil, fmt.Errorf("error loading schemas: %w", err)
	}
	cat, err := catLoader.LoadFile(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(cat, reg, engine.Options{
		Concurrency: cfg.Concurrency,
		MaxSubjects: cfg.MaxSubjects,
		BlendWeight: cfg.BlendWeight,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	loader, err := schedule.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("error loading schemas: %w", err)
	}

	return &assessment{
		cfg:     cfg,
		log:     log,
		catalog: eng.Catalog(),
		engine:  eng,
		loader:  loader,
	}, nil
}

// files resolves explicit arguments, or discovers schedules under the root.
func (a *assessment) files(args []string) ([]scheduleFile, error) {
	if len(args) > 0 {
		out := make([]scheduleFile, 0, len(args))
		for _, arg := range args {
			abs, err := discovery.ValidateFilePath(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, scheduleFile{Path: abs, Display: arg})
		}
		return out, nil
	}

	fd := discovery.NewFileDiscovery(a.cfg.Root, a.cfg.Include, a.cfg.Exclude, a.cfg.FollowSymlinks)
	if changedOnly || stagedOnly {
		return a.changedFiles(fd)
	}

	found, err := fd.DiscoverFiles()
	if err != nil {
		return nil, fmt.Errorf("error discovering schedules: %w", err)
	}
	a.log.Debug("schedules discovered", "root", a.cfg.Root, "count", len(found))

	out := make([]scheduleFile, len(found))
	for i, f := range found {
		out[i] = scheduleFile{Path: f.Path, Display: f.RelPath}
	}
	return out, nil
}

// changedFiles lists discoverable schedules touched in the git working tree.
func (a *assessment) changedFiles(fd *discovery.FileDiscovery) ([]scheduleFile, error) {
	paths, err := git.ChangedSchedules(a.cfg.Root, stagedOnly, fd.Matches)
	if err != nil {
		return nil, err
	}
	a.log.Debug("changed schedules", "root", a.cfg.Root, "staged", stagedOnly, "count", len(paths))

	root, err := filepath.Abs(a.cfg.Root)
	if err != nil {
		return nil, err
	}
	out := make([]scheduleFile, len(paths))
	for i, p := range paths {
		display := p
		if rel, err := filepath.Rel(root, p); err == nil {
			display = filepath.ToSlash(rel)
		}
		out[i] = scheduleFile{Path: p, Display: display}
	}
	return out, nil
}

// run loads and assesses files. Load errors become failures in the summary.
func (a *assessment) run(ctx context.Context, files []scheduleFile) (*output.Summary, error) {
	summary := &output.Summary{Root: a.cfg.Root, FailBelow: a.cfg.FailBelow}

	var (
		schedules []*schedule.Schedule
		sources   []string
	)
	for _, f := range files {
		s, err := a.loader.LoadFile(f.Path)
		if err != nil {
			a.log.Warn("schedule not loaded", "file", f.Display, "err", err)
			summary.Failures = append(summary.Failures, output.LoadFailure{File: f.Display, Error: err.Error()})
			continue
		}
		schedules = append(schedules, s)
		sources = append(sources, f.Display)
	}

	reports, err := a.engine.AssessAll(ctx, schedules)
	if err != nil {
		return nil, err
	}
	for i, r := range reports {
		r.Source = sources[i]
	}
	summary.Reports = reports
	return summary, nil
}

// assessAll is run for commands that only need the reports.
func (a *assessment) assessAll(ctx context.Context, args []string) ([]*report.QualityReport, []output.LoadFailure, error) {
	files, err := a.files(args)
	if err != nil {
		return nil, nil, err
	}
	s, err := a.run(ctx, files)
	if err != nil {
		return nil, nil, err
	}
	return s.Reports, s.Failures, nil
}
