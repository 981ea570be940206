package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/dotcommander/schedlint/internal/config"
	"github.com/dotcommander/schedlint/internal/discovery"
	"github.com/dotcommander/schedlint/internal/outputters"
	"github.com/dotcommander/schedlint/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [files...]",
	Short: "Re-assess schedules whenever they change",
	Long: `Watch assesses once, then re-assesses whenever a watched schedule is
written. With no arguments every schedule under --root is watched, including
files created after the watch starts. Stop with Ctrl-C.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runWatch(cmd.Context(), args); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(ctx context.Context, args []string) error {
	cfg, err := config.LoadConfig(rootPath)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	log := cfg.Logger(os.Stderr)

	a, err := newAssessment(cfg, log)
	if err != nil {
		return err
	}

	dir, match, err := watchTarget(cfg, args)
	if err != nil {
		return err
	}
	catalogFile := watchedCatalog(cfg, dir)
	if cfg.Catalog != "" && catalogFile == "" {
		log.Warn("watch: catalog is outside the watched tree, changes to it are ignored", "catalog", cfg.Catalog)
	}

	assess := func() {
		files, err := a.files(args)
		if err != nil {
			log.Error("watch: cannot list schedules", "err", err)
			return
		}
		summary, err := a.run(ctx, files)
		if err != nil {
			log.Error("watch: assessment failed", "err", err)
			return
		}
		if err := outputters.NewOutputter(cfg).Format(summary); err != nil {
			log.Error("watch: output failed", "err", err)
		}
	}

	assess()
	return watch.Watch(ctx, dir, watch.Options{
		Debounce: cfg.Watch.Debounce,
		Match: func(path string) bool {
			return (catalogFile != "" && path == catalogFile) || match(path)
		},
		Logger: log,
	}, func(changed []string) {
		if catalogFile != "" && slices.Contains(changed, catalogFile) {
			next, err := newAssessment(cfg, log)
			if err != nil {
				log.Error("watch: catalog reload failed, keeping previous catalog", "catalog", catalogFile, "err", err)
			} else {
				log.Info("watch: catalog reloaded", "catalog", catalogFile)
				a = next
			}
		}
		log.Info("watch: re-assessing", "changed", len(changed))
		assess()
	})
}

// watchedCatalog returns the absolute catalog path when it lies inside dir.
func watchedCatalog(cfg *config.Config, dir string) string {
	if cfg.Catalog == "" {
		return ""
	}
	abs, err := filepath.Abs(cfg.Catalog)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil || rel == ".." || startsWithParent(rel) {
		return ""
	}
	return abs
}

// watchTarget picks the directory to watch and the filter for events in it.
// Named files are watched through their common parent directory.
func watchTarget(cfg *config.Config, args []string) (string, func(string) bool, error) {
	if len(args) == 0 {
		root, err := filepath.Abs(cfg.Root)
		if err != nil {
			return "", nil, err
		}
		fd := discovery.NewFileDiscovery(root, cfg.Include, cfg.Exclude, cfg.FollowSymlinks)
		match := func(path string) bool {
			rel, err := filepath.Rel(root, path)
			return err == nil && fd.Matches(filepath.ToSlash(rel))
		}
		return root, match, nil
	}

	wanted := make(map[string]bool, len(args))
	var dir string
	for _, arg := range args {
		abs, err := discovery.ValidateFilePath(arg)
		if err != nil {
			return "", nil, err
		}
		wanted[abs] = true
		dir = commonDir(dir, filepath.Dir(abs))
	}
	match := func(path string) bool {
		abs, err := filepath.Abs(path)
		return err == nil && wanted[abs]
	}
	return dir, match, nil
}

// commonDir returns the deepest directory containing both a and b.
func commonDir(a, b string) string {
	if a == "" {
		return b
	}
	for {
		rel, err := filepath.Rel(a, b)
		if err == nil && rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel) {
			return a
		}
		parent := filepath.Dir(a)
		if parent == a {
			return a
		}
		a = parent
	}
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
