// Package watch re-runs assessments when schedule files change on disk.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of events from editors and exporters.
const DefaultDebounce = 300 * time.Millisecond

// Options configures Watch.
type Options struct {
	Debounce time.Duration
	// Match reports whether a changed path is relevant. Nil matches all.
	Match  func(path string) bool
	Logger *slog.Logger
}

// Watch monitors root and its subdirectories and calls onChange with the
// sorted set of changed files once events have been quiet for the debounce
// interval. It runs until ctx is cancelled.
func Watch(ctx context.Context, root string, opts Options, onChange func(changed []string)) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addTree(watcher, root); err != nil {
		return err
	}
	log.Info("watch: watching for changes", "root", root)

	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Atomic saves arrive as create or rename, so all three count.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						log.Warn("watch: cannot watch new directory", "path", event.Name, "err", err)
					}
					continue
				}
			}

			if opts.Match != nil && !opts.Match(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			log.Debug("watch: change detected", "files", len(changed))
			onChange(changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watch: watcher error", "err", err)
		}
	}
}

// addTree adds dir and every non-hidden subdirectory to the watcher.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if d.Name() == "node_modules" {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
