// Package git narrows an assessment to schedule files touched in the
// working tree.
package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ChangedSchedules returns absolute paths of changed files under rootPath
// for which match reports true. match receives slash-separated paths
// relative to rootPath. With staged set only the index is consulted,
// otherwise staged and unstaged changes against HEAD.
// Returns an empty slice if rootPath is not in a git repository.
func ChangedSchedules(rootPath string, staged bool, match func(relPath string) bool) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}

	args := []string{"diff", "--name-only", "--relative"}
	switch {
	case staged:
		args = append(args, "--staged")
	case hasCommits(rootPath):
		args = append(args, "HEAD")
	default:
		// No commits yet: everything tracked counts as changed.
		args = []string{"ls-files"}
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = rootPath
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}

	return filterSchedules(string(output), rootPath, match), nil
}

// IsGitRepo checks if the given directory is within a git repository.
func IsGitRepo(rootPath string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = rootPath
	return cmd.Run() == nil
}

func hasCommits(rootPath string) bool {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = rootPath
	return cmd.Run() == nil
}

// filterSchedules keeps existing files that match. Deleted files appear in
// git output and are dropped.
func filterSchedules(gitOutput, rootPath string, match func(string) bool) []string {
	files := []string{}
	for _, line := range strings.Split(strings.TrimSpace(gitOutput), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rel := filepath.ToSlash(line)
		if match != nil && !match(rel) {
			continue
		}

		absPath := filepath.Join(rootPath, filepath.FromSlash(rel))
		if _, err := os.Stat(absPath); err != nil {
			continue
		}
		files = append(files, absPath)
	}
	return files
}
