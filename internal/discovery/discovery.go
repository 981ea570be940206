package discovery

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIncludePatterns are the glob patterns that identify schedule
// snapshots under a root.
var DefaultIncludePatterns = []string{
	"**/*.schedule.json",
	"**/*.schedule.yaml",
	"**/*.schedule.yml",
}

// DefaultExcludePatterns skip directories that never hold project schedules.
var DefaultExcludePatterns = []string{
	".git/**",
	"**/node_modules/**",
	"**/testdata/**",
}

// Format is the encoding of a schedule file.
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
)

// String returns the human-readable name of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// DetectFormat determines the format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// File represents a discovered schedule file.
type File struct {
	Path    string
	RelPath string
	Size    int64
	Format  Format
}

// FileDiscovery finds schedule files under a root.
type FileDiscovery struct {
	rootPath       string
	include        []string
	exclude        []string
	followSymlinks bool
}

// NewFileDiscovery creates a FileDiscovery. Empty include or exclude lists
// fall back to the defaults.
func NewFileDiscovery(rootPath string, include, exclude []string, followSymlinks bool) *FileDiscovery {
	if len(include) == 0 {
		include = DefaultIncludePatterns
	}
	if exclude == nil {
		exclude = DefaultExcludePatterns
	}
	return &FileDiscovery{
		rootPath:       rootPath,
		include:        include,
		exclude:        exclude,
		followSymlinks: followSymlinks,
	}
}

// DiscoverFiles finds every schedule file matching an include pattern and
// no exclude pattern. Results are sorted by relative path so batch runs are
// reproducible.
func (fd *FileDiscovery) DiscoverFiles() ([]File, error) {
	seen := make(map[string]bool)
	var files []File

	for _, pattern := range fd.include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
		matches, err := doublestar.Glob(os.DirFS(fd.rootPath), pattern)
		if err != nil {
			return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] || fd.excluded(match) {
				continue
			}
			f, ok := fd.processMatch(match)
			if !ok {
				continue
			}
			seen[match] = true
			files = append(files, f)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})
	return files, nil
}

// Matches reports whether a slash-separated path relative to the root would
// be discovered: it matches an include pattern and no exclude pattern.
func (fd *FileDiscovery) Matches(relPath string) bool {
	if fd.excluded(relPath) {
		return false
	}
	for _, pattern := range fd.include {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

func (fd *FileDiscovery) excluded(relPath string) bool {
	for _, pattern := range fd.exclude {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

// processMatch converts a glob match into a File, returning false if the match should be skipped.
func (fd *FileDiscovery) processMatch(match string) (File, bool) {
	fullPath := filepath.Join(fd.rootPath, match)

	info, err := os.Lstat(fullPath)
	if err != nil {
		return File{}, false
	}

	if info.Mode()&os.ModeSymlink != 0 {
		resolvedInfo, ok := fd.resolveSymlink(fullPath)
		if !ok {
			return File{}, false
		}
		info = resolvedInfo
	}
	if info.IsDir() {
		return File{}, false
	}

	return File{
		Path:    fullPath,
		RelPath: filepath.ToSlash(match),
		Size:    info.Size(),
		Format:  DetectFormat(match),
	}, true
}

// resolveSymlink follows a symlink if configured. Targets outside the root
// are skipped.
func (fd *FileDiscovery) resolveSymlink(fullPath string) (os.FileInfo, bool) {
	if !fd.followSymlinks {
		return nil, false
	}

	realPath, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		return nil, false
	}

	root, err := filepath.EvalSymlinks(fd.rootPath)
	if err != nil {
		root = fd.rootPath
	}
	if rel, err := filepath.Rel(root, realPath); err != nil || strings.HasPrefix(rel, "..") {
		return nil, false
	}

	info, err := os.Stat(realPath)
	if err != nil {
		return nil, false
	}
	return info, true
}

// ValidateFilePath checks an explicitly named schedule file before loading:
// it must exist, be a regular non-empty text file and carry a supported
// extension.
func ValidateFilePath(path string) (absPath string, err error) {
	absPath, err = filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", absPath)
		}
		if os.IsPermission(err) {
			return "", fmt.Errorf("permission denied: %s", absPath)
		}
		return "", fmt.Errorf("cannot access file: %s: %w", absPath, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", absPath)
	}
	if DetectFormat(absPath) == FormatUnknown {
		return "", fmt.Errorf("unsupported file type: %s. schedlint reads .json, .yaml and .yml schedules", filepath.Base(absPath))
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("file is empty: %s", absPath)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %s: %w", absPath, err)
	}
	defer f.Close()

	// Null bytes in the first 512 bytes mean binary content
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %s: %w", absPath, err)
	}
	if bytes.Contains(buf[:n], []byte{0}) {
		return "", fmt.Errorf("file appears to be binary, not text: %s", absPath)
	}

	return absPath, nil
}
