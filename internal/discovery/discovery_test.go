package discovery

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// TestFormat_String tests the String method for all Format constants
func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatJSON, "json"},
		{FormatYAML, "yaml"},
		{FormatUnknown, "unknown"},
		{Format(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a/tower.schedule.json", FormatJSON},
		{"tower.schedule.YAML", FormatYAML},
		{"tower.yml", FormatYAML},
		{"tower.xer", FormatUnknown},
		{"noext", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectFormat(tt.path); got != tt.want {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// TestDiscoverFiles_Integration tests full discovery workflow
func TestDiscoverFiles_Integration(t *testing.T) {
	tmpDir := t.TempDir()

	writeTree(t, tmpDir, map[string]string{
		"projects/tower-a.schedule.json":      `{"activities": []}`,
		"projects/east/tower-b.schedule.yaml": "activities: []\n",
		"bridge.schedule.yml":                 "activities: []\n",

		// Files that should NOT be discovered
		"projects/notes.json":                    "{}",
		"projects/tower-a.json":                  "{}",
		"node_modules/pkg/x.schedule.json":       "{}",
		"internal/testdata/fixture.schedule.json": "{}",
		".git/objects/y.schedule.json":           "{}",
	})

	fd := NewFileDiscovery(tmpDir, nil, nil, false)
	files, err := fd.DiscoverFiles()
	if err != nil {
		t.Fatalf("DiscoverFiles() error = %v", err)
	}

	want := []string{
		"bridge.schedule.yml",
		"projects/east/tower-b.schedule.yaml",
		"projects/tower-a.schedule.json",
	}
	if len(files) != len(want) {
		var got []string
		for _, f := range files {
			got = append(got, f.RelPath)
		}
		t.Fatalf("DiscoverFiles() found %v, want %v", got, want)
	}
	for i, f := range files {
		if f.RelPath != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, f.RelPath, want[i])
		}
		if !filepath.IsAbs(f.Path) && !strings.HasPrefix(f.Path, tmpDir) {
			t.Errorf("files[%d].Path = %q, want a path under the root", i, f.Path)
		}
		if f.Size == 0 {
			t.Errorf("files[%d].Size = 0", i)
		}
	}
	if files[2].Format != FormatJSON || files[0].Format != FormatYAML {
		t.Error("formats not detected")
	}
}

func TestDiscoverFiles_CustomPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"exports/a.json":         "{}",
		"exports/archive/b.json": "{}",
		"exports/c.yaml":         "x: 1\n",
	})

	fd := NewFileDiscovery(tmpDir, []string{"exports/**/*.json", "exports/*.json"}, []string{"exports/archive/**"}, false)
	files, err := fd.DiscoverFiles()
	if err != nil {
		t.Fatalf("DiscoverFiles() error = %v", err)
	}
	if len(files) != 1 || files[0].RelPath != "exports/a.json" {
		t.Errorf("DiscoverFiles() = %v, want only exports/a.json (deduplicated, archive excluded)", files)
	}
}

func TestDiscoverFiles_EmptyDirectory(t *testing.T) {
	fd := NewFileDiscovery(t.TempDir(), nil, nil, false)
	files, err := fd.DiscoverFiles()
	if err != nil {
		t.Fatalf("DiscoverFiles() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %d", len(files))
	}
}

func TestDiscoverFiles_InvalidPattern(t *testing.T) {
	fd := NewFileDiscovery(t.TempDir(), []string{"[unclosed"}, nil, false)
	if _, err := fd.DiscoverFiles(); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestMatches(t *testing.T) {
	fd := NewFileDiscovery(t.TempDir(), nil, nil, false)
	tests := []struct {
		path string
		want bool
	}{
		{"tower.schedule.json", true},
		{"site/a/tower.schedule.yml", true},
		{"tower.json", false},
		{"node_modules/x/tower.schedule.json", false},
		{"fixtures/testdata/tower.schedule.yaml", false},
	}
	for _, tt := range tests {
		if got := fd.Matches(tt.path); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDiscoverFiles_SkipsDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "odd.schedule.json"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := NewFileDiscovery(tmpDir, nil, nil, false).DiscoverFiles()
	if err != nil {
		t.Fatalf("DiscoverFiles() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("directory named like a schedule was discovered: %v", files)
	}
}

func TestDiscoverFiles_Symlinks(t *testing.T) {
	tmpDir := t.TempDir()
	outside := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"real.schedule.json": "{}"})
	writeTree(t, outside, map[string]string{"far.schedule.json": "{}"})

	if err := os.Symlink(filepath.Join(tmpDir, "real.schedule.json"), filepath.Join(tmpDir, "link.schedule.json")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "far.schedule.json"), filepath.Join(tmpDir, "escape.schedule.json")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	files, err := NewFileDiscovery(tmpDir, nil, nil, false).DiscoverFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("without following symlinks expected 1 file, got %d", len(files))
	}

	files, err = NewFileDiscovery(tmpDir, nil, nil, true).DiscoverFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("following symlinks expected 2 files (escape skipped), got %d", len(files))
	}
}

func TestValidateFilePath(t *testing.T) {
	tmpDir := t.TempDir()

	validFile := filepath.Join(tmpDir, "valid.schedule.json")
	_ = os.WriteFile(validFile, []byte(`{"activities": []}`), 0644)

	emptyFile := filepath.Join(tmpDir, "empty.schedule.yaml")
	_ = os.WriteFile(emptyFile, []byte(""), 0644)

	binaryFile := filepath.Join(tmpDir, "binary.json")
	_ = os.WriteFile(binaryFile, []byte{0x00, 0x01, 0x02, 0x03}, 0644)

	wrongExt := filepath.Join(tmpDir, "plan.xer")
	_ = os.WriteFile(wrongExt, []byte("ERMHDR"), 0644)

	symlinkFile := filepath.Join(tmpDir, "symlink.json")
	_ = os.Symlink(validFile, symlinkFile)

	dirPath := filepath.Join(tmpDir, "directory.json")
	_ = os.Mkdir(dirPath, 0755)

	tests := []struct {
		name     string
		path     string
		wantErr  bool
		errMatch string
	}{
		{"valid file", validFile, false, ""},
		{"nonexistent file", filepath.Join(tmpDir, "missing.json"), true, "file not found"},
		{"directory", dirPath, true, "path is a directory"},
		{"empty file", emptyFile, true, "file is empty"},
		{"binary file", binaryFile, true, "appears to be binary"},
		{"unsupported extension", wrongExt, true, "unsupported file type"},
		{"valid symlink", symlinkFile, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateFilePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilePath() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && tt.errMatch != "" {
				if !strings.Contains(err.Error(), tt.errMatch) {
					t.Errorf("ValidateFilePath() error = %q, want substring %q", err.Error(), tt.errMatch)
				}
			}
			if !tt.wantErr && !filepath.IsAbs(got) {
				t.Errorf("ValidateFilePath() = %q, want absolute path", got)
			}
		})
	}
}
