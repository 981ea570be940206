package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dotcommander/schedlint/internal/baseline"
	"github.com/dotcommander/schedlint/internal/config"
	"github.com/dotcommander/schedlint/internal/output"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanSchedule = `{
	"project_id": "clean",
	"data_date": "2024-01-01",
	"activities": [
		{"id": "S", "type": "start_milestone"},
		{"id": "A", "duration": 10, "total_float": 5, "planned_start": "2024-01-02", "planned_finish": "2024-01-12"},
		{"id": "F", "type": "finish_milestone"}
	],
	"relationships": [
		{"predecessor": "S", "successor": "A"},
		{"predecessor": "A", "successor": "F"}
	]
}`

const dirtySchedule = `{
	"project_id": "dirty",
	"activities": [
		{"id": "T1", "duration": 5},
		{"id": "T2", "duration": 5},
		{"id": "T3", "duration": 5},
		{"id": "T4", "duration": 5},
		{"id": "T5", "duration": 5}
	],
	"relationships": []
}`

// setupProject writes files into a temp dir, makes it the working directory
// and resets global command state.
func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))

	viper.Reset()
	rootPath, createBaseline, maxRegression = dir, false, -1
	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
		viper.Reset()
		rootPath, createBaseline, maxRegression = "", false, -1
	})
	return dir
}

func readJSONReport(t *testing.T, path string) output.JSONReport {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rep output.JSONReport
	require.NoError(t, json.Unmarshal(data, &rep))
	return rep
}

func TestRunAssess_Discovery(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"site/clean.schedule.json": cleanSchedule,
		"site/dirty.schedule.json": dirtySchedule,
		"notes.json":               `{}`,
	})
	out := filepath.Join(dir, "report.json")
	viper.Set("format", "json")
	viper.Set("output", out)

	require.NoError(t, runAssess(context.Background(), nil))

	rep := readJSONReport(t, out)
	require.Len(t, rep.Reports, 2)
	assert.Equal(t, "site/clean.schedule.json", rep.Reports[0].Source)
	assert.Equal(t, "clean", rep.Reports[0].ProjectID)
	assert.Equal(t, 100, rep.Reports[0].Score)
	assert.Equal(t, "dirty", rep.Reports[1].ProjectID)
	assert.Less(t, rep.Reports[1].Score, 100)
	assert.Empty(t, rep.Failures)
}

func TestRunAssess_FailBelow(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"clean.schedule.json": cleanSchedule,
		"dirty.schedule.json": dirtySchedule,
	})
	viper.Set("format", "json")
	viper.Set("output", filepath.Join(dir, "report.json"))
	viper.Set("failBelow", 99)

	err := runAssess(context.Background(), nil)
	assert.ErrorIs(t, err, errBelowThreshold)
}

func TestRunAssess_ExplicitFilesAndLoadFailures(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"clean.schedule.json":  cleanSchedule,
		"broken.schedule.json": `{"activities": [`,
	})
	out := filepath.Join(dir, "report.json")
	viper.Set("format", "json")
	viper.Set("output", out)

	err := runAssess(context.Background(), []string{"clean.schedule.json", "broken.schedule.json"})
	assert.ErrorIs(t, err, errBelowThreshold, "load failures fail the run")

	rep := readJSONReport(t, out)
	require.Len(t, rep.Reports, 1)
	assert.Equal(t, "clean.schedule.json", rep.Reports[0].Source)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "broken.schedule.json", rep.Failures[0].File)
}

func TestRunAssess_MissingFile(t *testing.T) {
	setupProject(t, nil)
	err := runAssess(context.Background(), []string{"nope.schedule.json"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, errBelowThreshold)
}

func TestRunAssess_Baseline(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"clean.schedule.json": cleanSchedule,
		"dirty.schedule.json": dirtySchedule,
	})
	out := filepath.Join(dir, "report.json")
	viper.Set("format", "json")
	viper.Set("output", out)

	createBaseline = true
	require.NoError(t, runAssess(context.Background(), nil))
	path := filepath.Join(dir, baseline.DefaultFile)
	b, err := baseline.Load(path)
	require.NoError(t, err)
	require.Len(t, b.Projects, 2)

	createBaseline = false
	viper.Set("baseline", path)
	require.NoError(t, runAssess(context.Background(), nil))

	rep := readJSONReport(t, out)
	require.Len(t, rep.Deltas, 2)
	for _, d := range rep.Deltas {
		assert.Equal(t, baseline.TrendUnchanged, d.Trend)
		assert.False(t, d.CatalogChanged)
	}
}

func TestRunAssess_FailOnRegression(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"tower.schedule.json": cleanSchedule,
	})
	viper.Set("format", "json")
	viper.Set("output", filepath.Join(dir, "report.json"))

	createBaseline = true
	require.NoError(t, runAssess(context.Background(), nil))
	createBaseline = false
	viper.Set("baseline", filepath.Join(dir, baseline.DefaultFile))

	degraded := strings.Replace(dirtySchedule, `"project_id": "dirty"`, `"project_id": "clean"`, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tower.schedule.json"), []byte(degraded), 0o644))

	require.NoError(t, runAssess(context.Background(), nil), "regressions only fail when asked")

	maxRegression = 0
	assert.ErrorIs(t, runAssess(context.Background(), nil), errBelowThreshold)

	maxRegression = 100
	assert.NoError(t, runAssess(context.Background(), nil))
}

func TestRunAssess_CustomCatalog(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"clean.schedule.json": cleanSchedule,
		"catalog.yaml":        "custom_blend_weight: 0.5\n",
	})
	out := filepath.Join(dir, "report.json")
	viper.Set("format", "json")
	viper.Set("output", out)
	viper.Set("catalog", filepath.Join(dir, "catalog.yaml"))

	require.NoError(t, runAssess(context.Background(), nil))
	rep := readJSONReport(t, out)
	require.Len(t, rep.Reports, 1)
	assert.InDelta(t, 0.5, rep.Reports[0].BlendWeight, 1e-9)
}

func TestRunRules(t *testing.T) {
	setupProject(t, nil)
	sizeActivities, sizeRelationships = 200, 300
	t.Cleanup(func() { sizeActivities, sizeRelationships = 100, 100 })

	var buf bytes.Buffer
	require.NoError(t, runRules(&buf))
	out := buf.String()

	assert.Contains(t, out, "Thresholds for 200 activities, 300 relationships")
	assert.Contains(t, out, "missing_logic")
	assert.Contains(t, out, "5% of activities (min 1)")
	assert.Contains(t, out, "CUSTOM (blend 20%)")
	assert.Contains(t, out, "long_lags")
	assert.Contains(t, out, "ceiling=10")
}

func TestRunSummary(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"clean.schedule.json": cleanSchedule,
		"dirty.schedule.json": dirtySchedule,
	})
	out := filepath.Join(dir, "digest.json")
	viper.Set("format", "json")
	viper.Set("output", out)

	require.NoError(t, runSummary(context.Background(), nil))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var got output.JSONDigest
	require.NoError(t, json.Unmarshal(data, &got))
	require.NotNil(t, got.Digest)
	assert.Equal(t, 2, got.Digest.Projects)
	require.NotEmpty(t, got.Digest.Lowest)
	assert.Equal(t, "dirty", got.Digest.Lowest[0].ProjectID)
	require.NotEmpty(t, got.Digest.MostViolated)
}

func TestWatchTarget(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"a/one.schedule.json": cleanSchedule,
		"b/two.schedule.json": cleanSchedule,
	})
	cfg := &config.Config{Root: dir}

	root, match, err := watchTarget(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
	assert.True(t, match(filepath.Join(dir, "a", "one.schedule.json")))
	assert.False(t, match(filepath.Join(dir, "a", "notes.txt")))

	root, match, err = watchTarget(cfg, []string{"a/one.schedule.json", "b/two.schedule.json"})
	require.NoError(t, err)
	realDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, []string{dir, realDir}, root)
	assert.True(t, match(filepath.Join(root, "b", "two.schedule.json")))
	assert.False(t, match(filepath.Join(root, "b", "other.schedule.json")))

	_, _, err = watchTarget(cfg, []string{"missing.schedule.json"})
	assert.Error(t, err)
}

func TestCommonDir(t *testing.T) {
	sep := string(filepath.Separator)
	a := sep + filepath.Join("x", "y", "z")
	b := sep + filepath.Join("x", "y", "w")
	assert.Equal(t, sep+filepath.Join("x", "y"), commonDir(a, b))
	assert.Equal(t, a, commonDir("", a))
	assert.Equal(t, sep+"x", commonDir(sep+"x", a))
	assert.Equal(t, sep+"x", commonDir(a, sep+filepath.Join("x", "yy", "q")), "sibling with shared name prefix")
}

func TestWatchedCatalog(t *testing.T) {
	dir := t.TempDir()
	inside := filepath.Join(dir, "rules", "catalog.yaml")

	assert.Empty(t, watchedCatalog(&config.Config{}, dir))
	assert.Equal(t, inside, watchedCatalog(&config.Config{Catalog: inside}, dir))
	assert.Empty(t, watchedCatalog(&config.Config{Catalog: filepath.Join(filepath.Dir(dir), "elsewhere.yaml")}, dir))
}
