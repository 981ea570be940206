package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWatch(t *testing.T, root string, match func(string) bool) (<-chan []string, context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan []string, 8)
	done := make(chan error, 1)

	go func() {
		done <- Watch(ctx, root, Options{Debounce: 50 * time.Millisecond, Match: match}, func(changed []string) {
			changes <- changed
		})
	}()
	// Let the watcher register before writing.
	time.Sleep(100 * time.Millisecond)
	return changes, cancel, done
}

func TestWatchDebouncesChanges(t *testing.T) {
	root := t.TempDir()
	isSchedule := func(p string) bool { return strings.HasSuffix(p, ".schedule.json") }
	changes, cancel, done := runWatch(t, root, isSchedule)
	defer cancel()

	target := filepath.Join(root, "a.schedule.json")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte(`{"project_id":"a"}`), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	select {
	case got := <-changes:
		assert.Equal(t, []string{target}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case got := <-changes:
		t.Fatalf("unexpected second batch: %v", got)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop on cancel")
	}
}

func TestWatchNewSubdirectory(t *testing.T) {
	root := t.TempDir()
	changes, cancel, _ := runWatch(t, root, nil)
	defer cancel()

	sub := filepath.Join(root, "phase2")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(sub, "b.schedule.json")
	require.NoError(t, os.WriteFile(target, []byte(`{}`), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-changes:
			if assert.NotEmpty(t, got) && contains(got, target) {
				return
			}
		case <-deadline:
			t.Fatal("change in new subdirectory not reported")
		}
	}
}

func TestWatchMissingRoot(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{}, func([]string) {})
	assert.Error(t, err)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
