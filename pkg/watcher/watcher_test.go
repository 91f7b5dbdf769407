package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newWatcher(t *testing.T, debounce time.Duration) *FileWatcher {
	t.Helper()
	fw, err := NewFileWatcher(debounce)
	require.NoError(t, err)
	t.Cleanup(func() { fw.Close() })
	return fw
}

func TestWatchDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "scene.zy")
	writeFile(t, script, "(+ 1 2)")

	fw := newWatcher(t, 100*time.Millisecond)
	var calls atomic.Int32
	changed := make(chan string, 10)
	require.NoError(t, fw.Watch([]string{script}, func(path string) {
		calls.Add(1)
		changed <- path
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	for i := 0; i < 5; i++ {
		writeFile(t, script, "(+ 1 2)\n")
	}

	select {
	case path := <-changed:
		assert.Equal(t, script, path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "scene.zy")
	writeFile(t, script, "")

	fw := newWatcher(t, 20*time.Millisecond)
	var calls atomic.Int32
	require.NoError(t, fw.Watch([]string{script}, func(string) { calls.Add(1) }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	writeFile(t, filepath.Join(dir, "other.txt"), "x")
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestFilesAndRemoveAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.zy")
	b := filepath.Join(dir, "b.zy")
	writeFile(t, a, "")
	writeFile(t, b, "")

	fw := newWatcher(t, 0)
	assert.Equal(t, DefaultDebounce, fw.debounce)
	require.NoError(t, fw.Watch([]string{b, a}, func(string) {}))
	assert.Equal(t, []string{a, b}, fw.Files())
	assert.Equal(t, 2, fw.dirs[dir])

	require.NoError(t, fw.RemoveAll())
	assert.Empty(t, fw.Files())
}

func TestRunStopsOnCancel(t *testing.T) {
	fw := newWatcher(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fw.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	fw := newWatcher(t, 0)
	err := fw.Watch([]string{filepath.Join(t.TempDir(), "nope", "scene.zy")}, func(string) {})
	assert.Error(t, err)
}
