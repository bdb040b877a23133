/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: watcher_test.go
Description: Tests for watch mode: classification of new and rewritten files, recursive
directories, skips and the running summary.
*/

package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kleascm/enro/pkg/classify"
	"github.com/kleascm/enro/pkg/config"
	"github.com/kleascm/enro/pkg/scanner"
	"github.com/kleascm/enro/pkg/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 5 * time.Second
	poll    = 20 * time.Millisecond
)

func startWatcher(t *testing.T, cfg *config.ScanConfig) *watch.Watcher {
	t.Helper()
	require.NoError(t, cfg.Validate())

	w, err := watch.New(cfg, watch.WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	return w
}

func watchConfig(dir string) *config.ScanConfig {
	cfg := config.Default()
	cfg.Paths = []string{dir}
	return cfg
}

func TestWatchClassifiesNewFiles(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, watchConfig(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.zip"), append([]byte("PK\x03\x04"), make([]byte, 64)...), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(strings.Repeat("watch me work\n", 10)), 0644))

	assert.Eventually(t, func() bool { return w.Summary().Files == 2 }, waitFor, poll)
	s := w.Summary()
	assert.Equal(t, 1, s.Count(classify.KindArchive))
	assert.Equal(t, 1, s.Count(classify.KindPlainText))
	assert.Equal(t, int64(2), w.Stats().Files)
}

func TestWatchRewriteIsClassifiedAgain(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, watchConfig(dir))
	path := filepath.Join(dir, "doc.txt")

	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("first\n", 10)), 0644))
	assert.Eventually(t, func() bool { return w.Summary().Files >= 1 }, waitFor, poll)
	before := w.Summary().Files

	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("second\n", 10)), 0644))
	assert.Eventually(t, func() bool { return w.Summary().Files > before }, waitFor, poll)
}

func TestWatchRecursiveNewDirectory(t *testing.T) {
	dir := t.TempDir()
	cfg := watchConfig(dir)
	cfg.Recursive = true
	w := startWatcher(t, cfg)

	sub := filepath.Join(dir, "sub", "deeper")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "pack.gz"), []byte{0x1F, 0x8B, 0x08, 0x00, 0x01}, 0644))

	assert.Eventually(t, func() bool { return w.Summary().Count(classify.KindArchive) == 1 }, waitFor, poll)
}

func TestWatchSkips(t *testing.T) {
	dir := t.TempDir()
	cfg := watchConfig(dir)
	cfg.MinSize = 10
	cfg.Exclude = []string{"*.log"}
	w := startWatcher(t, cfg)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.dat"), []byte{1, 2}, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "debug.log"), []byte(strings.Repeat("log\n", 10)), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kept.txt"), []byte(strings.Repeat("kept\n", 10)), 0644))

	assert.Eventually(t, func() bool {
		st := w.Stats()
		return st.Files == 1 && st.Skipped == 2
	}, waitFor, poll)
	assert.Equal(t, 1, w.Summary().Count(classify.KindPlainText))
}

func TestWatchSingleFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("initial contents\n"), 0644))

	w := startWatcher(t, watchConfig(target))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("ignored\n"), 0644))
	require.NoError(t, os.WriteFile(target, []byte("updated contents\n"), 0644))

	assert.Eventually(t, func() bool { return w.Summary().Files == 1 }, waitFor, poll)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, w.Summary().Files, "sibling files are not classified")
}

func TestWatchMissingPath(t *testing.T) {
	cfg := watchConfig(filepath.Join(t.TempDir(), "gone"))
	require.NoError(t, cfg.Validate())
	_, err := watch.New(cfg)
	assert.ErrorIs(t, err, scanner.ErrPathNotFound)
}

func TestWatchRejectsBuckets(t *testing.T) {
	cfg := watchConfig("mem://bucket")
	require.NoError(t, cfg.Validate())
	_, err := watch.New(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestWatchRunClosesWatcherWhenStartFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vanishing")
	require.NoError(t, os.Mkdir(dir, 0755))
	cfg := watchConfig(dir)
	require.NoError(t, cfg.Validate())

	w, err := watch.New(cfg)
	require.NoError(t, err)

	require.NoError(t, os.Remove(dir))
	assert.Error(t, w.Run(context.Background()))

	// the directory is back, so only a closed watcher can still refuse it
	require.NoError(t, os.Mkdir(dir, 0755))
	assert.ErrorIs(t, w.Start(), fsnotify.ErrClosed)
}
