package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()
	w, err := NewWatcher(Config{
		Dir:      dir,
		Debounce: 20 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	return w
}

func waitForChange(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case change, ok := <-w.Changes():
		require.True(t, ok, "change channel closed")
		return change
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func TestWatcherDetectsNewDocument(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	path := filepath.Join(dir, "network.owl")
	require.NoError(t, os.WriteFile(path, []byte("<rdf/>"), 0o644))

	change := waitForChange(t, w)
	assert.Equal(t, "network.owl", change.Path)
	assert.Equal(t, OpCreate, change.Op)
}

func TestWatcherIgnoresUnmatchedFiles(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "network.owl"), []byte("<rdf/>"), 0o644))

	change := waitForChange(t, w)
	assert.Equal(t, "network.owl", change.Path)
}

func TestWatcherSkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	path := filepath.Join(dir, "network.owl")
	require.NoError(t, os.WriteFile(path, []byte("<rdf/>"), 0o644))
	first := waitForChange(t, w)
	assert.Equal(t, OpCreate, first.Op)

	// Rewriting identical bytes is not a change.
	require.NoError(t, os.WriteFile(path, []byte("<rdf/>"), 0o644))
	// A real edit afterwards is.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("<rdf>changed</rdf>"), 0o644))

	second := waitForChange(t, w)
	assert.Equal(t, "network.owl", second.Path)
	assert.Equal(t, OpModify, second.Op)
}

func TestWatcherDetectsDelete(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	path := filepath.Join(dir, "network.owl")
	require.NoError(t, os.WriteFile(path, []byte("<rdf/>"), 0o644))
	_ = waitForChange(t, w)

	require.NoError(t, os.Remove(path))
	change := waitForChange(t, w)
	assert.Equal(t, OpDelete, change.Op)
}

func TestIncludedPatterns(t *testing.T) {
	w, err := NewWatcher(Config{Dir: t.TempDir(), Include: []string{"models/**/*.ttl"}}, nil)
	require.NoError(t, err)
	defer w.Stop()

	assert.True(t, w.Included(filepath.Join("models", "net", "core.ttl")))
	assert.False(t, w.Included("core.ttl"))
	assert.False(t, w.Included(filepath.Join("models", "core.owl")))
}
