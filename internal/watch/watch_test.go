package watch

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

func startWatcher(t *testing.T, root string, debounce time.Duration) *atomic.Int32 {
	t.Helper()
	var changes atomic.Int32
	w, err := New([]string{root}, debounce, func() { changes.Add(1) })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return &changes
}

func TestDebounceCoalescesBurst(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "assets", "modid", "models", "item")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	changes := startWatcher(t, root, 100*time.Millisecond)

	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, "gear.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"parent":"item/generated"}`), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return changes.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), changes.Load(), "a burst yields one notification")
}

func TestIgnoresUnindexedFiles(t *testing.T) {
	root := t.TempDir()
	changes := startWatcher(t, root, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), changes.Load())
}

func TestWatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	changes := startWatcher(t, root, 50*time.Millisecond)

	dir := filepath.Join(root, "assets")
	require.NoError(t, os.Mkdir(dir, 0o755))
	assert.Eventually(t, func() bool { return changes.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	lang := filepath.Join(dir, "modid", "lang")
	require.NoError(t, os.MkdirAll(lang, 0o755))
	time.Sleep(150 * time.Millisecond)
	before := changes.Load()

	require.NoError(t, os.WriteFile(filepath.Join(lang, "en_us.json"), []byte(`{}`), 0o644))
	assert.Eventually(t, func() bool { return changes.Load() > before }, 2*time.Second, 10*time.Millisecond)
}

func TestNewRejectsMissingRoot(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, 0, func() {})
	assert.Error(t, err)
}
