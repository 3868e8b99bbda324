package viewer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDetectsChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spots.csv")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	w := NewWatcher(path, 10*time.Millisecond)
	require.NotNil(t, w)

	changed := make(chan struct{})
	w.OnChange(func() { close(changed) })
	w.Start()
	defer w.Stop()

	// Force a newer mtime; some filesystems are coarse-grained.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not fire")
	}
}

func TestWatcherResetBaseline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spots.csv")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	w := NewWatcher(path, time.Hour)
	require.NotNil(t, w)

	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))
	assert.True(t, w.changed())

	w.ResetBaseline()
	assert.False(t, w.changed())
}

func TestWatcherMissingFile(t *testing.T) {
	assert.Nil(t, NewWatcher(filepath.Join(t.TempDir(), "nope.csv"), time.Second))
}
