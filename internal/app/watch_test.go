package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportWatcherDetectsModification(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edit.png")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	w, err := NewExportWatcher(path, 5*time.Millisecond)
	require.NoError(t, err)

	changed := make(chan string, 1)
	w.OnChange(func(p string) {
		select {
		case changed <- p:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	// Bump the mtime well past the baseline; writing alone can land in
	// the same filesystem timestamp granule.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	select {
	case p := <-changed:
		assert.Equal(t, path, p)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never reported the modification")
	}
}

func TestExportWatcherMissingFile(t *testing.T) {
	_, err := NewExportWatcher(filepath.Join(t.TempDir(), "absent.png"), time.Second)
	assert.Error(t, err)
}

func TestExportWatcherResetBaseline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edit.png")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	w, err := NewExportWatcher(path, time.Hour)
	require.NoError(t, err)

	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))
	assert.True(t, w.checkForUpdate())

	// Recorded: the same state does not fire again.
	assert.False(t, w.checkForUpdate())

	later := future.Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))
	w.ResetBaseline()
	assert.False(t, w.checkForUpdate())
}
