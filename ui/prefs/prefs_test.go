package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p := Load()
	assert.Equal(t, "", p.LastDirectory())
	assert.Equal(t, 8.0, p.AnimationFPS(8.0))
	assert.True(t, p.AnimationLoop(true))
	assert.False(t, p.AnimationLoop(false))
	assert.Empty(t, p.RecentFiles())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p := Load()
	p.SetLastDirectory("/tmp/sprites")
	p.SetAnimationFPS(12.5)
	p.SetAnimationLoop(false)
	p.AddRecentFile("/tmp/sprites/walk.tim", 8)
	require.NoError(t, p.Save())

	q := Load()
	assert.Equal(t, "/tmp/sprites", q.LastDirectory())
	assert.Equal(t, 12.5, q.AnimationFPS(8.0))
	assert.False(t, q.AnimationLoop(true))
	assert.Equal(t, []string{"/tmp/sprites/walk.tim"}, q.RecentFiles())
}

func TestRecentFilesDedupeAndCap(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p := Load()
	p.AddRecentFile("a.tim", 3)
	p.AddRecentFile("b.tim", 3)
	p.AddRecentFile("c.tim", 3)
	p.AddRecentFile("a.tim", 3)
	assert.Equal(t, []string{"a.tim", "c.tim", "b.tim"}, p.RecentFiles())

	p.AddRecentFile("d.tim", 3)
	assert.Equal(t, []string{"d.tim", "a.tim", "c.tim"}, p.RecentFiles())
}
