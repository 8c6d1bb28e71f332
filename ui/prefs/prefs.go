// Package prefs persists viewer settings between sessions as a small
// JSON file under the user config directory.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const prefsFile = "preferences.json"

// Prefs holds the persisted viewer settings. Zero values mean "unset";
// readers supply their own fallbacks.
type Prefs struct {
	mu   sync.RWMutex
	path string

	data settings
}

type settings struct {
	LastDirectory string   `json:"lastDirectory,omitempty"`
	AnimationFPS  float64  `json:"animationFPS,omitempty"`
	AnimationLoop *bool    `json:"animationLoop,omitempty"`
	RecentFiles   []string `json:"recentFiles,omitempty"`
}

// Load reads preferences from ~/.config/timview/preferences.json.
// A missing or unreadable file yields defaults.
func Load() *Prefs {
	p := &Prefs{}

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	p.path = filepath.Join(configDir, "timview", prefsFile)

	raw, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(raw, &p.data)
	return p
}

// Save writes preferences to disk, creating the config directory if
// needed.
func (p *Prefs) Save() error {
	p.mu.RLock()
	raw, err := json.MarshalIndent(&p.data, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, raw, 0o644)
}

// LastDirectory returns the last directory a file dialog used, or "".
func (p *Prefs) LastDirectory() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.LastDirectory
}

// SetLastDirectory records the directory for the next file dialog.
func (p *Prefs) SetLastDirectory(dir string) {
	p.mu.Lock()
	p.data.LastDirectory = dir
	p.mu.Unlock()
}

// AnimationFPS returns the saved playback rate, or fallback if unset.
func (p *Prefs) AnimationFPS(fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.data.AnimationFPS <= 0 {
		return fallback
	}
	return p.data.AnimationFPS
}

// SetAnimationFPS records the playback rate.
func (p *Prefs) SetAnimationFPS(fps float64) {
	p.mu.Lock()
	p.data.AnimationFPS = fps
	p.mu.Unlock()
}

// AnimationLoop returns the saved loop flag, or fallback if unset.
func (p *Prefs) AnimationLoop(fallback bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.data.AnimationLoop == nil {
		return fallback
	}
	return *p.data.AnimationLoop
}

// SetAnimationLoop records the loop flag.
func (p *Prefs) SetAnimationLoop(loop bool) {
	p.mu.Lock()
	v := loop
	p.data.AnimationLoop = &v
	p.mu.Unlock()
}

// RecentFiles returns the most recently opened files, newest first.
func (p *Prefs) RecentFiles() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.data.RecentFiles))
	copy(out, p.data.RecentFiles)
	return out
}

// AddRecentFile moves path to the front of the recent list, keeping at
// most max entries.
func (p *Prefs) AddRecentFile(path string, max int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	recent := []string{path}
	for _, r := range p.data.RecentFiles {
		if r != path && len(recent) < max {
			recent = append(recent, r)
		}
	}
	p.data.RecentFiles = recent
}
