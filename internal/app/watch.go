package app

import (
	"os"
	"time"
)

// ExportWatcher polls an exported index PNG for saves from an external
// editor and invokes a callback when the file's modification time moves
// forward. Polling keeps the behavior identical across platforms.
type ExportWatcher struct {
	path     string
	baseline time.Time
	interval time.Duration
	stopCh   chan struct{}
	onChange func(path string)
}

// NewExportWatcher creates a watcher for the given file. The current
// modification time becomes the baseline; only later saves trigger the
// callback.
func NewExportWatcher(path string, interval time.Duration) (*ExportWatcher, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &ExportWatcher{
		path:     path,
		baseline: info.ModTime(),
		interval: interval,
	}, nil
}

// OnChange sets the callback to invoke when the file changes. The
// callback is called from a background goroutine - use appropriate
// synchronization if updating UI.
func (w *ExportWatcher) OnChange(callback func(path string)) {
	w.onChange = callback
}

// Start begins watching in a background goroutine.
func (w *ExportWatcher) Start() {
	w.stopCh = make(chan struct{})
	go w.watchLoop()
}

// Stop stops the watcher goroutine.
func (w *ExportWatcher) Stop() {
	close(w.stopCh)
}

// Path returns the watched file.
func (w *ExportWatcher) Path() string {
	return w.path
}

// ResetBaseline advances the baseline to the file's current state, so a
// change the application itself made is not reported back.
func (w *ExportWatcher) ResetBaseline() {
	if info, err := os.Stat(w.path); err == nil {
		w.baseline = info.ModTime()
	}
}

func (w *ExportWatcher) watchLoop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.checkForUpdate() && w.onChange != nil {
				w.onChange(w.path)
			}
		}
	}
}

// checkForUpdate reports and records a modification newer than the
// baseline. A vanished file (editor save-via-rename in progress) is not
// a change.
func (w *ExportWatcher) checkForUpdate() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	if !info.ModTime().After(w.baseline) {
		return false
	}
	w.baseline = info.ModTime()
	return true
}
