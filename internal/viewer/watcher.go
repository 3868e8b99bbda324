package viewer

import (
	"os"
	"time"
)

// Watcher polls the data file for external modification and triggers a
// callback when a newer version appears, so an export rerun in another
// tool can prompt a reload.
type Watcher struct {
	path          string
	baseline      time.Time
	checkInterval time.Duration
	stopCh        chan struct{}
	onChange      func()
}

// NewWatcher creates a watcher over path. Returns nil if the file cannot
// be stat'ed.
func NewWatcher(path string, checkInterval time.Duration) *Watcher {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	return &Watcher{
		path:          path,
		baseline:      info.ModTime(),
		checkInterval: checkInterval,
		stopCh:        make(chan struct{}),
	}
}

// OnChange sets the callback to invoke when the file changes. The
// callback runs on a background goroutine - marshal to the event thread
// before touching state.
func (w *Watcher) OnChange(callback func()) {
	w.onChange = callback
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	w.stopCh = make(chan struct{})
	go w.watchLoop()
}

// Stop stops the watcher goroutine.
func (w *Watcher) Stop() {
	close(w.stopCh)
}

func (w *Watcher) watchLoop() {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.changed() && w.onChange != nil {
				w.onChange()
				// Only trigger once - stop watching after detection
				return
			}
		}
	}
}

func (w *Watcher) changed() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	return info.ModTime().After(w.baseline)
}

// ResetBaseline updates the baseline to the file's current mod time.
// Call this after a save or a declined reload to avoid refiring.
func (w *Watcher) ResetBaseline() {
	if info, err := os.Stat(w.path); err == nil {
		w.baseline = info.ModTime()
	}
}
