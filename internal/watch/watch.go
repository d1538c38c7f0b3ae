// Package watch observes the capture directory and reports sessions whose
// logs have gone quiet.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher fires a callback once per session when its event log has been
// quiet for the settle period. A nil Watcher means fsnotify was unavailable;
// callers fall back to polling.
type Watcher struct {
	fsw    *fsnotify.Watcher
	settle time.Duration
}

// New watches captureDir. Returns nil if the directory does not exist or
// watcher creation fails.
func New(captureDir string, settle time.Duration) *Watcher {
	if _, err := os.Stat(captureDir); err != nil {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil
	}
	if err := fsw.Add(captureDir); err != nil {
		_ = fsw.Close()
		return nil
	}
	return &Watcher{fsw: fsw, settle: settle}
}

// Run blocks, calling onSettled with a session id each time that session's
// log stops changing for the settle period. Returns when ctx is cancelled or
// the underlying watcher dies.
func (w *Watcher) Run(ctx context.Context, onSettled func(sessionID string)) {
	defer w.fsw.Close()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			id := sessionIDFromPath(ev.Name)
			if id == "" {
				continue
			}
			pending[id] = true
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.settle)

		case <-timer.C:
			for id := range pending {
				onSettled(id)
			}
			pending = make(map[string]bool)

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// sessionIDFromPath maps a changed file back to a session id, ignoring the
// links log and non-session files.
func sessionIDFromPath(path string) string {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "_") || !strings.HasSuffix(base, ".jsonl") {
		return ""
	}
	return strings.TrimSuffix(base, ".jsonl")
}
