package profiles

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher pushes external edits of the profiles file (another process,
// a synced dotfile) into a callback, supplementing the host-driven
// UpdateTriggers call named in spec §6. Grounded on the fsnotify usage
// in hazyhaar-GoClode's internal/core package (same retrieval pack).
type Watcher struct {
	fs     *fsnotify.Watcher
	path   string
	logger *log.Logger
	stop   chan struct{}
}

// NewWatcher starts watching the directory containing path and calls
// onChange (debounced to one call per 200ms burst of fs events) whenever
// the profiles file is written. Callers must call Close when done.
func NewWatcher(path string, logger *log.Logger, onChange func()) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, err
	}

	w := &Watcher{fs: fs, path: path, logger: logger, stop: make(chan struct{})}
	go w.run(onChange)
	return w, nil
}

func (w *Watcher) run(onChange func()) {
	var pending *time.Timer
	for {
		select {
		case <-w.stop:
			if pending != nil {
				pending.Stop()
			}
			return
		case evt, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if evt.Name != w.path {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(200*time.Millisecond, onChange)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Printf("profiles: watch error: %v", err)
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stop)
	return w.fs.Close()
}
