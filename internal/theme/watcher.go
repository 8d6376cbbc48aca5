// internal/theme/watcher.go
package theme

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/plume-editor/plume/internal/event"
	"github.com/plume-editor/plume/internal/logger"
)

// Watcher live-reloads the active theme when its file changes on disk,
// dispatching an event so the UI repaints with the new styles.
type Watcher struct {
	path    string
	events  *event.Manager
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher watches a theme file. The file does not have to exist yet; the
// parent directory is watched so a first save also triggers a load.
func NewWatcher(path string, events *event.Manager) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating theme watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching theme directory: %w", err)
	}

	w := &Watcher{path: path, events: events, watcher: fsw, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("theme watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	loaded, err := LoadThemeFromFile(w.path)
	if err != nil {
		// A half-written file during save can fail to parse; keep the
		// current theme and wait for the next write.
		logger.Warnf("theme reload failed: %v", err)
		return
	}
	SetCurrentTheme(loaded)
	w.events.Dispatch(event.TypeThemeChanged, event.ThemeChangedData{Name: loaded.Name})
}

// Close stops the watcher goroutine.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
