// Package watch re-runs an action whenever a call-log file changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 250 * time.Millisecond

// Action is invoked once at start and again after every settled change.
type Action func(ctx context.Context) error

// Watcher monitors a single file. The parent directory is watched so that
// editors which save by rename are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	action   Action
}

// New returns a Watcher for path. A debounce of zero uses DefaultDebounce.
func New(path string, debounce time.Duration, action Action) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: filepath.Clean(path), debounce: debounce, action: action}
}

// Run blocks until ctx is cancelled. Action errors are logged and do not stop
// the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w.fire(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(abs, evt) {
				continue
			}
			slog.Debug("file event", "path", evt.Name, "op", evt.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "err", err)
		case <-timer.C:
			w.fire(ctx)
		}
	}
}

func (w *Watcher) relevant(abs string, evt fsnotify.Event) bool {
	name, err := filepath.Abs(evt.Name)
	if err != nil || name != abs {
		return false
	}
	return evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.action(ctx); err != nil {
		slog.Warn("watch action failed", "path", w.path, "err", err)
	}
}
