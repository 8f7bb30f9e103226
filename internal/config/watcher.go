package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"mcpdock/pkg/logging"
)

// debounceInterval coalesces editor write bursts into a single reload.
const debounceInterval = 250 * time.Millisecond

// Watcher reloads the settings file when it changes on disk and invokes
// the registered callback with the fresh settings.
type Watcher struct {
	path     string
	onChange func(Settings)
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for the settings file at path. The watch is
// placed on the parent directory so atomic rename-into-place saves are
// still observed.
func NewWatcher(path string, onChange func(Settings)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watching config directory: %w", err)
	}
	return &Watcher{
		path:     path,
		onChange: onChange,
		watcher:  fsWatcher,
	}, nil
}

// Run processes file events until the context is cancelled. It blocks, so
// callers normally run it in its own goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceInterval, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			settings, err := Load(w.path)
			if err != nil {
				logging.Warn("Config", "Reload of %s failed, keeping previous settings: %v", w.path, err)
				continue
			}
			w.onChange(settings)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Config", "Config watcher error: %v", err)
		}
	}
}
