package roster

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"fc-faces/internal/observability"
)

const defaultReloadDebounce = 500 * time.Millisecond

// Watcher reloads a Library when its catalog or shortlist file changes.
// Directories are watched rather than files so editors that replace a file
// by rename are still picked up.
type Watcher struct {
	library  *Library
	logger   *observability.Logger
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
}

func NewWatcher(library *Library, logger *observability.Logger, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = defaultReloadDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}

	files := make(map[string]struct{})
	dirs := make(map[string]struct{})
	for _, p := range library.Paths() {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	return &Watcher{
		library:  library,
		logger:   logger,
		watcher:  fw,
		files:    files,
		debounce: debounce,
	}, nil
}

// Run blocks until ctx is done, then releases the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			timer.Reset(w.debounce)
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("roster_watch_error", map[string]any{"error": err.Error()})

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}

func (w *Watcher) reload() {
	if err := w.library.Reload(); err != nil {
		w.logger.Error("roster_reload_failed", map[string]any{"error": err.Error()})
		return
	}
	w.logger.Info("roster_reloaded", map[string]any{
		"profiles": len(w.library.Catalog()),
	})
}
