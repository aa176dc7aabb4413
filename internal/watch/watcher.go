// Package watch invalidates the instant execution cache when watched
// build inputs change on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/buildcache/internal/logfields"
)

// Invalidator drops the cache fingerprints; the next run reconfigures.
type Invalidator interface {
	Invalidate() error
}

// Watcher observes build input paths and invalidates the cache on any
// change.
type Watcher struct {
	fsw    *fsnotify.Watcher
	inv    Invalidator
	logger *slog.Logger
}

// New creates a watcher over the given paths.
func New(paths []string, inv Invalidator, logger *slog.Logger) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths to watch")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", p, err)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{fsw: fsw, inv: inv, logger: logger}, nil
}

// Run processes events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Info("Build input changed, invalidating instant execution cache",
				logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			if err := w.inv.Invalidate(); err != nil {
				w.logger.Error("Failed to invalidate cache", logfields.Error(err))
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", logfields.Error(err))
		}
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }
