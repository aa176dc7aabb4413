package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/buildcache/internal/cache"
	"git.home.luguber.info/inful/buildcache/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Paths []string `arg:"" optional:"" help:"Paths to watch (defaults to the build manifest)"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	paths := w.Paths
	if len(paths) == 0 {
		paths = []string{cfg.Build.Manifest}
	}

	watcher, err := watch.New(paths, cache.NewFingerprintStore(cfg.Cache.Directory), slog.Default())
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Watching build inputs", "paths", paths)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
