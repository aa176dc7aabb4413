package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/buildcache/internal/cache"
)

// InvalidateCmd implements the 'invalidate' command.
type InvalidateCmd struct{}

func (i *InvalidateCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	store := cache.NewFingerprintStore(cfg.Cache.Directory)
	if !store.Present() {
		slog.Info("No instant execution cache fingerprints present", "directory", cfg.Cache.Directory)
		return nil
	}
	if err := store.Invalidate(); err != nil {
		return err
	}
	slog.Info("Instant execution cache invalidated", "directory", cfg.Cache.Directory)
	return nil
}
