// Package maintenance removes expired report directories and history
// rows. The daemon runs it periodically.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/buildcache/internal/logfields"
)

// HistoryPruner deletes history rows older than the cutoff.
type HistoryPruner interface {
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// Pruner removes expired per-invocation report directories and,
// optionally, matching history rows.
type Pruner struct {
	reportDir string
	retention time.Duration
	history   HistoryPruner
	logger    *slog.Logger
}

// NewPruner creates a pruner for the given report directory. history
// may be nil when the history database is disabled.
func NewPruner(reportDir string, retention time.Duration, history HistoryPruner, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{reportDir: reportDir, retention: retention, history: history, logger: logger}
}

// Run prunes once and returns how many report directories were removed.
func (p *Pruner) Run(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-p.retention)

	removed, err := p.pruneReports(cutoff)
	if err != nil {
		return removed, err
	}
	if p.history != nil {
		rows, err := p.history.Prune(ctx, cutoff)
		if err != nil {
			return removed, fmt.Errorf("prune history: %w", err)
		}
		if rows > 0 {
			p.logger.Debug("Pruned invocation history", "rows", rows)
		}
	}
	return removed, nil
}

func (p *Pruner) pruneReports(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(p.reportDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read report directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(p.reportDir, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			p.logger.Warn("Failed to remove expired report", logfields.Path(dir), logfields.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		p.logger.Info("Pruned expired reports", "removed", removed, "directory", p.reportDir)
	}
	return removed, nil
}
