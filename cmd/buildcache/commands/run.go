package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.home.luguber.info/inful/buildcache/internal/cache"
	"git.home.luguber.info/inful/buildcache/internal/config"
	"git.home.luguber.info/inful/buildcache/internal/events"
	"git.home.luguber.info/inful/buildcache/internal/history"
	"git.home.luguber.info/inful/buildcache/internal/plan"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	Manifest       string `short:"m" help:"Build manifest path (overrides config)"`
	NoCache        bool   `help:"Bypass the instant execution cache and always configure"`
	FailOnProblems *bool  `help:"Fail the build when caching problems are found" negatable:""`
	MaxProblems    *int   `help:"Maximum number of problems before the walk aborts"`
}

func (r *RunCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	manifest := cfg.Build.Manifest
	if r.Manifest != "" {
		manifest = r.Manifest
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := cache.PlanSourceFunc(func(context.Context) (*plan.Graph, error) {
		return plan.Load(manifest)
	})

	if r.NoCache || !cfg.CacheEnabled() {
		slog.Info("Instant execution cache disabled, configuring task graph", "manifest", manifest)
		g, err := source.Configure(ctx)
		if err != nil {
			return err
		}
		slog.Info("Task graph configured", "tasks", g.Size())
		return nil
	}

	orch, cleanup, err := buildOrchestrator(cfg, r.FailOnProblems, r.MaxProblems)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := orch.Run(ctx, source)
	if err != nil {
		return err
	}
	slog.Info("Task graph ready",
		"tasks", res.Graph.Size(),
		"reused", res.Reused,
		"outcome", res.Outcome.Kind.String(),
		"problems", res.Problems.TotalCount())
	return nil
}

// buildOrchestrator assembles the orchestrator and its optional
// collaborators from configuration. The returned cleanup closes them.
func buildOrchestrator(cfg *config.Config, failOverride *bool, maxOverride *int) (*cache.Orchestrator, func(), error) {
	opts := cache.Options{
		Policy:     cfg.Policy(failOverride, maxOverride),
		CacheDir:   cfg.Cache.Directory,
		ReportDir:  cfg.Report.Directory,
		Console:    os.Stdout,
		ErrConsole: os.Stderr,
		Logger:     slog.Default(),
	}

	var closers []func()

	if cfg.History.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.History.Path), 0o750); err != nil {
			return nil, nil, fmt.Errorf("create history directory: %w", err)
		}
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, nil, err
		}
		opts.History = store
		closers = append(closers, func() { _ = store.Close() })
	}

	if cfg.Events.Enabled {
		pub, err := events.NewNATSPublisher(cfg.Events.URL, cfg.Events.Subject)
		if err != nil {
			// Event publication is best-effort; a missing broker must
			// not fail the build.
			slog.Warn("Event publisher unavailable", "error", err)
		} else {
			opts.Publisher = pub
			closers = append(closers, pub.Close)
		}
	}

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	return cache.NewOrchestrator(opts), cleanup, nil
}
