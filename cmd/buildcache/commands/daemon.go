package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/buildcache/internal/cache"
	"git.home.luguber.info/inful/buildcache/internal/history"
	"git.home.luguber.info/inful/buildcache/internal/logfields"
	"git.home.luguber.info/inful/buildcache/internal/maintenance"
	"git.home.luguber.info/inful/buildcache/internal/metrics"
	"git.home.luguber.info/inful/buildcache/internal/plan"
)

// DaemonCmd implements the 'daemon' command: periodic cache-warming
// runs, report and history pruning, and the Prometheus endpoint when
// enabled. Warm runs record into the registry the endpoint serves.
type DaemonCmd struct {
	PruneInterval time.Duration `default:"1h" help:"How often to prune expired reports"`
	WarmInterval  time.Duration `default:"15m" help:"How often to run the cache against the manifest (0 disables)"`
}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hist *history.Store
	if cfg.History.Enabled {
		hist, err = history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer hist.Close()
	}

	var recorder metrics.Recorder
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		srv := &http.Server{
			Addr:         cfg.Metrics.Listen,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}
		go func() {
			slog.Info("Metrics endpoint listening", "addr", cfg.Metrics.Listen)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	retention := time.Duration(cfg.Report.RetentionDays) * 24 * time.Hour
	var historyPruner maintenance.HistoryPruner
	if hist != nil {
		historyPruner = hist
	}
	pruner := maintenance.NewPruner(cfg.Report.Directory, retention, historyPruner, slog.Default())
	_, err = scheduler.NewJob(
		gocron.DurationJob(d.PruneInterval),
		gocron.NewTask(func() {
			if _, err := pruner.Run(ctx); err != nil {
				slog.Error("Maintenance run failed", logfields.Error(err))
			}
		}),
		gocron.WithName("prune-reports"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("schedule pruning job: %w", err)
	}

	if d.WarmInterval > 0 {
		opts := cache.Options{
			Policy:     cfg.Policy(nil, nil),
			CacheDir:   cfg.Cache.Directory,
			ReportDir:  cfg.Report.Directory,
			Console:    os.Stdout,
			ErrConsole: os.Stderr,
			Logger:     slog.Default(),
			Recorder:   recorder,
		}
		if hist != nil {
			opts.History = hist
		}
		orch := cache.NewOrchestrator(opts)
		source := cache.PlanSourceFunc(func(context.Context) (*plan.Graph, error) {
			return plan.Load(cfg.Build.Manifest)
		})
		_, err = scheduler.NewJob(
			gocron.DurationJob(d.WarmInterval),
			gocron.NewTask(func() {
				res, err := orch.Run(ctx, source)
				if err != nil {
					slog.Warn("Cache warm run failed", logfields.Error(err))
					return
				}
				slog.Debug("Cache warm run finished",
					logfields.InvocationID(res.InvocationID),
					logfields.Outcome(res.Outcome.Kind.String()),
					slog.Bool("reused", res.Reused))
			}),
			gocron.WithName("warm-cache"),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			return fmt.Errorf("schedule warm job: %w", err)
		}
	}

	scheduler.Start()
	defer func() { _ = scheduler.Shutdown() }()

	slog.Info("Maintenance daemon running",
		"prune_interval", d.PruneInterval.String(),
		"warm_interval", d.WarmInterval.String(),
		"retention_days", cfg.Report.RetentionDays)
	<-ctx.Done()
	slog.Info("Shutting down")
	return nil
}
