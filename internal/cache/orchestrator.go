package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/buildcache/internal/events"
	"git.home.luguber.info/inful/buildcache/internal/failure"
	"git.home.luguber.info/inful/buildcache/internal/history"
	"git.home.luguber.info/inful/buildcache/internal/logfields"
	"git.home.luguber.info/inful/buildcache/internal/metrics"
	"git.home.luguber.info/inful/buildcache/internal/plan"
	"git.home.luguber.info/inful/buildcache/internal/policy"
	"git.home.luguber.info/inful/buildcache/internal/problems"
	"git.home.luguber.info/inful/buildcache/internal/report"
	"git.home.luguber.info/inful/buildcache/internal/serialize"
)

// PlanSource runs the expensive configuration phase on a cache miss.
type PlanSource interface {
	Configure(ctx context.Context) (*plan.Graph, error)
}

// PlanSourceFunc adapts a function to PlanSource.
type PlanSourceFunc func(ctx context.Context) (*plan.Graph, error)

func (f PlanSourceFunc) Configure(ctx context.Context) (*plan.Graph, error) { return f(ctx) }

// HistoryRecorder is the subset of the history store the orchestrator
// needs.
type HistoryRecorder interface {
	RecordInvocation(ctx context.Context, inv history.Invocation) error
}

// Options wires the orchestrator's collaborators. Zero-value fields
// fall back to sensible defaults.
type Options struct {
	Policy    policy.Policy
	CacheDir  string
	ReportDir string
	Console   io.Writer
	// ErrConsole receives the problem summary of failing runs; the
	// terminal error itself carries only the header and causes.
	ErrConsole io.Writer
	Logger     *slog.Logger
	Recorder   metrics.Recorder
	Publisher  events.Publisher
	History    HistoryRecorder
	Registry   *serialize.Registry
}

// RunResult summarizes one orchestrator run.
type RunResult struct {
	InvocationID string
	Graph        *plan.Graph
	Outcome      policy.Outcome
	Reused       bool
	Truncated    bool
	ReportFile   string
	Problems     *problems.Set
}

// Orchestrator drives one cache run per build invocation: fingerprint
// check, load or configure-and-walk, policy decision, reporting, and
// the terminal success or failure.
type Orchestrator struct {
	policy     policy.Policy
	states     *StateStore
	prints     *FingerprintStore
	reports    *report.Writer
	console    io.Writer
	errConsole io.Writer
	logger     *slog.Logger
	recorder   metrics.Recorder
	publisher  events.Publisher
	history    HistoryRecorder
	registry   *serialize.Registry
}

// NewOrchestrator builds an orchestrator from options.
func NewOrchestrator(opts Options) *Orchestrator {
	o := &Orchestrator{
		policy:     opts.Policy,
		states:     NewStateStore(opts.CacheDir),
		prints:     NewFingerprintStore(opts.CacheDir),
		reports:    report.NewWriter(opts.ReportDir),
		console:    opts.Console,
		errConsole: opts.ErrConsole,
		logger:     opts.Logger,
		recorder:   opts.Recorder,
		publisher:  opts.Publisher,
		history:    opts.History,
		registry:   opts.Registry,
	}
	if o.console == nil {
		o.console = os.Stdout
	}
	if o.errConsole == nil {
		o.errConsole = os.Stderr
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.recorder == nil {
		o.recorder = metrics.NoopRecorder{}
	}
	if o.publisher == nil {
		o.publisher = events.NoopPublisher{}
	}
	if o.registry == nil {
		o.registry = serialize.DefaultRegistry()
	}
	return o
}

// Run executes the cache state machine. On a hit it loads the cached
// plan; on a miss it configures, walks, reports and decides. The
// returned error is the terminal failure mandated by the policy
// outcome, or an infrastructure error.
func (o *Orchestrator) Run(ctx context.Context, source PlanSource) (*RunResult, error) {
	res := &RunResult{InvocationID: uuid.NewString()}
	start := time.Now()

	if o.prints.Present() {
		if ok := o.tryLoad(ctx, res, start); ok {
			return res, nil
		}
		// Unusable blob behind a valid-looking fingerprint: drop the
		// markers and reconfigure from scratch.
		if err := o.prints.Invalidate(); err != nil {
			return nil, err
		}
	}

	return o.configureAndWalk(ctx, res, source, start)
}

// tryLoad attempts the cache-hit path. It only commits to it (console
// message included) once the persisted state proved readable.
func (o *Orchestrator) tryLoad(ctx context.Context, res *RunResult, start time.Time) bool {
	loadStart := time.Now()
	st, err := o.states.Read()
	if err == nil {
		var g *plan.Graph
		if g, err = serialize.Decode(st); err == nil {
			fmt.Fprintln(o.console, "Reusing instant execution cache")
			o.recorder.ObserveLoadDuration(time.Since(loadStart))
			o.recorder.IncCacheReuse()
			res.Graph = g
			res.Reused = true
			res.Outcome = policy.Outcome{Kind: policy.Success}
			res.Problems = problems.NewSet()
			o.finish(ctx, res, start)
			return true
		}
	}
	o.logger.Warn("Discarding unusable instant execution cache", logfields.Error(err))
	return false
}

func (o *Orchestrator) configureAndWalk(ctx context.Context, res *RunResult, source PlanSource, start time.Time) (*RunResult, error) {
	fmt.Fprintln(o.console, "Calculating task graph as no instant execution cache is available")

	confStart := time.Now()
	g, err := source.Configure(ctx)
	if err != nil {
		return nil, fmt.Errorf("configure build plan: %w", err)
	}
	o.recorder.ObserveConfigurationDuration(time.Since(confStart))
	res.Graph = g

	collector := problems.NewCollector(o.policy.MaxProblems)
	walker := serialize.NewWalker(o.registry, collector)
	walkStart := time.Now()
	st, err := walker.Walk(ctx, g)
	if err != nil {
		// Aborted invocation: nothing was committed, so the cache
		// directory stays indistinguishable from "no cache exists".
		return nil, err
	}
	o.recorder.ObserveWalkDuration(time.Since(walkStart))

	set := collector.Problems()
	res.Problems = set
	res.Truncated = collector.Stopped()
	res.Outcome = policy.Decide(set, res.Truncated, o.policy)

	if set.TotalCount() > 0 {
		reportFile, rerr := o.reports.Write(res.InvocationID, set, res.Truncated)
		if rerr != nil {
			o.logger.Error("Failed to write problem report", logfields.Error(rerr))
		} else {
			res.ReportFile = reportFile
		}
		// Passing and warned runs summarize on stdout; failing runs on
		// the error stream.
		out := o.console
		if !res.Outcome.Succeeded() {
			out = o.errConsole
		}
		report.RenderConsole(out, set)
	}

	if res.Outcome.Succeeded() && !set.HasErrors() {
		// The state blob is durably flushed before the fingerprint so
		// an abort between the two never yields a valid-looking cache.
		hash, werr := o.states.Write(st)
		if werr == nil {
			werr = o.prints.Write(hash)
		}
		if werr != nil {
			return nil, fmt.Errorf("persist instant execution state: %w", werr)
		}
	} else if res.Outcome.Succeeded() {
		o.logger.Warn("Instant execution state not cached because serialization errors occurred",
			logfields.Problems(set.TotalCount()))
	}

	o.finish(ctx, res, start)

	if terminal := failure.New(res.Outcome, set, res.ReportFile); terminal != nil {
		return res, terminal
	}
	return res, nil
}

// finish emits metrics, history and events for a completed run; none
// of these may fail the run.
func (o *Orchestrator) finish(ctx context.Context, res *RunResult, start time.Time) {
	duration := time.Since(start)
	o.recorder.IncOutcome(res.Outcome.Kind.String())
	warnings, errors := 0, 0
	for _, p := range res.Problems.All() {
		if p.Kind == problems.KindError {
			errors++
		} else {
			warnings++
		}
	}
	o.recorder.AddProblems("warning", warnings)
	o.recorder.AddProblems("error", errors)

	if o.history != nil {
		inv := history.Invocation{
			ID:             res.InvocationID,
			CreatedAt:      time.Now(),
			Outcome:        res.Outcome.Kind.String(),
			Reused:         res.Reused,
			TotalProblems:  res.Problems.TotalCount(),
			UniqueProblems: res.Problems.UniqueCount(),
			Truncated:      res.Truncated,
			ReportFile:     res.ReportFile,
			Duration:       duration,
		}
		if err := o.history.RecordInvocation(ctx, inv); err != nil {
			o.logger.Warn("Failed to record invocation history",
				logfields.InvocationID(res.InvocationID), logfields.Error(err))
		}
	}

	ev := events.InvocationEvent{
		ID:             res.InvocationID,
		Timestamp:      time.Now(),
		Outcome:        res.Outcome.Kind.String(),
		Reused:         res.Reused,
		TotalProblems:  res.Problems.TotalCount(),
		UniqueProblems: res.Problems.UniqueCount(),
		Truncated:      res.Truncated,
		ReportFile:     res.ReportFile,
		DurationMillis: duration.Milliseconds(),
	}
	if err := o.publisher.PublishInvocation(ctx, ev); err != nil {
		o.logger.Warn("Failed to publish invocation event",
			logfields.InvocationID(res.InvocationID), logfields.Error(err))
	}
}
