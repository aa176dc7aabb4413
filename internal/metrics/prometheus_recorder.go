package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	confDuration  prom.Histogram
	walkDuration  prom.Histogram
	loadDuration  prom.Histogram
	outcomes      *prom.CounterVec
	cacheReuses   prom.Counter
	problemCounts *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics
// (idempotent per recorder instance).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.confDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "buildcache",
			Name:      "configuration_duration_seconds",
			Help:      "Duration of the task graph configuration phase",
			Buckets:   prom.DefBuckets,
		})
		pr.walkDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "buildcache",
			Name:      "walk_duration_seconds",
			Help:      "Duration of the object graph serialization walk",
			Buckets:   prom.DefBuckets,
		})
		pr.loadDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "buildcache",
			Name:      "load_duration_seconds",
			Help:      "Duration of loading cached state on a cache hit",
			Buckets:   prom.DefBuckets,
		})
		pr.outcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "buildcache",
			Name:      "run_outcomes_total",
			Help:      "Cache run outcomes by terminal status",
		}, []string{"outcome"})
		pr.cacheReuses = prom.NewCounter(prom.CounterOpts{
			Namespace: "buildcache",
			Name:      "cache_reuses_total",
			Help:      "Number of runs that reused cached state",
		})
		pr.problemCounts = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "buildcache",
			Name:      "problems_total",
			Help:      "Problems collected during serialization, by kind",
		}, []string{"kind"})
		reg.MustRegister(pr.confDuration, pr.walkDuration, pr.loadDuration, pr.outcomes, pr.cacheReuses, pr.problemCounts)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveConfigurationDuration(d time.Duration) {
	if p == nil || p.confDuration == nil {
		return
	}
	p.confDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveWalkDuration(d time.Duration) {
	if p == nil || p.walkDuration == nil {
		return
	}
	p.walkDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveLoadDuration(d time.Duration) {
	if p == nil || p.loadDuration == nil {
		return
	}
	p.loadDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncOutcome(outcome string) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncCacheReuse() {
	if p == nil || p.cacheReuses == nil {
		return
	}
	p.cacheReuses.Inc()
}

func (p *PrometheusRecorder) AddProblems(kind string, n int) {
	if p == nil || p.problemCounts == nil || n <= 0 {
		return
	}
	p.problemCounts.WithLabelValues(kind).Add(float64(n))
}
