package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveConfigurationDuration(time.Second)
	r.ObserveWalkDuration(time.Second)
	r.ObserveLoadDuration(time.Second)
	r.IncOutcome("success")
	r.IncCacheReuse()
	r.AddProblems("warning", 3)
}

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.IncOutcome("failure")
	r.IncOutcome("failure")
	r.IncCacheReuse()
	r.AddProblems("warning", 2)
	r.AddProblems("error", 1)
	r.AddProblems("error", 0) // ignored

	assert.InDelta(t, 2, testutil.ToFloat64(r.outcomes.WithLabelValues("failure")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(r.cacheReuses), 0.001)
	assert.InDelta(t, 2, testutil.ToFloat64(r.problemCounts.WithLabelValues("warning")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(r.problemCounts.WithLabelValues("error")), 0.001)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var p *PrometheusRecorder
	p.ObserveWalkDuration(time.Second)
	p.IncOutcome("success")
	p.AddProblems("warning", 1)
}
