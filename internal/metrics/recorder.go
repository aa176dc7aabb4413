package metrics

import "time"

// Recorder defines observability hooks for cache runs. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be
// safe on the NoopRecorder so injection stays optional.
type Recorder interface {
	ObserveConfigurationDuration(d time.Duration)
	ObserveWalkDuration(d time.Duration)
	ObserveLoadDuration(d time.Duration)
	IncOutcome(outcome string) // success|success_with_warnings|failure|too_many_problems
	IncCacheReuse()
	AddProblems(kind string, n int) // kind: warning|error
}

// NoopRecorder is a Recorder that does nothing (default when metrics
// are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveConfigurationDuration(time.Duration) {}
func (NoopRecorder) ObserveWalkDuration(time.Duration)          {}
func (NoopRecorder) ObserveLoadDuration(time.Duration)          {}
func (NoopRecorder) IncOutcome(string)                          {}
func (NoopRecorder) IncCacheReuse()                             {}
func (NoopRecorder) AddProblems(string, int)                    {}
