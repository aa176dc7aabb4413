// Package events publishes cache run outcomes to interested external
// systems. Publishing is best-effort and never fails a run.
package events

import (
	"context"
	"time"
)

// InvocationEvent describes one completed cache run.
type InvocationEvent struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Outcome        string    `json:"outcome"`
	Reused         bool      `json:"reused"`
	TotalProblems  int       `json:"total_problems"`
	UniqueProblems int       `json:"unique_problems"`
	Truncated      bool      `json:"truncated"`
	ReportFile     string    `json:"report_file,omitempty"`
	DurationMillis int64     `json:"duration_ms"`
}

// Publisher delivers invocation events.
type Publisher interface {
	PublishInvocation(ctx context.Context, ev InvocationEvent) error
	Close()
}

// NoopPublisher is the default when no event transport is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishInvocation(context.Context, InvocationEvent) error { return nil }
func (NoopPublisher) Close()                                                   {}
