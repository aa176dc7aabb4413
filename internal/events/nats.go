package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes invocation events to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to the NATS server and returns a publisher
// for the given subject.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if subject == "" {
		return nil, fmt.Errorf("event subject is required")
	}
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	slog.Info("NATS publisher initialized", "url", url, "subject", subject)
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// PublishInvocation sends the event as JSON.
func (p *NATSPublisher) PublishInvocation(_ context.Context, ev InvocationEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal invocation event: %w", err)
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish invocation event: %w", err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}
