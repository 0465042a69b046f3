// Package nats carries commission-affecting payment events over a JetStream
// stream between the API process and the verification worker.
package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/dcastillo/commispipe/internal/application/ports"
	"github.com/dcastillo/commispipe/internal/domain/events"
)

// Connect dials the NATS server with automatic reconnection. Extra
// nats.Option values (e.g. disconnect handlers) can be appended.
func Connect(url string, opts ...nats.Option) (*nats.Conn, error) {
	defaults := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return nc, nil
}

// EnsureStream creates or updates the event stream.
func EnsureStream(ctx context.Context, js jetstream.JetStream, cfg Config) (jetstream.Stream, error) {
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.Subject},
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("ensuring stream %s: %w", cfg.Stream, err)
	}
	return stream, nil
}

// Publisher publishes commission-affecting payment events to JetStream.
type Publisher struct {
	js      jetstream.JetStream
	subject string
}

var _ ports.EventQueue = (*Publisher)(nil)

// NewPublisher wraps an established connection. The stream must already
// exist; call EnsureStream during startup.
func NewPublisher(nc *nats.Conn, cfg Config) (*Publisher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}
	return &Publisher{js: js, subject: cfg.Subject}, nil
}

// Enqueue publishes the event. The event ID doubles as the JetStream message
// ID so the broker drops duplicate publishes within its dedup window.
func (p *Publisher) Enqueue(ctx context.Context, event *events.CommissionAffectingPayment) error {
	data, err := event.Encode()
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", event.EventID(), err)
	}
	_, err = p.js.Publish(ctx, p.subject, data, jetstream.WithMsgID(event.EventID().String()))
	if err != nil {
		return fmt.Errorf("publishing event %s: %w", event.EventID(), err)
	}
	return nil
}
