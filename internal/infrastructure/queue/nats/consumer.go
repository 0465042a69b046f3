package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/dcastillo/commispipe/internal/application/ports"
	"github.com/dcastillo/commispipe/internal/domain/events"
)

// Consumer pulls commission-affecting payment events off the stream and
// hands them to the processor. Delivery attempts, backoff between attempts,
// and the per-attempt deadline all come from Config.
type Consumer struct {
	stream    jetstream.Stream
	cfg       Config
	processor ports.EventProcessor
	logger    *slog.Logger

	consume jetstream.ConsumeContext
}

func NewConsumer(stream jetstream.Stream, cfg Config, processor ports.EventProcessor, logger *slog.Logger) *Consumer {
	return &Consumer{
		stream:    stream,
		cfg:       cfg,
		processor: processor,
		logger:    logger,
	}
}

// Start creates the durable consumer and begins dispatching messages.
// Returns once the subscription is registered; processing continues in the
// background until Stop is called.
func (c *Consumer) Start(ctx context.Context) error {
	cons, err := c.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       c.cfg.Durable,
		FilterSubject: c.cfg.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    c.cfg.MaxDeliver,
		BackOff:       c.cfg.BackOff,
	})
	if err != nil {
		return fmt.Errorf("ensuring consumer %s: %w", c.cfg.Durable, err)
	}

	consume, err := cons.Consume(c.handle)
	if err != nil {
		return fmt.Errorf("starting consume loop: %w", err)
	}
	c.consume = consume
	return nil
}

// Stop drains the subscription and waits for in-flight handlers to finish.
func (c *Consumer) Stop() {
	if c.consume != nil {
		c.consume.Drain()
		<-c.consume.Closed()
	}
}

func (c *Consumer) handle(msg jetstream.Msg) {
	meta, err := msg.Metadata()
	if err != nil {
		c.logger.Error("message without JetStream metadata", "error", err)
		_ = msg.Term()
		return
	}
	attempt := ports.Attempt{
		Number: int(meta.NumDelivered),
		Final:  int(meta.NumDelivered) >= c.cfg.MaxDeliver,
	}

	event, err := events.DecodeCommissionAffectingPayment(msg.Data())
	if err != nil {
		// Malformed payloads never become valid; retrying is pointless.
		c.logger.Error("terminating undecodable event",
			"error", err,
			"subject", msg.Subject(),
			"delivered", meta.NumDelivered)
		_ = msg.Term()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.AttemptTimeout)
	defer cancel()

	if err := c.processor.Process(ctx, event, attempt); err != nil {
		if attempt.Final {
			c.logger.Error("event failed on final attempt",
				"event_id", event.EventID(),
				"error", err)
			_ = msg.Term()
			return
		}
		c.logger.Warn("event attempt failed, scheduling redelivery",
			"event_id", event.EventID(),
			"attempt", attempt.Number,
			"error", err)
		_ = msg.NakWithDelay(c.redeliveryDelay(attempt.Number))
		return
	}

	if err := msg.Ack(); err != nil {
		c.logger.Error("acking processed event",
			"event_id", event.EventID(),
			"error", err)
	}
}

// redeliveryDelay picks the backoff for the attempt that just failed.
// Attempt numbers are 1-based; the last configured delay applies to any
// attempts beyond the schedule.
func (c *Consumer) redeliveryDelay(attempt int) time.Duration {
	if len(c.cfg.BackOff) == 0 {
		return 0
	}
	idx := attempt - 1
	if idx >= len(c.cfg.BackOff) {
		idx = len(c.cfg.BackOff) - 1
	}
	return c.cfg.BackOff[idx]
}
