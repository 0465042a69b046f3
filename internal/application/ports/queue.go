// Package ports - queue and verification contracts for the async pipeline.
package ports

import (
	"context"

	"github.com/dcastillo/commispipe/internal/domain/events"
	"github.com/google/uuid"
)

// EventQueue publishes commission-affecting events to the durable queue.
// Delivery is at-least-once; consumers key their work on the event ID.
type EventQueue interface {
	// Enqueue publishes the event. Returns only after the broker has
	// acknowledged persistence.
	Enqueue(ctx context.Context, event *events.CommissionAffectingPayment) error
}

// Attempt describes where a delivery sits in the retry schedule.
type Attempt struct {
	// Number is 1-based: 1 is the first delivery, MaxAttempts the last.
	Number int
	// Final is true when no further redelivery will happen after a failure.
	Final bool
}

// EventProcessor handles one delivery of a commission-affecting event.
// Implemented by the verification use case; driven by the queue consumer.
type EventProcessor interface {
	// Process performs the verification work for the event. A returned
	// error signals the consumer to schedule a retry, unless attempt.Final,
	// in which case the failure has already been recorded as terminal.
	Process(ctx context.Context, event *events.CommissionAffectingPayment, attempt Attempt) error
}

// VerificationService checks whether a client's payments are genuine before
// a commission flagged for verification may count them.
type VerificationService interface {
	// VerifyClientPayments runs the verification for one commission in the
	// context of the given contract and payment. It must respect ctx
	// cancellation: the worker bounds each attempt with a deadline.
	VerifyClientPayments(ctx context.Context, commissionID, contractID, paymentID uuid.UUID) error
}

// DedupCache is a best-effort fast path for skipping already processed
// events before touching the database. The ledger remains the source of
// truth; cache misses and cache failures only cost an extra DB lookup.
type DedupCache interface {
	// MarkProcessed records the event as processed. Errors are ignorable.
	MarkProcessed(ctx context.Context, eventID uuid.UUID) error

	// IsProcessed reports whether the event is known to be processed.
	// False negatives are fine, false positives are not.
	IsProcessed(ctx context.Context, eventID uuid.UUID) (bool, error)
}
