// Package events defines domain events that represent significant business
// occurrences. Events are immutable facts about what happened in the past.
//
// The pipeline has a single load-bearing event: a client payment that may
// affect sales commissions. It is constructed synchronously at payment-write
// time, carries a fresh unique event ID as its idempotency key, and travels
// through the durable queue to the verification worker.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dcastillo/commispipe/internal/domain/entities"
	"github.com/dcastillo/commispipe/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID // ID of the entity that raised this event
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	eventID     uuid.UUID
	eventType   string
	occurredAt  time.Time
	aggregateID uuid.UUID
}

func newBaseEvent(eventType string, aggregateID uuid.UUID) BaseEvent {
	return BaseEvent{
		eventID:     uuid.New(),
		eventType:   eventType,
		occurredAt:  time.Now(),
		aggregateID: aggregateID,
	}
}

func reconstructBaseEvent(eventID uuid.UUID, eventType string, occurredAt time.Time, aggregateID uuid.UUID) BaseEvent {
	return BaseEvent{
		eventID:     eventID,
		eventType:   eventType,
		occurredAt:  occurredAt,
		aggregateID: aggregateID,
	}
}

func (e BaseEvent) EventID() uuid.UUID {
	return e.eventID
}

func (e BaseEvent) EventType() string {
	return e.eventType
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

func (e BaseEvent) AggregateID() uuid.UUID {
	return e.aggregateID
}

// Event Types (constants for type checking)
const (
	EventTypeCommissionAffectingPayment = "payment.commission_affecting"
)

// CommissionAffectingPayment is raised when a client payment lands on one of
// the first two installments of a contract. A nil ContractID means the event
// must be dropped, never processed.
type CommissionAffectingPayment struct {
	BaseEvent
	PaymentID    uuid.UUID
	ClientID     uuid.UUID
	ContractID   *uuid.UUID
	ReceivableID uuid.UUID
	Amount       valueobjects.Money
	PaymentDate  time.Time
	Installment  entities.InstallmentType
	TriggeredBy  *uuid.UUID // actor who registered the payment; nil for system-originated payments
}

// NewCommissionAffectingPayment constructs the event with a fresh event ID.
// All fields are populated immediately; eligibility is decided afterwards by
// AffectsCommissions, never by deferring construction.
func NewCommissionAffectingPayment(
	paymentID, clientID uuid.UUID,
	contractID *uuid.UUID,
	receivableID uuid.UUID,
	amount valueobjects.Money,
	paymentDate time.Time,
	installment entities.InstallmentType,
	triggeredBy *uuid.UUID,
) *CommissionAffectingPayment {
	return &CommissionAffectingPayment{
		BaseEvent:    newBaseEvent(EventTypeCommissionAffectingPayment, paymentID),
		PaymentID:    paymentID,
		ClientID:     clientID,
		ContractID:   contractID,
		ReceivableID: receivableID,
		Amount:       amount,
		PaymentDate:  paymentDate,
		Installment:  installment,
		TriggeredBy:  triggeredBy,
	}
}

// AffectsCommissions reports whether the event may be enqueued and processed:
// the payment must belong to a contract and land on the first or second
// installment.
func (e *CommissionAffectingPayment) AffectsCommissions() bool {
	return e.ContractID != nil && e.Installment.AffectsCommissions()
}

// LedgerEntry materializes the pending ledger row for this event, embedding
// the serialized snapshot for auditing.
func (e *CommissionAffectingPayment) LedgerEntry() (*entities.LedgerEntry, error) {
	data, err := e.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event snapshot: %w", err)
	}

	return entities.NewLedgerEntry(
		e.EventID(),
		e.EventType(),
		e.PaymentID,
		e.ContractID,
		e.Installment,
		data,
		e.TriggeredBy,
	), nil
}

// commissionAffectingEnvelope is the wire form of the event, as published to
// the queue and stored in the ledger's event_data column.
type commissionAffectingEnvelope struct {
	EventID      uuid.UUID  `json:"event_id"`
	EventType    string     `json:"event_type"`
	OccurredAt   time.Time  `json:"occurred_at"`
	PaymentID    uuid.UUID  `json:"payment_id"`
	ClientID     uuid.UUID  `json:"client_id"`
	ContractID   *uuid.UUID `json:"contract_id,omitempty"`
	ReceivableID uuid.UUID  `json:"receivable_id"`
	AmountCents  int64      `json:"amount_cents"`
	Currency     string     `json:"currency"`
	PaymentDate  time.Time  `json:"payment_date"`
	Installment  string     `json:"installment_type"`
	TriggeredBy  *uuid.UUID `json:"triggered_by,omitempty"`
}

// Encode serializes the event for transport and audit storage.
func (e *CommissionAffectingPayment) Encode() ([]byte, error) {
	return json.Marshal(commissionAffectingEnvelope{
		EventID:      e.EventID(),
		EventType:    e.EventType(),
		OccurredAt:   e.OccurredAt(),
		PaymentID:    e.PaymentID,
		ClientID:     e.ClientID,
		ContractID:   e.ContractID,
		ReceivableID: e.ReceivableID,
		AmountCents:  e.Amount.Cents(),
		Currency:     e.Amount.Currency().Code(),
		PaymentDate:  e.PaymentDate,
		Installment:  string(e.Installment),
		TriggeredBy:  e.TriggeredBy,
	})
}

// DecodeCommissionAffectingPayment reconstructs an event from its wire form.
// The original event ID and timestamp are preserved so redelivery keeps the
// same idempotency key.
func DecodeCommissionAffectingPayment(data []byte) (*CommissionAffectingPayment, error) {
	var env commissionAffectingEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}

	currency, err := valueobjects.NewCurrency(env.Currency)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", env.EventID, err)
	}
	amount, err := valueobjects.NewMoneyFromCents(env.AmountCents, currency)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", env.EventID, err)
	}

	installment := entities.InstallmentType(env.Installment)
	if !installment.IsValid() {
		return nil, fmt.Errorf("event %s: unknown installment type %q", env.EventID, env.Installment)
	}

	return &CommissionAffectingPayment{
		BaseEvent:    reconstructBaseEvent(env.EventID, env.EventType, env.OccurredAt, env.PaymentID),
		PaymentID:    env.PaymentID,
		ClientID:     env.ClientID,
		ContractID:   env.ContractID,
		ReceivableID: env.ReceivableID,
		Amount:       amount,
		PaymentDate:  env.PaymentDate,
		Installment:  installment,
		TriggeredBy:  env.TriggeredBy,
	}, nil
}
