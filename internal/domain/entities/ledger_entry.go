package entities

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEntry is the durable record of one commission-affecting event's
// processing lifecycle. Exactly one row exists per event ID; the repository
// insert is idempotent so redelivered events never produce duplicates.
//
// Lifecycle:
//   - created with processed=false when the worker first accepts the event
//   - processed=true, processedAt set, error cleared on success
//   - on a retryable failure, retryCount increments and errorMessage /
//     lastRetryAt update
//   - after the final attempt the entry stays processed=false with its last
//     error preserved: a terminal, inspectable failure record
type LedgerEntry struct {
	eventID      uuid.UUID
	eventType    string
	paymentID    uuid.UUID
	contractID   *uuid.UUID
	installment  InstallmentType
	eventData    []byte // Serialized event snapshot for auditing
	triggeredBy  *uuid.UUID
	processed    bool
	processedAt  *time.Time
	errorMessage string
	retryCount   int
	lastRetryAt  *time.Time
	createdAt    time.Time
}

// NewLedgerEntry creates a pending ledger entry for an event.
func NewLedgerEntry(
	eventID uuid.UUID,
	eventType string,
	paymentID uuid.UUID,
	contractID *uuid.UUID,
	installment InstallmentType,
	eventData []byte,
	triggeredBy *uuid.UUID,
) *LedgerEntry {
	return &LedgerEntry{
		eventID:     eventID,
		eventType:   eventType,
		paymentID:   paymentID,
		contractID:  contractID,
		installment: installment,
		eventData:   eventData,
		triggeredBy: triggeredBy,
		createdAt:   time.Now(),
	}
}

// ReconstructLedgerEntry reconstructs a LedgerEntry from stored data.
func ReconstructLedgerEntry(
	eventID uuid.UUID,
	eventType string,
	paymentID uuid.UUID,
	contractID *uuid.UUID,
	installment InstallmentType,
	eventData []byte,
	triggeredBy *uuid.UUID,
	processed bool,
	processedAt *time.Time,
	errorMessage string,
	retryCount int,
	lastRetryAt *time.Time,
	createdAt time.Time,
) *LedgerEntry {
	return &LedgerEntry{
		eventID:      eventID,
		eventType:    eventType,
		paymentID:    paymentID,
		contractID:   contractID,
		installment:  installment,
		eventData:    eventData,
		triggeredBy:  triggeredBy,
		processed:    processed,
		processedAt:  processedAt,
		errorMessage: errorMessage,
		retryCount:   retryCount,
		lastRetryAt:  lastRetryAt,
		createdAt:    createdAt,
	}
}

// Getters

func (e *LedgerEntry) EventID() uuid.UUID {
	return e.eventID
}

func (e *LedgerEntry) EventType() string {
	return e.eventType
}

func (e *LedgerEntry) PaymentID() uuid.UUID {
	return e.paymentID
}

func (e *LedgerEntry) ContractID() *uuid.UUID {
	return e.contractID
}

func (e *LedgerEntry) Installment() InstallmentType {
	return e.installment
}

func (e *LedgerEntry) EventData() []byte {
	return e.eventData
}

func (e *LedgerEntry) TriggeredBy() *uuid.UUID {
	return e.triggeredBy
}

func (e *LedgerEntry) Processed() bool {
	return e.processed
}

func (e *LedgerEntry) ProcessedAt() *time.Time {
	return e.processedAt
}

func (e *LedgerEntry) ErrorMessage() string {
	return e.errorMessage
}

func (e *LedgerEntry) RetryCount() int {
	return e.retryCount
}

func (e *LedgerEntry) LastRetryAt() *time.Time {
	return e.lastRetryAt
}

func (e *LedgerEntry) CreatedAt() time.Time {
	return e.createdAt
}

// State transitions

// MarkProcessed records successful processing and clears any error left
// by earlier attempts.
func (e *LedgerEntry) MarkProcessed() {
	now := time.Now()
	e.processed = true
	e.processedAt = &now
	e.errorMessage = ""
}

// RecordFailure records a failed attempt. Non-final failures increment the
// retry count; the final failure preserves the count and leaves the entry
// permanently unprocessed.
func (e *LedgerEntry) RecordFailure(message string, final bool) {
	now := time.Now()
	e.errorMessage = message
	e.lastRetryAt = &now
	if !final {
		e.retryCount++
	}
}

// IsFailed reports whether the entry carries an error and was never
// successfully processed.
func (e *LedgerEntry) IsFailed() bool {
	return !e.processed && e.errorMessage != ""
}
