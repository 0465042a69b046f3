// Package dtos - data transfer objects for the pipeline and scheme APIs.
package dtos

import "time"

// ============================================
// Commands (Write operations)
// ============================================

// RegisterPaymentCommand reports an observed client payment to the pipeline.
// The pipeline classifies the installment, builds the event and enqueues it
// when it affects commissions.
type RegisterPaymentCommand struct {
	PaymentID    string `json:"payment_id" validate:"required,uuid"`
	ClientID     string `json:"client_id" validate:"required,uuid"`
	ReceivableID string `json:"receivable_id" validate:"required,uuid"`
	Amount       string `json:"amount" validate:"required"`
	Currency     string `json:"currency" validate:"required,oneof=PEN USD EUR"`
	PaymentDate  string `json:"payment_date" validate:"required"` // YYYY-MM-DD
	TriggeredBy  string `json:"triggered_by,omitempty" validate:"omitempty,uuid"`
}

// ============================================
// Queries (Read operations)
// ============================================

// GetLedgerEntryQuery asks for one ledger entry by its event ID.
type GetLedgerEntryQuery struct {
	EventID string `json:"event_id" validate:"required,uuid"`
}

// ListLedgerQuery filters the event ledger for auditing.
type ListLedgerQuery struct {
	ContractID *string `json:"contract_id,omitempty" validate:"omitempty,uuid"`
	PaymentID  *string `json:"payment_id,omitempty" validate:"omitempty,uuid"`
	Processed  *bool   `json:"processed,omitempty"`
	Failed     *bool   `json:"failed,omitempty"`
	Offset     int     `json:"offset" validate:"min=0"`
	Limit      int     `json:"limit" validate:"min=1,max=100"`
}

// ============================================
// Response DTOs
// ============================================

// EventEmissionDTO reports what the pipeline did with an observed payment.
type EventEmissionDTO struct {
	EventID     string `json:"event_id,omitempty"`
	Installment string `json:"installment_type"`
	Enqueued    bool   `json:"enqueued"`
	Reason      string `json:"reason,omitempty"` // set when the event was dropped
}

// LedgerEntryDTO is the API representation of one ledger row.
type LedgerEntryDTO struct {
	EventID      string     `json:"event_id"`
	EventType    string     `json:"event_type"`
	PaymentID    string     `json:"payment_id"`
	ContractID   *string    `json:"contract_id,omitempty"`
	Installment  string     `json:"installment_type"`
	TriggeredBy  *string    `json:"triggered_by,omitempty"`
	Processed    bool       `json:"processed"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	RetryCount   int        `json:"retry_count"`
	LastRetryAt  *time.Time `json:"last_retry_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// LedgerListDTO is the paginated ledger listing.
type LedgerListDTO struct {
	Entries []LedgerEntryDTO `json:"entries"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
}
