// Package ports defines the interfaces the application layer depends on.
// Implementations live in the infrastructure layer.
//
// Repositories accept a context that may carry an open database transaction;
// when it does, the operation joins that transaction instead of using the
// pool directly.
package ports

import (
	"context"
	"time"

	"github.com/dcastillo/commispipe/internal/domain/entities"
	"github.com/google/uuid"
)

// ReceivableRepository stores contract receivables (scheduled installments).
type ReceivableRepository interface {
	// Save persists a receivable (create or update by ID).
	Save(ctx context.Context, receivable *entities.Receivable) error

	// FindByID loads a receivable. Returns ErrEntityNotFound when missing.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Receivable, error)

	// FindByContractID returns all receivables of a contract ordered by due
	// date, ties broken by insertion order. This ordering is the basis of
	// installment classification.
	FindByContractID(ctx context.Context, contractID uuid.UUID) ([]*entities.Receivable, error)
}

// CommissionRepository stores sales commissions.
type CommissionRepository interface {
	// Save persists a commission (create or update by ID).
	Save(ctx context.Context, commission *entities.Commission) error

	// FindByID loads a commission. Returns ErrEntityNotFound when missing.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Commission, error)

	// FindRequiringVerification returns the contract's commissions that are
	// flagged for client payment verification and not yet fully verified.
	FindRequiringVerification(ctx context.Context, contractID uuid.UUID) ([]*entities.Commission, error)
}

// SchemeRepository stores commission schemes.
type SchemeRepository interface {
	// Save persists a scheme (create or update by ID).
	Save(ctx context.Context, scheme *entities.CommissionScheme) error

	// FindByID loads a scheme. Returns ErrEntityNotFound when missing.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.CommissionScheme, error)

	// FindOverlapping returns schemes whose effective interval covers the
	// given boundary date and that started strictly before it, excluding the
	// scheme with excludeID (uuid.Nil excludes nothing). The query must run
	// inside the caller's transaction: overlap detection and truncation have
	// to see a consistent snapshot.
	FindOverlapping(ctx context.Context, from time.Time, excludeID uuid.UUID) ([]*entities.CommissionScheme, error)

	// List returns schemes ordered by effective start date with pagination.
	List(ctx context.Context, offset, limit int) ([]*entities.CommissionScheme, error)
}

// LedgerRepository stores the commission event ledger.
type LedgerRepository interface {
	// Record inserts the entry if no row with its event ID exists yet.
	// Re-recording an already stored event is a silent no-op; the stored
	// row always wins. This is the idempotency anchor for redeliveries.
	Record(ctx context.Context, entry *entities.LedgerEntry) error

	// FindByEventID loads an entry. Returns ErrEntityNotFound when missing.
	FindByEventID(ctx context.Context, eventID uuid.UUID) (*entities.LedgerEntry, error)

	// MarkProcessed flips the entry to processed, stamps the time and
	// clears any error left by earlier attempts.
	MarkProcessed(ctx context.Context, eventID uuid.UUID) error

	// RecordError stores the attempt's error. Non-final errors increment
	// the retry count; a final error leaves the count untouched and the
	// entry permanently unprocessed.
	RecordError(ctx context.Context, eventID uuid.UUID, message string, final bool) error

	// List returns entries matching the filter, newest first.
	List(ctx context.Context, filter LedgerFilter, offset, limit int) ([]*entities.LedgerEntry, error)
}

// LedgerFilter narrows ledger queries for the audit endpoint.
type LedgerFilter struct {
	ContractID *uuid.UUID
	PaymentID  *uuid.UUID
	Processed  *bool
	Failed     *bool // entries with an error and processed=false
}
