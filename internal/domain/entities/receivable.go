// Package entities contains the domain entities of the commission pipeline.
package entities

import (
	"time"

	"github.com/dcastillo/commispipe/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// Receivable is an amount owed by a client against a contract, with a due
// date. A contract's installments are its receivables ordered ascending by
// due date. The contract reference is nullable: receivables migrated from
// the legacy ledger may be orphaned, and payments against them never reach
// the commission pipeline.
type Receivable struct {
	id         uuid.UUID
	contractID *uuid.UUID
	dueDate    time.Time
	amount     valueobjects.Money
	sequence   int64 // Stored relative order, tiebreak for equal due dates
}

// NewReceivable creates a receivable.
func NewReceivable(contractID *uuid.UUID, dueDate time.Time, amount valueobjects.Money) *Receivable {
	return &Receivable{
		id:         uuid.New(),
		contractID: contractID,
		dueDate:    dueDate,
		amount:     amount,
	}
}

// ReconstructReceivable reconstructs a Receivable from stored data.
func ReconstructReceivable(
	id uuid.UUID,
	contractID *uuid.UUID,
	dueDate time.Time,
	amount valueobjects.Money,
	sequence int64,
) *Receivable {
	return &Receivable{
		id:         id,
		contractID: contractID,
		dueDate:    dueDate,
		amount:     amount,
		sequence:   sequence,
	}
}

func (r *Receivable) ID() uuid.UUID {
	return r.id
}

func (r *Receivable) ContractID() *uuid.UUID {
	return r.contractID
}

func (r *Receivable) DueDate() time.Time {
	return r.dueDate
}

func (r *Receivable) Amount() valueobjects.Money {
	return r.amount
}

func (r *Receivable) Sequence() int64 {
	return r.sequence
}

// HasContract reports whether the receivable is attached to a contract.
func (r *Receivable) HasContract() bool {
	return r.contractID != nil
}
