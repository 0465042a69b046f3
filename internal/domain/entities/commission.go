package entities

import (
	"github.com/dcastillo/commispipe/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// VerificationStatus represents how far a commission's client-payment
// verification has progressed.
type VerificationStatus string

const (
	VerificationStatusPending           VerificationStatus = "PENDING"
	VerificationStatusPartiallyVerified VerificationStatus = "PARTIALLY_VERIFIED"
	VerificationStatusFullyVerified     VerificationStatus = "FULLY_VERIFIED"
)

// IsValid checks if the verification status is valid.
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationStatusPending, VerificationStatusPartiallyVerified, VerificationStatusFullyVerified:
		return true
	default:
		return false
	}
}

// Commission is a sales commission owed to a salesperson for a contract.
// The commission computation itself is owned by an external service; the
// pipeline only reads the two attributes that decide whether a payment
// should trigger re-verification.
type Commission struct {
	id                                uuid.UUID
	contractID                        uuid.UUID
	salespersonID                     uuid.UUID
	amount                            valueobjects.Money
	requiresClientPaymentVerification bool
	verificationStatus                VerificationStatus
}

// ReconstructCommission reconstructs a Commission from stored data.
func ReconstructCommission(
	id, contractID, salespersonID uuid.UUID,
	amount valueobjects.Money,
	requiresVerification bool,
	status VerificationStatus,
) *Commission {
	return &Commission{
		id:                                id,
		contractID:                        contractID,
		salespersonID:                     salespersonID,
		amount:                            amount,
		requiresClientPaymentVerification: requiresVerification,
		verificationStatus:                status,
	}
}

func (c *Commission) ID() uuid.UUID {
	return c.id
}

func (c *Commission) ContractID() uuid.UUID {
	return c.contractID
}

func (c *Commission) SalespersonID() uuid.UUID {
	return c.salespersonID
}

func (c *Commission) Amount() valueobjects.Money {
	return c.amount
}

func (c *Commission) RequiresClientPaymentVerification() bool {
	return c.requiresClientPaymentVerification
}

func (c *Commission) VerificationStatus() VerificationStatus {
	return c.verificationStatus
}

// NeedsVerification reports whether a client payment should trigger
// verification of this commission: verification must be required and
// not yet fully complete.
func (c *Commission) NeedsVerification() bool {
	return c.requiresClientPaymentVerification &&
		c.verificationStatus != VerificationStatusFullyVerified
}
