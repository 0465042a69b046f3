// Package valueobjects - Money combines amount and currency to prevent
// common bugs like mixing currencies or accumulating float drift in
// payment snapshots.
package valueobjects

import (
	"errors"
	"fmt"
	"math/big"
)

// Money represents a monetary amount with its currency.
// Uses big.Rat for arbitrary precision to avoid floating-point errors.
//
// Value Object Pattern:
// - Immutable: all operations return new Money instances
// - Self-validating: cannot create invalid Money
type Money struct {
	amount   *big.Rat
	currency Currency
}

// Common domain errors for Money operations
var (
	ErrNegativeAmount   = errors.New("amount cannot be negative")
	ErrCurrencyMismatch = errors.New("cannot operate on different currencies")
	ErrInvalidAmount    = errors.New("invalid amount format")
)

// NewMoney creates a Money instance from a decimal string (e.g. "1250.00").
func NewMoney(amountStr string, currency Currency) (Money, error) {
	amount := new(big.Rat)
	if _, ok := amount.SetString(amountStr); !ok {
		return Money{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amountStr)
	}

	if amount.Sign() < 0 {
		return Money{}, ErrNegativeAmount
	}

	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewMoneyFromCents creates Money from the smallest currency unit.
// This is the preferred way to store money in the database (integer cents).
func NewMoneyFromCents(cents int64, currency Currency) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeAmount
	}

	return Money{
		amount:   big.NewRat(cents, 100),
		currency: currency,
	}, nil
}

// Zero creates a zero money amount for the given currency.
func Zero(currency Currency) Money {
	return Money{
		amount:   big.NewRat(0, 1),
		currency: currency,
	}
}

// Currency returns the currency of this money.
func (m Money) Currency() Currency {
	return m.currency
}

// Amount returns the amount as a big.Rat. Returns a copy to keep Money immutable.
func (m Money) Amount() *big.Rat {
	return new(big.Rat).Set(m.amount)
}

// String returns a human-readable representation, e.g. "1250.00 PEN".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.FloatString(2), m.currency.Code())
}

// Cents returns the amount in the smallest currency unit.
func (m Money) Cents() int64 {
	scaled := new(big.Rat).Mul(m.amount, big.NewRat(100, 1))
	return scaled.Num().Int64() / scaled.Denom().Int64()
}

// Add returns a new Money with the sum of two amounts.
func (m Money) Add(other Money) (Money, error) {
	if !m.currency.Equals(other.currency) {
		return Money{}, ErrCurrencyMismatch
	}

	sum := new(big.Rat).Add(m.amount, other.amount)
	return Money{amount: sum, currency: m.currency}, nil
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.Sign() == 0
}

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool {
	return m.amount.Sign() > 0
}

// Equals checks if two money values are equal (amount and currency).
func (m Money) Equals(other Money) bool {
	return m.currency.Equals(other.currency) && m.amount.Cmp(other.amount) == 0
}
