// Package valueobjects contains immutable value objects that represent domain
// concepts without identity. They are compared by their values.
package valueobjects

import (
	"errors"
	"strings"
)

// Currency represents a monetary currency code (ISO 4217).
// It's a value object - immutable and validated on creation.
type Currency struct {
	code string // Private field ensures immutability
}

// Predefined supported currencies. PEN is the default settlement currency
// for contracts; USD and EUR appear on foreign-client payments.
var (
	PEN = Currency{code: "PEN"}
	USD = Currency{code: "USD"}
	EUR = Currency{code: "EUR"}
)

// supportedCurrencies defines the whitelist of allowed currencies.
var supportedCurrencies = map[string]bool{
	"PEN": true,
	"USD": true,
	"EUR": true,
}

// ErrInvalidCurrency is returned when an invalid currency code is provided.
var ErrInvalidCurrency = errors.New("invalid currency code")

// NewCurrency creates a new Currency value object with validation.
func NewCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	if !supportedCurrencies[code] {
		return Currency{}, ErrInvalidCurrency
	}

	return Currency{code: code}, nil
}

// MustNewCurrency is a convenience function that panics on invalid input.
// Use only in initialization code where invalid input indicates a programming error.
func MustNewCurrency(code string) Currency {
	curr, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return curr
}

// Code returns the ISO 4217 currency code.
func (c Currency) Code() string {
	return c.code
}

// Equals compares two currencies by code.
func (c Currency) Equals(other Currency) bool {
	return c.code == other.code
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return c.code
}

// IsZeroValue reports whether the currency was never initialized.
func (c Currency) IsZeroValue() bool {
	return c.code == ""
}
