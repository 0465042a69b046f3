package valueobjects_test

import (
	"testing"

	"github.com/dcastillo/commispipe/internal/domain/valueobjects"
)

func TestNewCurrency(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    string
		wantErr bool
	}{
		{"PEN is supported", "PEN", "PEN", false},
		{"USD is supported", "USD", "USD", false},
		{"EUR is supported", "EUR", "EUR", false},
		{"lowercase is normalized", "pen", "PEN", false},
		{"whitespace is trimmed", " usd ", "USD", false},
		{"unsupported code", "GBP", "", true},
		{"empty code", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := valueobjects.NewCurrency(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCurrency(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
			if !tt.wantErr && got.Code() != tt.want {
				t.Errorf("Code() = %q, want %q", got.Code(), tt.want)
			}
		})
	}
}

func TestMustNewCurrency_PanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNewCurrency with invalid code must panic")
		}
	}()
	valueobjects.MustNewCurrency("XXX")
}

func TestCurrency_Equals(t *testing.T) {
	a := valueobjects.MustNewCurrency("PEN")
	if !a.Equals(valueobjects.PEN) {
		t.Error("constructed PEN must equal predefined PEN")
	}
	if a.Equals(valueobjects.USD) {
		t.Error("PEN must not equal USD")
	}
}

func TestCurrency_IsZeroValue(t *testing.T) {
	var zero valueobjects.Currency
	if !zero.IsZeroValue() {
		t.Error("uninitialized currency must report zero value")
	}
	if valueobjects.PEN.IsZeroValue() {
		t.Error("PEN must not report zero value")
	}
}
