package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func testContextWithQuery(query string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c
}

type validationProbe struct {
	Currency    string `validate:"omitempty,currency_code"`
	Amount      string `validate:"omitempty,money_amount"`
	Date        string `validate:"omitempty,calendar_date"`
	Installment string `validate:"omitempty,installment_type"`
}

func newProbeValidator(t *testing.T) *validator.Validate {
	t.Helper()
	gin.SetMode(gin.TestMode)
	SetupValidator()

	v := validator.New()
	_ = v.RegisterValidation("currency_code", validateCurrencyCode)
	_ = v.RegisterValidation("money_amount", validateMoneyAmount)
	_ = v.RegisterValidation("calendar_date", validateCalendarDate)
	_ = v.RegisterValidation("installment_type", validateInstallmentType)
	return v
}

func TestCurrencyCodeValidator(t *testing.T) {
	v := newProbeValidator(t)

	tests := []struct {
		code  string
		valid bool
	}{
		{"PEN", true},
		{"USD", true},
		{"pe", false},
		{"PENS", false},
		{"P3N", false},
	}

	for _, tt := range tests {
		err := v.Struct(validationProbe{Currency: tt.code})
		if tt.valid {
			assert.NoError(t, err, "code %q", tt.code)
		} else {
			assert.Error(t, err, "code %q", tt.code)
		}
	}
}

func TestMoneyAmountValidator(t *testing.T) {
	v := newProbeValidator(t)

	tests := []struct {
		amount string
		valid  bool
	}{
		{"100", true},
		{"100.50", true},
		{"0.00000001", true},
		{"100.", false},
		{"-5", false},
		{"12,50", false},
	}

	for _, tt := range tests {
		err := v.Struct(validationProbe{Amount: tt.amount})
		if tt.valid {
			assert.NoError(t, err, "amount %q", tt.amount)
		} else {
			assert.Error(t, err, "amount %q", tt.amount)
		}
	}
}

func TestCalendarDateValidator(t *testing.T) {
	v := newProbeValidator(t)

	tests := []struct {
		date  string
		valid bool
	}{
		{"2026-03-15", true},
		{"2026-02-30", false},
		{"15/03/2026", false},
		{"2026-03-15T10:00:00Z", false},
	}

	for _, tt := range tests {
		err := v.Struct(validationProbe{Date: tt.date})
		if tt.valid {
			assert.NoError(t, err, "date %q", tt.date)
		} else {
			assert.Error(t, err, "date %q", tt.date)
		}
	}
}

func TestInstallmentTypeValidator(t *testing.T) {
	v := newProbeValidator(t)

	for _, valid := range []string{"FIRST", "SECOND", "OTHER", "NONE"} {
		assert.NoError(t, v.Struct(validationProbe{Installment: valid}), valid)
	}
	for _, invalid := range []string{"THIRD", "first", ""} {
		if invalid == "" {
			continue // omitempty
		}
		assert.Error(t, v.Struct(validationProbe{Installment: invalid}), invalid)
	}
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Defaults", func(t *testing.T) {
		c := testContextWithQuery("")
		params := ParsePagination(c)
		assert.Equal(t, 0, params.Offset)
		assert.Equal(t, 50, params.Limit)
	})

	t.Run("Explicit", func(t *testing.T) {
		c := testContextWithQuery("offset=30&limit=10")
		params := ParsePagination(c)
		assert.Equal(t, 30, params.Offset)
		assert.Equal(t, 10, params.Limit)
	})

	t.Run("LimitCapIgnoresHugeValues", func(t *testing.T) {
		c := testContextWithQuery("limit=5000")
		params := ParsePagination(c)
		assert.Equal(t, 50, params.Limit)
	})

	t.Run("GarbageIgnored", func(t *testing.T) {
		c := testContextWithQuery("offset=abc&limit=-1")
		params := ParsePagination(c)
		assert.Equal(t, 0, params.Offset)
		assert.Equal(t, 50, params.Limit)
	})
}
