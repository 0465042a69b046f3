// Package handlers contains the HTTP handlers for the ops API.
//
// A handler takes the HTTP request, turns it into a Command/Query DTO,
// calls the use case, and maps the result back to an HTTP response.
package handlers

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dcastillo/commispipe/internal/adapters/http/common"
)

// ============================================
// Custom Validator Setup
// ============================================

var setupOnce sync.Once

// SetupValidator installs the custom validators on Gin's binding engine.
func SetupValidator() {
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			// Report errors against json field names.
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})

			_ = v.RegisterValidation("currency_code", validateCurrencyCode)
			_ = v.RegisterValidation("money_amount", validateMoneyAmount)
			_ = v.RegisterValidation("calendar_date", validateCalendarDate)
			_ = v.RegisterValidation("installment_type", validateInstallmentType)
		}
	})
}

// ============================================
// Custom Validators
// ============================================

// validateCurrencyCode checks for a 3-letter uppercase code.
func validateCurrencyCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// validateMoneyAmount checks the decimal string format.
var moneyPattern = regexp.MustCompile(`^\d+(\.\d{1,8})?$`)

func validateMoneyAmount(fl validator.FieldLevel) bool {
	return moneyPattern.MatchString(fl.Field().String())
}

// validateCalendarDate checks for a YYYY-MM-DD date.
func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// validateInstallmentType checks the installment classification.
func validateInstallmentType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "FIRST", "SECOND", "OTHER", "NONE":
		return true
	}
	return false
}

// ============================================
// Validation Error Handling
// ============================================

// HandleValidationErrors maps binding errors to a 400 response.
func HandleValidationErrors(c *gin.Context, err error) {
	var fieldErrors []common.FieldError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrors {
			fieldErrors = append(fieldErrors, common.FieldError{
				Field:   fieldErr.Field(),
				Message: getValidationMessage(fieldErr),
				Code:    fieldErr.Tag(),
			})
		}
	}

	if len(fieldErrors) == 0 {
		common.BadRequestResponse(c, "Invalid request body: "+err.Error())
		return
	}

	common.ValidationErrorResponse(c, fieldErrors)
}

// getValidationMessage returns a human-readable message for a failed tag.
func getValidationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "uuid":
		return "Invalid UUID format"
	case "min":
		return "Value is too short (minimum: " + fe.Param() + ")"
	case "max":
		return "Value is too long (maximum: " + fe.Param() + ")"
	case "oneof":
		return "Value must be one of: " + fe.Param()
	case "currency_code":
		return "Invalid currency code (must be 3 uppercase letters)"
	case "money_amount":
		return "Invalid amount format (use decimal like '100.50')"
	case "calendar_date":
		return "Invalid date format (use YYYY-MM-DD)"
	case "installment_type":
		return "Invalid installment type"
	default:
		return "Invalid value"
	}
}

// ============================================
// Request Parsing Helpers
// ============================================

// BindJSON binds the JSON body. Returns false if a response was already sent.
func BindJSON[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	return true
}

// BindQuery binds query string parameters.
func BindQuery[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	return true
}

// BindURI binds URI parameters.
func BindURI[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindUri(req); err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	return true
}

// ============================================
// Pagination Helper
// ============================================

// PaginationParams come from the query string as offset/limit.
type PaginationParams struct {
	Offset int `form:"offset" binding:"omitempty,min=0"`
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
}

// ParsePagination reads offset/limit with sane defaults.
func ParsePagination(c *gin.Context) PaginationParams {
	params := PaginationParams{Offset: 0, Limit: 50}

	if offset := c.Query("offset"); offset != "" {
		if n, ok := parseInt(offset); ok {
			params.Offset = n
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if n, ok := parseInt(limit); ok && n > 0 && n <= 200 {
			params.Limit = n
		}
	}

	return params
}

func parseInt(s string) (int, bool) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, s != ""
}

// BuildMeta builds pagination metadata for a list response.
func BuildMeta(params PaginationParams, count int) *common.APIMeta {
	return &common.APIMeta{
		Offset: params.Offset,
		Limit:  params.Limit,
		Count:  count,
	}
}
