// Package handlers - payment ingestion handler.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dcastillo/commispipe/internal/adapters/http/common"
	"github.com/dcastillo/commispipe/internal/adapters/http/middleware"
	"github.com/dcastillo/commispipe/internal/application/dtos"
)

// RegisterPaymentUseCase classifies a payment and enqueues the event when
// it affects commissions.
type RegisterPaymentUseCase interface {
	Execute(ctx context.Context, cmd dtos.RegisterPaymentCommand) (*dtos.EventEmissionDTO, error)
}

// PaymentHandler handles payment registration requests.
type PaymentHandler struct {
	registerPayment RegisterPaymentUseCase
}

func NewPaymentHandler(registerPayment RegisterPaymentUseCase) *PaymentHandler {
	return &PaymentHandler{registerPayment: registerPayment}
}

// RegisterPaymentRequest is the POST /payments body.
type RegisterPaymentRequest struct {
	PaymentID    string `json:"payment_id" binding:"required,uuid"`
	ClientID     string `json:"client_id" binding:"required,uuid"`
	ReceivableID string `json:"receivable_id" binding:"required,uuid"`
	Amount       string `json:"amount" binding:"required,money_amount"`
	Currency     string `json:"currency" binding:"required,currency_code"`
	PaymentDate  string `json:"payment_date" binding:"required,calendar_date"`
	TriggeredBy  string `json:"triggered_by" binding:"omitempty,uuid"`
}

// RegisterPayment reports an observed client payment to the pipeline.
//
// Returns 202 when the event was enqueued for verification and 200 when the
// payment does not affect commissions (the caller still sees the
// classification and the drop reason).
func (h *PaymentHandler) RegisterPayment(c *gin.Context) {
	var req RegisterPaymentRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.RegisterPaymentCommand{
		PaymentID:    req.PaymentID,
		ClientID:     req.ClientID,
		ReceivableID: req.ReceivableID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		PaymentDate:  req.PaymentDate,
		TriggeredBy:  req.TriggeredBy,
	}

	result, err := h.registerPayment.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordEmission(result.Installment, result.Enqueued)

	status := http.StatusOK
	if result.Enqueued {
		status = http.StatusAccepted
	}
	common.Success(c, status, result)
}
