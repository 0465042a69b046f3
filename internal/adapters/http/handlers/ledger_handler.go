// Package handlers - event ledger audit handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dcastillo/commispipe/internal/adapters/http/common"
	"github.com/dcastillo/commispipe/internal/application/dtos"
)

// GetLedgerEntryUseCase fetches one ledger entry by event ID.
type GetLedgerEntryUseCase interface {
	GetByEventID(ctx context.Context, query dtos.GetLedgerEntryQuery) (*dtos.LedgerEntryDTO, error)
}

// ListLedgerUseCase pages through the event ledger.
type ListLedgerUseCase interface {
	List(ctx context.Context, query dtos.ListLedgerQuery) (*dtos.LedgerListDTO, error)
}

// LedgerHandler exposes the event ledger for auditing.
type LedgerHandler struct {
	getEntry GetLedgerEntryUseCase
	list     ListLedgerUseCase
}

func NewLedgerHandler(getEntry GetLedgerEntryUseCase, list ListLedgerUseCase) *LedgerHandler {
	return &LedgerHandler{getEntry: getEntry, list: list}
}

// EventIDParam is the :event_id URI parameter.
type EventIDParam struct {
	EventID string `uri:"event_id" binding:"required,uuid"`
}

// ListLedgerParams are the ledger listing filters.
type ListLedgerParams struct {
	ContractID string `form:"contract_id" binding:"omitempty,uuid"`
	PaymentID  string `form:"payment_id" binding:"omitempty,uuid"`
	Processed  *bool  `form:"processed"`
	Failed     *bool  `form:"failed"`
}

// GetEntry returns one ledger entry by event ID.
func (h *LedgerHandler) GetEntry(c *gin.Context) {
	var params EventIDParam
	if !BindURI(c, &params) {
		return
	}

	result, err := h.getEntry.GetByEventID(c.Request.Context(), dtos.GetLedgerEntryQuery{
		EventID: params.EventID,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// List returns a filtered page of the ledger.
func (h *LedgerHandler) List(c *gin.Context) {
	var params ListLedgerParams
	if !BindQuery(c, &params) {
		return
	}
	pagination := ParsePagination(c)

	query := dtos.ListLedgerQuery{
		Processed: params.Processed,
		Failed:    params.Failed,
		Offset:    pagination.Offset,
		Limit:     pagination.Limit,
	}
	if params.ContractID != "" {
		query.ContractID = &params.ContractID
	}
	if params.PaymentID != "" {
		query.PaymentID = &params.PaymentID
	}

	result, err := h.list.List(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.SuccessWithMeta(c, http.StatusOK, result, BuildMeta(pagination, len(result.Entries)))
}

// RegisterRoutes registers the ledger routes on a router group.
func (h *LedgerHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/ledger", h.List)
	group.GET("/ledger/:event_id", h.GetEntry)
}
