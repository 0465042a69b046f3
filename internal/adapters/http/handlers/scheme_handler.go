// Package handlers - commission scheme handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dcastillo/commispipe/internal/adapters/http/common"
	"github.com/dcastillo/commispipe/internal/adapters/http/middleware"
	"github.com/dcastillo/commispipe/internal/application/dtos"
)

// CreateSchemeUseCase creates a scheme and reconciles the timeline.
type CreateSchemeUseCase interface {
	Execute(ctx context.Context, cmd dtos.CreateSchemeCommand) (*dtos.SchemeMutationDTO, error)
}

// UpdateSchemeUseCase renames and/or reschedules a scheme.
type UpdateSchemeUseCase interface {
	Execute(ctx context.Context, cmd dtos.UpdateSchemeCommand) (*dtos.SchemeMutationDTO, error)
}

// GetSchemeUseCase fetches one scheme.
type GetSchemeUseCase interface {
	GetByID(ctx context.Context, query dtos.GetSchemeQuery) (*dtos.SchemeDTO, error)
}

// ListSchemesUseCase pages through schemes.
type ListSchemesUseCase interface {
	List(ctx context.Context, query dtos.ListSchemesQuery) (*dtos.SchemeListDTO, error)
}

// SchemeHandler handles commission scheme requests.
type SchemeHandler struct {
	createScheme CreateSchemeUseCase
	updateScheme UpdateSchemeUseCase
	getScheme    GetSchemeUseCase
	listSchemes  ListSchemesUseCase
}

func NewSchemeHandler(
	createScheme CreateSchemeUseCase,
	updateScheme UpdateSchemeUseCase,
	getScheme GetSchemeUseCase,
	listSchemes ListSchemesUseCase,
) *SchemeHandler {
	return &SchemeHandler{
		createScheme: createScheme,
		updateScheme: updateScheme,
		getScheme:    getScheme,
		listSchemes:  listSchemes,
	}
}

// SchemeIDParam is the :id URI parameter.
type SchemeIDParam struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// CreateSchemeRequest is the POST /schemes body.
type CreateSchemeRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=255"`
	EffectiveFrom *string `json:"effective_from" binding:"omitempty,calendar_date"`
}

// UpdateSchemeRequest is the PATCH /schemes/:id body.
type UpdateSchemeRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=255"`
	EffectiveFrom *string `json:"effective_from" binding:"omitempty,calendar_date"`
}

// CreateScheme creates a scheme. Overlapping siblings are truncated, never
// rejected; the response lists what was truncated.
func (h *SchemeHandler) CreateScheme(c *gin.Context) {
	var req CreateSchemeRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.createScheme.Execute(c.Request.Context(), dtos.CreateSchemeCommand{
		Name:          req.Name,
		EffectiveFrom: req.EffectiveFrom,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	for range result.Truncated {
		middleware.SchemesTruncatedTotal.Inc()
	}

	common.Success(c, http.StatusCreated, result)
}

// UpdateScheme renames and/or reschedules a scheme.
func (h *SchemeHandler) UpdateScheme(c *gin.Context) {
	var params SchemeIDParam
	if !BindURI(c, &params) {
		return
	}
	var req UpdateSchemeRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.updateScheme.Execute(c.Request.Context(), dtos.UpdateSchemeCommand{
		SchemeID:      params.ID,
		Name:          req.Name,
		EffectiveFrom: req.EffectiveFrom,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	for range result.Truncated {
		middleware.SchemesTruncatedTotal.Inc()
	}

	common.Success(c, http.StatusOK, result)
}

// GetScheme returns one scheme by ID.
func (h *SchemeHandler) GetScheme(c *gin.Context) {
	var params SchemeIDParam
	if !BindURI(c, &params) {
		return
	}

	result, err := h.getScheme.GetByID(c.Request.Context(), dtos.GetSchemeQuery{
		SchemeID: params.ID,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListSchemes returns a page of schemes ordered by effective start date.
func (h *SchemeHandler) ListSchemes(c *gin.Context) {
	pagination := ParsePagination(c)

	result, err := h.listSchemes.List(c.Request.Context(), dtos.ListSchemesQuery{
		Offset: pagination.Offset,
		Limit:  pagination.Limit,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.SuccessWithMeta(c, http.StatusOK, result, BuildMeta(pagination, len(result.Schemes)))
}

// RegisterRoutes registers the scheme routes on a router group.
func (h *SchemeHandler) RegisterRoutes(group *gin.RouterGroup) {
	schemes := group.Group("/schemes")
	{
		schemes.POST("", h.CreateScheme)
		schemes.GET("", h.ListSchemes)
		schemes.GET("/:id", h.GetScheme)
		schemes.PATCH("/:id", h.UpdateScheme)
	}
}
