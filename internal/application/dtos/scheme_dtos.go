// Package dtos - commission scheme DTOs.
package dtos

import "time"

// SchemeDateLayout is the wire format for scheme boundary dates. Scheme
// intervals are calendar-date granular; no time-of-day travels the API.
const SchemeDateLayout = "2006-01-02"

// ============================================
// Commands (Write operations)
// ============================================

// CreateSchemeCommand creates a commission scheme. EffectiveFrom may be
// omitted to create a draft that is not yet active.
type CreateSchemeCommand struct {
	Name          string  `json:"name" validate:"required,min=1,max=255"`
	EffectiveFrom *string `json:"effective_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateSchemeCommand changes a scheme's name and/or effective start date.
// Setting or moving EffectiveFrom re-runs the temporal consistency pass.
type UpdateSchemeCommand struct {
	SchemeID      string  `json:"scheme_id" validate:"required,uuid"`
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	EffectiveFrom *string `json:"effective_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ============================================
// Queries (Read operations)
// ============================================

// GetSchemeQuery asks for one scheme by ID.
type GetSchemeQuery struct {
	SchemeID string `json:"scheme_id" validate:"required,uuid"`
}

// ListSchemesQuery pages through schemes ordered by effective start date.
type ListSchemesQuery struct {
	Offset int `json:"offset" validate:"min=0"`
	Limit  int `json:"limit" validate:"min=1,max=100"`
}

// ============================================
// Response DTOs
// ============================================

// SchemeDTO is the API representation of a commission scheme.
type SchemeDTO struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	EffectiveFrom *string   `json:"effective_from,omitempty"`
	EffectiveTo   *string   `json:"effective_to,omitempty"`
	Active        bool      `json:"active"` // open-ended as of now
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SchemeListDTO is the paginated scheme listing.
type SchemeListDTO struct {
	Schemes []SchemeDTO `json:"schemes"`
	Offset  int         `json:"offset"`
	Limit   int         `json:"limit"`
}

// SchemeMutationDTO reports a scheme write together with the siblings that
// were truncated to keep the timeline consistent.
type SchemeMutationDTO struct {
	Scheme    SchemeDTO   `json:"scheme"`
	Truncated []SchemeDTO `json:"truncated,omitempty"`
}
