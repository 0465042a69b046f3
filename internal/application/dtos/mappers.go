// Package dtos - mappers converting domain entities to API DTOs.
package dtos

import (
	"github.com/dcastillo/commispipe/internal/domain/entities"
)

// ============================================
// Scheme Mappers
// ============================================

// ToSchemeDTO converts a CommissionScheme entity to its DTO.
func ToSchemeDTO(scheme *entities.CommissionScheme) SchemeDTO {
	dto := SchemeDTO{
		ID:        scheme.ID().String(),
		Name:      scheme.Name(),
		Active:    scheme.IsOpenEnded(),
		CreatedAt: scheme.CreatedAt(),
		UpdatedAt: scheme.UpdatedAt(),
	}
	if from := scheme.EffectiveFrom(); from != nil {
		s := from.Format(SchemeDateLayout)
		dto.EffectiveFrom = &s
	}
	if to := scheme.EffectiveTo(); to != nil {
		s := to.Format(SchemeDateLayout)
		dto.EffectiveTo = &s
	}
	return dto
}

// ToSchemeDTOList converts a list of schemes.
func ToSchemeDTOList(schemes []*entities.CommissionScheme) []SchemeDTO {
	result := make([]SchemeDTO, len(schemes))
	for i, s := range schemes {
		result[i] = ToSchemeDTO(s)
	}
	return result
}

// ============================================
// Ledger Mappers
// ============================================

// ToLedgerEntryDTO converts a LedgerEntry entity to its DTO.
func ToLedgerEntryDTO(entry *entities.LedgerEntry) LedgerEntryDTO {
	dto := LedgerEntryDTO{
		EventID:      entry.EventID().String(),
		EventType:    entry.EventType(),
		PaymentID:    entry.PaymentID().String(),
		Installment:  string(entry.Installment()),
		Processed:    entry.Processed(),
		ProcessedAt:  entry.ProcessedAt(),
		ErrorMessage: entry.ErrorMessage(),
		RetryCount:   entry.RetryCount(),
		LastRetryAt:  entry.LastRetryAt(),
		CreatedAt:    entry.CreatedAt(),
	}
	if contractID := entry.ContractID(); contractID != nil {
		s := contractID.String()
		dto.ContractID = &s
	}
	if triggeredBy := entry.TriggeredBy(); triggeredBy != nil {
		s := triggeredBy.String()
		dto.TriggeredBy = &s
	}
	return dto
}

// ToLedgerEntryDTOList converts a list of ledger entries.
func ToLedgerEntryDTOList(entries []*entities.LedgerEntry) []LedgerEntryDTO {
	result := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		result[i] = ToLedgerEntryDTO(e)
	}
	return result
}
