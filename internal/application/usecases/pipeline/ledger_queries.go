// Package pipeline - read-side use cases over the event ledger.
package pipeline

import (
	"context"
	"fmt"

	"github.com/dcastillo/commispipe/internal/application/dtos"
	"github.com/dcastillo/commispipe/internal/application/ports"
	"github.com/dcastillo/commispipe/internal/domain/errors"
	"github.com/google/uuid"
)

// LedgerQueryUseCase serves the audit endpoints over the event ledger.
type LedgerQueryUseCase struct {
	ledgerRepo ports.LedgerRepository
}

// NewLedgerQueryUseCase creates the use case.
func NewLedgerQueryUseCase(ledgerRepo ports.LedgerRepository) *LedgerQueryUseCase {
	return &LedgerQueryUseCase{ledgerRepo: ledgerRepo}
}

// GetByEventID returns one ledger entry.
func (uc *LedgerQueryUseCase) GetByEventID(ctx context.Context, query dtos.GetLedgerEntryQuery) (*dtos.LedgerEntryDTO, error) {
	eventID, err := uuid.Parse(query.EventID)
	if err != nil {
		return nil, errors.ValidationError{Field: "event_id", Message: "invalid UUID format"}
	}

	entry, err := uc.ledgerRepo.FindByEventID(ctx, eventID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, fmt.Errorf("%w: ledger entry %s", errors.ErrEntityNotFound, query.EventID)
		}
		return nil, fmt.Errorf("failed to load ledger entry: %w", err)
	}

	dto := dtos.ToLedgerEntryDTO(entry)
	return &dto, nil
}

// List returns ledger entries matching the filter, newest first.
func (uc *LedgerQueryUseCase) List(ctx context.Context, query dtos.ListLedgerQuery) (*dtos.LedgerListDTO, error) {
	filter := ports.LedgerFilter{
		Processed: query.Processed,
		Failed:    query.Failed,
	}

	if query.ContractID != nil {
		id, err := uuid.Parse(*query.ContractID)
		if err != nil {
			return nil, errors.ValidationError{Field: "contract_id", Message: "invalid UUID format"}
		}
		filter.ContractID = &id
	}
	if query.PaymentID != nil {
		id, err := uuid.Parse(*query.PaymentID)
		if err != nil {
			return nil, errors.ValidationError{Field: "payment_id", Message: "invalid UUID format"}
		}
		filter.PaymentID = &id
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}

	entries, err := uc.ledgerRepo.List(ctx, filter, query.Offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	return &dtos.LedgerListDTO{
		Entries: dtos.ToLedgerEntryDTOList(entries),
		Offset:  query.Offset,
		Limit:   limit,
	}, nil
}
