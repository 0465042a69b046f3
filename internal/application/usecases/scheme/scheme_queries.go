// Package scheme - read-side use cases for commission schemes.
package scheme

import (
	"context"
	"fmt"

	"github.com/dcastillo/commispipe/internal/application/dtos"
	"github.com/dcastillo/commispipe/internal/application/ports"
	"github.com/dcastillo/commispipe/internal/domain/errors"
	"github.com/google/uuid"
)

// SchemeQueryUseCase serves scheme reads.
type SchemeQueryUseCase struct {
	schemeRepo ports.SchemeRepository
}

// NewSchemeQueryUseCase creates the use case.
func NewSchemeQueryUseCase(schemeRepo ports.SchemeRepository) *SchemeQueryUseCase {
	return &SchemeQueryUseCase{schemeRepo: schemeRepo}
}

// GetByID returns one scheme.
func (uc *SchemeQueryUseCase) GetByID(ctx context.Context, query dtos.GetSchemeQuery) (*dtos.SchemeDTO, error) {
	schemeID, err := uuid.Parse(query.SchemeID)
	if err != nil {
		return nil, errors.ValidationError{Field: "scheme_id", Message: "invalid UUID format"}
	}

	scheme, err := uc.schemeRepo.FindByID(ctx, schemeID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, fmt.Errorf("%w: scheme %s", errors.ErrEntityNotFound, query.SchemeID)
		}
		return nil, fmt.Errorf("failed to load scheme: %w", err)
	}

	dto := dtos.ToSchemeDTO(scheme)
	return &dto, nil
}

// List returns schemes ordered by effective start date.
func (uc *SchemeQueryUseCase) List(ctx context.Context, query dtos.ListSchemesQuery) (*dtos.SchemeListDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}

	schemes, err := uc.schemeRepo.List(ctx, query.Offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemes: %w", err)
	}

	return &dtos.SchemeListDTO{
		Schemes: dtos.ToSchemeDTOList(schemes),
		Offset:  query.Offset,
		Limit:   limit,
	}, nil
}
