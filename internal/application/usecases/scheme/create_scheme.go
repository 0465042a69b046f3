// Package scheme - use cases for commission scheme management and their
// temporal consistency.
package scheme

import (
	"context"
	"fmt"
	"time"

	"github.com/dcastillo/commispipe/internal/application/dtos"
	"github.com/dcastillo/commispipe/internal/application/ports"
	"github.com/dcastillo/commispipe/internal/domain/entities"
	"github.com/dcastillo/commispipe/internal/domain/errors"
	"github.com/google/uuid"
)

// CreateSchemeUseCase creates a commission scheme and keeps the timeline
// consistent: at most one scheme covers any calendar date.
//
// Flow:
//  1. Build the scheme (a nil effective_from creates an inactive draft)
//  2. In one transaction: truncate every sibling whose interval would
//     cover the new start date, then save the new scheme
//
// Consistency is enforced by truncation, never rejection: introducing a
// scheme starting at F closes overlapping siblings at F minus one day.
type CreateSchemeUseCase struct {
	schemeRepo ports.SchemeRepository
	uow        ports.UnitOfWork
}

// NewCreateSchemeUseCase creates the use case.
func NewCreateSchemeUseCase(schemeRepo ports.SchemeRepository, uow ports.UnitOfWork) *CreateSchemeUseCase {
	return &CreateSchemeUseCase{
		schemeRepo: schemeRepo,
		uow:        uow,
	}
}

// Execute creates the scheme and returns it with any truncated siblings.
func (uc *CreateSchemeUseCase) Execute(ctx context.Context, cmd dtos.CreateSchemeCommand) (*dtos.SchemeMutationDTO, error) {
	var effectiveFrom *time.Time
	if cmd.EffectiveFrom != nil {
		parsed, err := time.Parse(dtos.SchemeDateLayout, *cmd.EffectiveFrom)
		if err != nil {
			return nil, errors.ValidationError{Field: "effective_from", Message: "expected YYYY-MM-DD"}
		}
		effectiveFrom = &parsed
	}

	scheme, err := entities.NewCommissionScheme(cmd.Name, effectiveFrom)
	if err != nil {
		return nil, err
	}

	var truncated []*entities.CommissionScheme
	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		if from := scheme.EffectiveFrom(); from != nil {
			truncated, err = reconcileTimeline(txCtx, uc.schemeRepo, *from, scheme.ID())
			if err != nil {
				return err
			}
		}
		return uc.schemeRepo.Save(txCtx, scheme)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scheme: %w", err)
	}

	return &dtos.SchemeMutationDTO{
		Scheme:    dtos.ToSchemeDTO(scheme),
		Truncated: dtos.ToSchemeDTOList(truncated),
	}, nil
}

// reconcileTimeline truncates every scheme whose interval covers the
// boundary date, excluding the scheme being written. Runs inside the
// caller's transaction so detection and truncation commit atomically with
// the scheme write itself.
func reconcileTimeline(ctx context.Context, repo ports.SchemeRepository, from time.Time, excludeID uuid.UUID) ([]*entities.CommissionScheme, error) {
	overlapping, err := repo.FindOverlapping(ctx, from, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping schemes: %w", err)
	}

	truncated := make([]*entities.CommissionScheme, 0, len(overlapping))
	for _, sibling := range overlapping {
		if err := sibling.TruncateBefore(from); err != nil {
			return nil, fmt.Errorf("failed to truncate scheme %s: %w", sibling.ID(), err)
		}
		if err := repo.Save(ctx, sibling); err != nil {
			return nil, fmt.Errorf("failed to save truncated scheme %s: %w", sibling.ID(), err)
		}
		truncated = append(truncated, sibling)
	}
	return truncated, nil
}
