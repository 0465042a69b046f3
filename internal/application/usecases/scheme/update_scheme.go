// Package scheme - UpdateScheme use case.
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

// UpdateSchemeUseCase renames a scheme and/or moves its effective start
// date. Moving the start date re-runs the temporal consistency pass around
// the new boundary, excluding the scheme itself from truncation.
//
// A name-only update skips the consistency pass entirely: the timeline
// cannot change when no boundary moved.
type UpdateSchemeUseCase struct {
	schemeRepo ports.SchemeRepository
	uow        ports.UnitOfWork
}

// NewUpdateSchemeUseCase creates the use case.
func NewUpdateSchemeUseCase(schemeRepo ports.SchemeRepository, uow ports.UnitOfWork) *UpdateSchemeUseCase {
	return &UpdateSchemeUseCase{
		schemeRepo: schemeRepo,
		uow:        uow,
	}
}

// Execute applies the update and returns the scheme with any truncated
// siblings.
func (uc *UpdateSchemeUseCase) Execute(ctx context.Context, cmd dtos.UpdateSchemeCommand) (*dtos.SchemeMutationDTO, error) {
	schemeID, err := uuid.Parse(cmd.SchemeID)
	if err != nil {
		return nil, errors.ValidationError{Field: "scheme_id", Message: "invalid UUID format"}
	}

	var effectiveFrom *time.Time
	if cmd.EffectiveFrom != nil {
		parsed, err := time.Parse(dtos.SchemeDateLayout, *cmd.EffectiveFrom)
		if err != nil {
			return nil, errors.ValidationError{Field: "effective_from", Message: "expected YYYY-MM-DD"}
		}
		effectiveFrom = &parsed
	}

	var (
		scheme    *entities.CommissionScheme
		truncated []*entities.CommissionScheme
	)
	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		var err error
		scheme, err = uc.schemeRepo.FindByID(txCtx, schemeID)
		if err != nil {
			if errors.IsNotFound(err) {
				return fmt.Errorf("%w: scheme %s", errors.ErrEntityNotFound, cmd.SchemeID)
			}
			return fmt.Errorf("failed to load scheme: %w", err)
		}

		if cmd.Name != nil {
			if err := scheme.Rename(*cmd.Name); err != nil {
				return err
			}
		}

		if effectiveFrom != nil {
			if err := scheme.Reschedule(*effectiveFrom); err != nil {
				return err
			}
			truncated, err = reconcileTimeline(txCtx, uc.schemeRepo, *scheme.EffectiveFrom(), scheme.ID())
			if err != nil {
				return err
			}
		}

		return uc.schemeRepo.Save(txCtx, scheme)
	})
	if err != nil {
		return nil, err
	}

	return &dtos.SchemeMutationDTO{
		Scheme:    dtos.ToSchemeDTO(scheme),
		Truncated: dtos.ToSchemeDTOList(truncated),
	}, nil
}
