// Package pipeline - use cases for the commission verification event pipeline.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dcastillo/commispipe/internal/application/dtos"
	"github.com/dcastillo/commispipe/internal/application/ports"
	"github.com/dcastillo/commispipe/internal/domain/entities"
	"github.com/dcastillo/commispipe/internal/domain/errors"
	"github.com/dcastillo/commispipe/internal/domain/events"
	"github.com/dcastillo/commispipe/internal/domain/services"
	"github.com/dcastillo/commispipe/internal/domain/valueobjects"
	"github.com/google/uuid"
)

const paymentDateLayout = "2006-01-02"

// EmitEventUseCase turns an observed client payment into a queued
// commission-affecting event.
//
// Flow:
//  1. Load the payment's receivable and its contract siblings
//  2. Classify the installment ordinal (FIRST / SECOND / OTHER / NONE)
//  3. Construct the event unconditionally, with a fresh event ID
//  4. Gate on eligibility: only contract payments on the first two
//     installments are enqueued, everything else is dropped here
//
// Business rules:
//   - Classification is frozen at emission time; later receivable changes
//     never reclassify an emitted event
//   - Dropped events are reported, not errors: a third-installment payment
//     is a normal payment, just not a commission-affecting one
type EmitEventUseCase struct {
	receivableRepo ports.ReceivableRepository
	classifier     *services.InstallmentClassifier
	queue          ports.EventQueue
}

// NewEmitEventUseCase creates the use case.
func NewEmitEventUseCase(
	receivableRepo ports.ReceivableRepository,
	classifier *services.InstallmentClassifier,
	queue ports.EventQueue,
) *EmitEventUseCase {
	return &EmitEventUseCase{
		receivableRepo: receivableRepo,
		classifier:     classifier,
		queue:          queue,
	}
}

// Execute processes one observed payment.
func (uc *EmitEventUseCase) Execute(ctx context.Context, cmd dtos.RegisterPaymentCommand) (*dtos.EventEmissionDTO, error) {
	paymentID, err := uuid.Parse(cmd.PaymentID)
	if err != nil {
		return nil, errors.ValidationError{Field: "payment_id", Message: "invalid UUID format"}
	}
	clientID, err := uuid.Parse(cmd.ClientID)
	if err != nil {
		return nil, errors.ValidationError{Field: "client_id", Message: "invalid UUID format"}
	}
	receivableID, err := uuid.Parse(cmd.ReceivableID)
	if err != nil {
		return nil, errors.ValidationError{Field: "receivable_id", Message: "invalid UUID format"}
	}

	var triggeredBy *uuid.UUID
	if cmd.TriggeredBy != "" {
		id, err := uuid.Parse(cmd.TriggeredBy)
		if err != nil {
			return nil, errors.ValidationError{Field: "triggered_by", Message: "invalid UUID format"}
		}
		triggeredBy = &id
	}

	currency, err := valueobjects.NewCurrency(cmd.Currency)
	if err != nil {
		return nil, errors.ValidationError{Field: "currency", Message: err.Error()}
	}
	amount, err := valueobjects.NewMoney(cmd.Amount, currency)
	if err != nil {
		return nil, errors.ValidationError{Field: "amount", Message: err.Error()}
	}

	paymentDate, err := time.Parse(paymentDateLayout, cmd.PaymentDate)
	if err != nil {
		return nil, errors.ValidationError{Field: "payment_date", Message: "expected YYYY-MM-DD"}
	}

	installment, contractID, err := uc.classify(ctx, receivableID)
	if err != nil {
		return nil, err
	}

	event := events.NewCommissionAffectingPayment(
		paymentID, clientID, contractID, receivableID,
		amount, paymentDate, installment, triggeredBy,
	)

	if !event.AffectsCommissions() {
		return &dtos.EventEmissionDTO{
			Installment: string(installment),
			Enqueued:    false,
			Reason:      dropReason(installment, contractID),
		}, nil
	}

	if err := uc.queue.Enqueue(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to enqueue event %s: %w", event.EventID(), err)
	}

	return &dtos.EventEmissionDTO{
		EventID:     event.EventID().String(),
		Installment: string(installment),
		Enqueued:    true,
	}, nil
}

// classify resolves the receivable's installment ordinal within its
// contract. A missing receivable or a contract-less receivable classifies
// as NONE rather than failing: these are valid payments outside the
// pipeline's interest.
func (uc *EmitEventUseCase) classify(ctx context.Context, receivableID uuid.UUID) (entities.InstallmentType, *uuid.UUID, error) {
	receivable, err := uc.receivableRepo.FindByID(ctx, receivableID)
	if err != nil {
		if errors.IsNotFound(err) {
			return entities.InstallmentNone, nil, nil
		}
		return "", nil, fmt.Errorf("failed to load receivable: %w", err)
	}

	if !receivable.HasContract() {
		return entities.InstallmentNone, nil, nil
	}

	contractID := receivable.ContractID()
	siblings, err := uc.receivableRepo.FindByContractID(ctx, *contractID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load contract receivables: %w", err)
	}

	return uc.classifier.Classify(receivableID, siblings), contractID, nil
}

func dropReason(installment entities.InstallmentType, contractID *uuid.UUID) string {
	if contractID == nil {
		return "payment is not linked to a contract"
	}
	return fmt.Sprintf("installment %s does not affect commissions", installment)
}
