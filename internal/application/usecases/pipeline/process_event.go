// Package pipeline - ProcessEvent use case, the verification worker's core.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dcastillo/commispipe/internal/application/ports"
	"github.com/dcastillo/commispipe/internal/domain/errors"
	"github.com/dcastillo/commispipe/internal/domain/events"
)

// ProcessEventUseCase handles one delivery of a commission-affecting event.
//
// Flow:
//  1. Re-check eligibility (defense against malformed or replayed messages)
//  2. Fast-path dedup: cache first, then the ledger row
//  3. Inside one transaction: record the ledger entry, load the contract's
//     commissions that require verification, verify each one, mark the
//     entry processed
//  4. On failure: roll back, then re-record the entry and its error outside
//     the transaction so retry bookkeeping survives the rollback
//
// Business rules:
//   - One commission's verification failure never prevents the others from
//     being attempted, and as long as any commission verifies the event is
//     still marked processed; the failures are logged per commission
//   - Only when every matching commission fails does the attempt fail and
//     get retried
//   - A contract with zero commissions requiring verification is a success:
//     the entry is marked processed with nothing to verify
//   - The final attempt's failure is terminal: recorded with the retry
//     count frozen, the entry left permanently unprocessed
type ProcessEventUseCase struct {
	ledgerRepo     ports.LedgerRepository
	commissionRepo ports.CommissionRepository
	verifier       ports.VerificationService
	uow            ports.UnitOfWork
	dedup          ports.DedupCache
	logger         *slog.Logger
}

// NewProcessEventUseCase creates the use case.
func NewProcessEventUseCase(
	ledgerRepo ports.LedgerRepository,
	commissionRepo ports.CommissionRepository,
	verifier ports.VerificationService,
	uow ports.UnitOfWork,
	dedup ports.DedupCache,
	logger *slog.Logger,
) *ProcessEventUseCase {
	return &ProcessEventUseCase{
		ledgerRepo:     ledgerRepo,
		commissionRepo: commissionRepo,
		verifier:       verifier,
		uow:            uow,
		dedup:          dedup,
		logger:         logger,
	}
}

// Process implements ports.EventProcessor.
func (uc *ProcessEventUseCase) Process(ctx context.Context, event *events.CommissionAffectingPayment, attempt ports.Attempt) error {
	log := uc.logger.With(
		slog.String("event_id", event.EventID().String()),
		slog.String("payment_id", event.PaymentID.String()),
		slog.Int("attempt", attempt.Number),
	)

	if !event.AffectsCommissions() {
		log.Warn("dropping ineligible event from queue",
			slog.String("installment", string(event.Installment)))
		return nil
	}

	if uc.alreadyProcessed(ctx, event, log) {
		log.Info("event already processed, acknowledging redelivery")
		return nil
	}

	workErr := uc.uow.Execute(ctx, func(txCtx context.Context) error {
		entry, err := event.LedgerEntry()
		if err != nil {
			return err
		}
		if err := uc.ledgerRepo.Record(txCtx, entry); err != nil {
			return fmt.Errorf("failed to record ledger entry: %w", err)
		}

		commissions, err := uc.commissionRepo.FindRequiringVerification(txCtx, *event.ContractID)
		if err != nil {
			return fmt.Errorf("failed to load commissions: %w", err)
		}

		var failures []string
		for _, commission := range commissions {
			if err := uc.verifier.VerifyClientPayments(txCtx, commission.ID(), *event.ContractID, event.PaymentID); err != nil {
				log.Error("commission verification failed",
					slog.String("commission_id", commission.ID().String()),
					slog.String("error", err.Error()))
				failures = append(failures, fmt.Sprintf("commission %s: %v", commission.ID(), err))
				continue
			}
		}

		// A single commission's failure is isolated: logged, siblings still
		// attempted, event still processed. Only a clean sweep of failures
		// makes the attempt itself fail.
		if len(commissions) > 0 && len(failures) == len(commissions) {
			return fmt.Errorf("verification failed for every commission: %s", strings.Join(failures, "; "))
		}

		return uc.ledgerRepo.MarkProcessed(txCtx, event.EventID())
	})

	if workErr != nil {
		// The attempt deadline may be the very reason the transaction
		// failed; bookkeeping must not die with it.
		uc.recordFailure(context.WithoutCancel(ctx), event, workErr, attempt, log)
		return workErr
	}

	if err := uc.dedup.MarkProcessed(ctx, event.EventID()); err != nil {
		log.Debug("dedup cache write failed", slog.String("error", err.Error()))
	}
	log.Info("event processed")
	return nil
}

// alreadyProcessed consults the dedup cache, then the ledger. Cache errors
// degrade to a ledger lookup; a missing ledger row means first delivery.
func (uc *ProcessEventUseCase) alreadyProcessed(ctx context.Context, event *events.CommissionAffectingPayment, log *slog.Logger) bool {
	if hit, err := uc.dedup.IsProcessed(ctx, event.EventID()); err == nil && hit {
		return true
	} else if err != nil {
		log.Debug("dedup cache read failed", slog.String("error", err.Error()))
	}

	entry, err := uc.ledgerRepo.FindByEventID(ctx, event.EventID())
	if err != nil {
		if !errors.IsNotFound(err) {
			log.Warn("ledger lookup failed, continuing with processing",
				slog.String("error", err.Error()))
		}
		return false
	}
	if entry.Processed() {
		if cerr := uc.dedup.MarkProcessed(ctx, event.EventID()); cerr != nil {
			log.Debug("dedup cache write failed", slog.String("error", cerr.Error()))
		}
		return true
	}
	return false
}

// recordFailure persists the attempt's error after the transaction rolled
// back. The entry is re-recorded first because the rollback also discarded
// the insert; Record is a no-op when a row from an earlier attempt exists.
// Callers pass a context detached from the attempt deadline so an expired
// deadline cannot also swallow the failure record.
func (uc *ProcessEventUseCase) recordFailure(ctx context.Context, event *events.CommissionAffectingPayment, workErr error, attempt ports.Attempt, log *slog.Logger) {
	entry, err := event.LedgerEntry()
	if err != nil {
		log.Error("cannot rebuild ledger entry for failure bookkeeping", slog.String("error", err.Error()))
		return
	}
	if err := uc.ledgerRepo.Record(ctx, entry); err != nil {
		log.Error("failed to re-record ledger entry", slog.String("error", err.Error()))
		return
	}
	if err := uc.ledgerRepo.RecordError(ctx, event.EventID(), workErr.Error(), attempt.Final); err != nil {
		log.Error("failed to record attempt error", slog.String("error", err.Error()))
		return
	}
	if attempt.Final {
		log.Error("event permanently failed", slog.String("error", workErr.Error()))
	} else {
		log.Warn("event attempt failed, will retry", slog.String("error", workErr.Error()))
	}
}
