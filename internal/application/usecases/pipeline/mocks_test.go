package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dcastillo/commispipe/internal/application/ports"
	"github.com/dcastillo/commispipe/internal/domain/entities"
	domainErrors "github.com/dcastillo/commispipe/internal/domain/errors"
	"github.com/dcastillo/commispipe/internal/domain/events"
	"github.com/dcastillo/commispipe/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// Mock repositories and ports

type mockReceivableRepo struct {
	findByIDFunc         func(ctx context.Context, id uuid.UUID) (*entities.Receivable, error)
	findByContractIDFunc func(ctx context.Context, contractID uuid.UUID) ([]*entities.Receivable, error)
}

func (m *mockReceivableRepo) Save(ctx context.Context, receivable *entities.Receivable) error {
	return nil
}

func (m *mockReceivableRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Receivable, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, domainErrors.ErrEntityNotFound
}

func (m *mockReceivableRepo) FindByContractID(ctx context.Context, contractID uuid.UUID) ([]*entities.Receivable, error) {
	if m.findByContractIDFunc != nil {
		return m.findByContractIDFunc(ctx, contractID)
	}
	return nil, nil
}

type mockCommissionRepo struct {
	findRequiringVerificationFunc func(ctx context.Context, contractID uuid.UUID) ([]*entities.Commission, error)
}

func (m *mockCommissionRepo) Save(ctx context.Context, commission *entities.Commission) error {
	return nil
}

func (m *mockCommissionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Commission, error) {
	return nil, domainErrors.ErrEntityNotFound
}

func (m *mockCommissionRepo) FindRequiringVerification(ctx context.Context, contractID uuid.UUID) ([]*entities.Commission, error) {
	if m.findRequiringVerificationFunc != nil {
		return m.findRequiringVerificationFunc(ctx, contractID)
	}
	return nil, nil
}

type mockLedgerRepo struct {
	entries         map[uuid.UUID]*entities.LedgerEntry
	recordFunc      func(ctx context.Context, entry *entities.LedgerEntry) error
	markedProcessed []uuid.UUID
	recordedErrors  []recordedError
}

type recordedError struct {
	eventID uuid.UUID
	message string
	final   bool
}

func newMockLedgerRepo() *mockLedgerRepo {
	return &mockLedgerRepo{entries: make(map[uuid.UUID]*entities.LedgerEntry)}
}

func (m *mockLedgerRepo) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	if m.recordFunc != nil {
		return m.recordFunc(ctx, entry)
	}
	if _, exists := m.entries[entry.EventID()]; exists {
		return nil // idempotent no-op
	}
	m.entries[entry.EventID()] = entry
	return nil
}

func (m *mockLedgerRepo) FindByEventID(ctx context.Context, eventID uuid.UUID) (*entities.LedgerEntry, error) {
	if entry, ok := m.entries[eventID]; ok {
		return entry, nil
	}
	return nil, domainErrors.ErrEntityNotFound
}

func (m *mockLedgerRepo) MarkProcessed(ctx context.Context, eventID uuid.UUID) error {
	m.markedProcessed = append(m.markedProcessed, eventID)
	if entry, ok := m.entries[eventID]; ok {
		entry.MarkProcessed()
	}
	return nil
}

func (m *mockLedgerRepo) RecordError(ctx context.Context, eventID uuid.UUID, message string, final bool) error {
	m.recordedErrors = append(m.recordedErrors, recordedError{eventID: eventID, message: message, final: final})
	if entry, ok := m.entries[eventID]; ok {
		entry.RecordFailure(message, final)
	}
	return nil
}

func (m *mockLedgerRepo) List(ctx context.Context, filter ports.LedgerFilter, offset, limit int) ([]*entities.LedgerEntry, error) {
	result := make([]*entities.LedgerEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		result = append(result, entry)
	}
	return result, nil
}

type mockEventQueue struct {
	enqueued    []*events.CommissionAffectingPayment
	enqueueFunc func(ctx context.Context, event *events.CommissionAffectingPayment) error
}

func (m *mockEventQueue) Enqueue(ctx context.Context, event *events.CommissionAffectingPayment) error {
	if m.enqueueFunc != nil {
		return m.enqueueFunc(ctx, event)
	}
	m.enqueued = append(m.enqueued, event)
	return nil
}

type mockVerifier struct {
	verifyFunc func(ctx context.Context, commissionID, contractID, paymentID uuid.UUID) error
	calls      []uuid.UUID // commission IDs in call order
}

func (m *mockVerifier) VerifyClientPayments(ctx context.Context, commissionID, contractID, paymentID uuid.UUID) error {
	m.calls = append(m.calls, commissionID)
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, commissionID, contractID, paymentID)
	}
	return nil
}

type mockDedupCache struct {
	processed map[uuid.UUID]bool
	readErr   error
}

func newMockDedupCache() *mockDedupCache {
	return &mockDedupCache{processed: make(map[uuid.UUID]bool)}
}

func (m *mockDedupCache) MarkProcessed(ctx context.Context, eventID uuid.UUID) error {
	m.processed[eventID] = true
	return nil
}

func (m *mockDedupCache) IsProcessed(ctx context.Context, eventID uuid.UUID) (bool, error) {
	if m.readErr != nil {
		return false, m.readErr
	}
	return m.processed[eventID], nil
}

type mockUnitOfWork struct {
	executeFunc func(ctx context.Context, fn func(context.Context) error) error
	executions  int
}

func (m *mockUnitOfWork) Execute(ctx context.Context, fn func(context.Context) error) error {
	m.executions++
	if m.executeFunc != nil {
		return m.executeFunc(ctx, fn)
	}
	return fn(ctx)
}

func (m *mockUnitOfWork) ExecuteWithResult(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	return fn(ctx)
}

// Test fixtures

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMoney(amount string) valueobjects.Money {
	m, err := valueobjects.NewMoney(amount, valueobjects.PEN)
	if err != nil {
		panic(err)
	}
	return m
}

func testReceivable(contractID *uuid.UUID, dueDate time.Time, sequence int64) *entities.Receivable {
	return entities.ReconstructReceivable(uuid.New(), contractID, dueDate, testMoney("500.00"), sequence)
}

func testCommission(contractID uuid.UUID, requiresVerification bool) *entities.Commission {
	return entities.ReconstructCommission(
		uuid.New(), contractID, uuid.New(), testMoney("150.00"),
		requiresVerification, entities.VerificationStatusPending,
	)
}

func testEvent(contractID *uuid.UUID, installment entities.InstallmentType) *events.CommissionAffectingPayment {
	return events.NewCommissionAffectingPayment(
		uuid.New(), uuid.New(), contractID, uuid.New(),
		testMoney("1250.00"), time.Now(), installment, nil,
	)
}
