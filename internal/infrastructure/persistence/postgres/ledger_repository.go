// Package postgres - LedgerRepository, the durable commission event ledger.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dcastillo/commispipe/internal/application/ports"
	"github.com/dcastillo/commispipe/internal/domain/entities"
	domainErrors "github.com/dcastillo/commispipe/internal/domain/errors"
)

// Compile-time check
var _ ports.LedgerRepository = (*LedgerRepository)(nil)

// LedgerRepository stores one row per commission-affecting event. The
// event_id primary key plus ON CONFLICT DO NOTHING makes Record idempotent
// under at-least-once delivery.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates the repository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Record inserts the entry, silently keeping the stored row on conflict.
func (r *LedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	q := r.getQuerier(ctx)

	query := `
		INSERT INTO commission_event_ledger (
			event_id, event_type, payment_id, contract_id, installment_type,
			event_data, triggered_by, processed, processed_at,
			error_message, retry_count, last_retry_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (event_id) DO NOTHING`

	_, err := q.Exec(ctx, query,
		entry.EventID(),
		entry.EventType(),
		entry.PaymentID(),
		entry.ContractID(),
		string(entry.Installment()),
		entry.EventData(),
		entry.TriggeredBy(),
		entry.Processed(),
		entry.ProcessedAt(),
		entry.ErrorMessage(),
		entry.RetryCount(),
		entry.LastRetryAt(),
		entry.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}
	return nil
}

// FindByEventID loads one entry.
func (r *LedgerRepository) FindByEventID(ctx context.Context, eventID uuid.UUID) (*entities.LedgerEntry, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT event_id, event_type, payment_id, contract_id, installment_type,
		       event_data, triggered_by, processed, processed_at,
		       error_message, retry_count, last_retry_at, created_at
		FROM commission_event_ledger
		WHERE event_id = $1`

	return scanLedgerEntry(q.QueryRow(ctx, query, eventID))
}

// MarkProcessed stamps the entry as processed and clears its error.
func (r *LedgerRepository) MarkProcessed(ctx context.Context, eventID uuid.UUID) error {
	q := r.getQuerier(ctx)

	query := `
		UPDATE commission_event_ledger
		SET processed = TRUE, processed_at = NOW(), error_message = ''
		WHERE event_id = $1`

	tag, err := q.Exec(ctx, query, eventID)
	if err != nil {
		return fmt.Errorf("failed to mark ledger entry processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ledger entry %s", domainErrors.ErrEntityNotFound, eventID)
	}
	return nil
}

// RecordError stores the attempt's error. The retry count only moves on
// non-final failures, so a fully exhausted event keeps the count of retries
// that were actually scheduled.
func (r *LedgerRepository) RecordError(ctx context.Context, eventID uuid.UUID, message string, final bool) error {
	q := r.getQuerier(ctx)

	query := `
		UPDATE commission_event_ledger
		SET error_message = $2,
		    last_retry_at = NOW(),
		    retry_count = retry_count + CASE WHEN $3 THEN 0 ELSE 1 END
		WHERE event_id = $1`

	tag, err := q.Exec(ctx, query, eventID, message, final)
	if err != nil {
		return fmt.Errorf("failed to record ledger error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ledger entry %s", domainErrors.ErrEntityNotFound, eventID)
	}
	return nil
}

// List returns entries matching the filter, newest first.
func (r *LedgerRepository) List(ctx context.Context, filter ports.LedgerFilter, offset, limit int) ([]*entities.LedgerEntry, error) {
	q := r.getQuerier(ctx)

	var (
		conditions []string
		args       []any
	)
	addArg := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.ContractID != nil {
		addArg("contract_id = $%d", *filter.ContractID)
	}
	if filter.PaymentID != nil {
		addArg("payment_id = $%d", *filter.PaymentID)
	}
	if filter.Processed != nil {
		addArg("processed = $%d", *filter.Processed)
	}
	if filter.Failed != nil && *filter.Failed {
		conditions = append(conditions, "processed = FALSE AND error_message <> ''")
	}

	query := `
		SELECT event_id, event_type, payment_id, contract_id, installment_type,
		       event_data, triggered_by, processed, processed_at,
		       error_message, retry_count, last_retry_at, created_at
		FROM commission_event_ledger`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// scanLedgerEntry maps one row to the entity.
func scanLedgerEntry(row pgx.Row) (*entities.LedgerEntry, error) {
	var (
		eventID      uuid.UUID
		eventType    string
		paymentID    uuid.UUID
		contractID   *uuid.UUID
		installment  string
		eventData    []byte
		triggeredBy  *uuid.UUID
		processed    bool
		processedAt  *time.Time
		errorMessage string
		retryCount   int
		lastRetryAt  *time.Time
		createdAt    time.Time
	)

	err := row.Scan(
		&eventID, &eventType, &paymentID, &contractID, &installment,
		&eventData, &triggeredBy, &processed, &processedAt,
		&errorMessage, &retryCount, &lastRetryAt, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
	}

	return entities.ReconstructLedgerEntry(
		eventID, eventType, paymentID, contractID,
		entities.InstallmentType(installment), eventData, triggeredBy,
		processed, processedAt, errorMessage, retryCount, lastRetryAt, createdAt,
	), nil
}
