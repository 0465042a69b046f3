// Package postgres - ReceivableRepository for contract receivables.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dcastillo/commispipe/internal/application/ports"
	"github.com/dcastillo/commispipe/internal/domain/entities"
	domainErrors "github.com/dcastillo/commispipe/internal/domain/errors"
	"github.com/dcastillo/commispipe/internal/domain/valueobjects"
)

// Compile-time check
var _ ports.ReceivableRepository = (*ReceivableRepository)(nil)

// ReceivableRepository stores contract receivables. The sequence column is
// a BIGSERIAL: it freezes the insertion order that breaks due-date ties in
// installment classification.
type ReceivableRepository struct {
	pool *pgxpool.Pool
}

// NewReceivableRepository creates the repository.
func NewReceivableRepository(pool *pgxpool.Pool) *ReceivableRepository {
	return &ReceivableRepository{pool: pool}
}

func (r *ReceivableRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Save upserts the receivable by ID. The sequence is assigned by the
// database on first insert and never changes afterwards.
func (r *ReceivableRepository) Save(ctx context.Context, receivable *entities.Receivable) error {
	q := r.getQuerier(ctx)

	query := `
		INSERT INTO receivables (id, contract_id, due_date, amount_cents, currency)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			contract_id = EXCLUDED.contract_id,
			due_date = EXCLUDED.due_date,
			amount_cents = EXCLUDED.amount_cents,
			currency = EXCLUDED.currency`

	_, err := q.Exec(ctx, query,
		receivable.ID(),
		receivable.ContractID(),
		receivable.DueDate(),
		receivable.Amount().Cents(),
		receivable.Amount().Currency().Code(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: contract %v", domainErrors.ErrMissingContract, receivable.ContractID())
		}
		return fmt.Errorf("failed to save receivable: %w", err)
	}
	return nil
}

// FindByID loads one receivable.
func (r *ReceivableRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Receivable, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, contract_id, due_date, amount_cents, currency, sequence
		FROM receivables
		WHERE id = $1`

	return scanReceivable(q.QueryRow(ctx, query, id))
}

// FindByContractID returns the contract's receivables in classification
// order: due date ascending, insertion order breaking ties.
func (r *ReceivableRepository) FindByContractID(ctx context.Context, contractID uuid.UUID) ([]*entities.Receivable, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, contract_id, due_date, amount_cents, currency, sequence
		FROM receivables
		WHERE contract_id = $1
		ORDER BY due_date, sequence`

	rows, err := q.Query(ctx, query, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contract receivables: %w", err)
	}
	defer rows.Close()

	var receivables []*entities.Receivable
	for rows.Next() {
		receivable, err := scanReceivable(rows)
		if err != nil {
			return nil, err
		}
		receivables = append(receivables, receivable)
	}
	return receivables, rows.Err()
}

func scanReceivable(row pgx.Row) (*entities.Receivable, error) {
	var (
		id          uuid.UUID
		contractID  *uuid.UUID
		dueDate     time.Time
		amountCents int64
		currency    string
		sequence    int64
	)

	err := row.Scan(&id, &contractID, &dueDate, &amountCents, &currency, &sequence)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to scan receivable: %w", err)
	}

	curr, err := valueobjects.NewCurrency(currency)
	if err != nil {
		return nil, fmt.Errorf("receivable %s: %w", id, err)
	}
	amount, err := valueobjects.NewMoneyFromCents(amountCents, curr)
	if err != nil {
		return nil, fmt.Errorf("receivable %s: %w", id, err)
	}

	return entities.ReconstructReceivable(id, contractID, dueDate, amount, sequence), nil
}
