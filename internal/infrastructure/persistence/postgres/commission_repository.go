// Package postgres - CommissionRepository for sales commissions.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dcastillo/commispipe/internal/application/ports"
	"github.com/dcastillo/commispipe/internal/domain/entities"
	domainErrors "github.com/dcastillo/commispipe/internal/domain/errors"
	"github.com/dcastillo/commispipe/internal/domain/valueobjects"
)

// Compile-time check
var _ ports.CommissionRepository = (*CommissionRepository)(nil)

// CommissionRepository stores sales commissions.
type CommissionRepository struct {
	pool *pgxpool.Pool
}

// NewCommissionRepository creates the repository.
func NewCommissionRepository(pool *pgxpool.Pool) *CommissionRepository {
	return &CommissionRepository{pool: pool}
}

func (r *CommissionRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Save upserts the commission by ID.
func (r *CommissionRepository) Save(ctx context.Context, commission *entities.Commission) error {
	q := r.getQuerier(ctx)

	query := `
		INSERT INTO commissions (
			id, contract_id, salesperson_id, amount_cents, currency,
			requires_client_payment_verification, verification_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			amount_cents = EXCLUDED.amount_cents,
			currency = EXCLUDED.currency,
			requires_client_payment_verification = EXCLUDED.requires_client_payment_verification,
			verification_status = EXCLUDED.verification_status`

	_, err := q.Exec(ctx, query,
		commission.ID(),
		commission.ContractID(),
		commission.SalespersonID(),
		commission.Amount().Cents(),
		commission.Amount().Currency().Code(),
		commission.RequiresClientPaymentVerification(),
		string(commission.VerificationStatus()),
	)
	if err != nil {
		return fmt.Errorf("failed to save commission: %w", err)
	}
	return nil
}

// FindByID loads one commission.
func (r *CommissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Commission, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, contract_id, salesperson_id, amount_cents, currency,
		       requires_client_payment_verification, verification_status
		FROM commissions
		WHERE id = $1`

	return scanCommission(q.QueryRow(ctx, query, id))
}

// FindRequiringVerification returns the contract's commissions that are
// flagged for verification and not yet fully verified. Ordered by ID so
// the worker's per-commission loop is deterministic across retries.
func (r *CommissionRepository) FindRequiringVerification(ctx context.Context, contractID uuid.UUID) ([]*entities.Commission, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, contract_id, salesperson_id, amount_cents, currency,
		       requires_client_payment_verification, verification_status
		FROM commissions
		WHERE contract_id = $1
		  AND requires_client_payment_verification = TRUE
		  AND verification_status <> 'FULLY_VERIFIED'
		ORDER BY id`

	rows, err := q.Query(ctx, query, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to query commissions: %w", err)
	}
	defer rows.Close()

	var commissions []*entities.Commission
	for rows.Next() {
		commission, err := scanCommission(rows)
		if err != nil {
			return nil, err
		}
		commissions = append(commissions, commission)
	}
	return commissions, rows.Err()
}

func scanCommission(row pgx.Row) (*entities.Commission, error) {
	var (
		id                   uuid.UUID
		contractID           uuid.UUID
		salespersonID        uuid.UUID
		amountCents          int64
		currency             string
		requiresVerification bool
		verificationStatus   string
	)

	err := row.Scan(&id, &contractID, &salespersonID, &amountCents, &currency, &requiresVerification, &verificationStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to scan commission: %w", err)
	}

	curr, err := valueobjects.NewCurrency(currency)
	if err != nil {
		return nil, fmt.Errorf("commission %s: %w", id, err)
	}
	amount, err := valueobjects.NewMoneyFromCents(amountCents, curr)
	if err != nil {
		return nil, fmt.Errorf("commission %s: %w", id, err)
	}

	return entities.ReconstructCommission(
		id, contractID, salespersonID, amount,
		requiresVerification, entities.VerificationStatus(verificationStatus),
	), nil
}
