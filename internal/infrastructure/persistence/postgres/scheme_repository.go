// Package postgres - SchemeRepository for commission schemes.
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
)

// Compile-time check
var _ ports.SchemeRepository = (*SchemeRepository)(nil)

// SchemeRepository stores commission schemes. Effective dates are DATE
// columns; a NULL effective_to means the scheme is open-ended.
type SchemeRepository struct {
	pool *pgxpool.Pool
}

// NewSchemeRepository creates the repository.
func NewSchemeRepository(pool *pgxpool.Pool) *SchemeRepository {
	return &SchemeRepository{pool: pool}
}

func (r *SchemeRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Save upserts the scheme by ID.
func (r *SchemeRepository) Save(ctx context.Context, scheme *entities.CommissionScheme) error {
	q := r.getQuerier(ctx)

	query := `
		INSERT INTO commission_schemes (
			id, name, effective_from, effective_to, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			effective_from = EXCLUDED.effective_from,
			effective_to = EXCLUDED.effective_to,
			updated_at = EXCLUDED.updated_at`

	_, err := q.Exec(ctx, query,
		scheme.ID(),
		scheme.Name(),
		scheme.EffectiveFrom(),
		scheme.EffectiveTo(),
		scheme.CreatedAt(),
		scheme.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save scheme: %w", err)
	}
	return nil
}

// FindByID loads one scheme.
func (r *SchemeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.CommissionScheme, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, name, effective_from, effective_to, created_at, updated_at
		FROM commission_schemes
		WHERE id = $1`

	return scanScheme(q.QueryRow(ctx, query, id))
}

// FindOverlapping returns schemes that started strictly before the boundary
// and whose interval still covers it. FOR UPDATE locks the rows so two
// concurrent consistency passes around the same boundary serialize instead
// of both truncating stale state.
func (r *SchemeRepository) FindOverlapping(ctx context.Context, from time.Time, excludeID uuid.UUID) ([]*entities.CommissionScheme, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, name, effective_from, effective_to, created_at, updated_at
		FROM commission_schemes
		WHERE id <> $2
		  AND effective_from IS NOT NULL
		  AND effective_from < $1
		  AND (effective_to IS NULL OR effective_to >= $1)
		ORDER BY effective_from
		FOR UPDATE`

	rows, err := q.Query(ctx, query, from, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping schemes: %w", err)
	}
	defer rows.Close()

	return collectSchemes(rows)
}

// List returns schemes ordered by effective start date, drafts last.
func (r *SchemeRepository) List(ctx context.Context, offset, limit int) ([]*entities.CommissionScheme, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, name, effective_from, effective_to, created_at, updated_at
		FROM commission_schemes
		ORDER BY effective_from NULLS LAST, created_at
		LIMIT $1 OFFSET $2`

	rows, err := q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemes: %w", err)
	}
	defer rows.Close()

	return collectSchemes(rows)
}

func collectSchemes(rows pgx.Rows) ([]*entities.CommissionScheme, error) {
	var schemes []*entities.CommissionScheme
	for rows.Next() {
		scheme, err := scanScheme(rows)
		if err != nil {
			return nil, err
		}
		schemes = append(schemes, scheme)
	}
	return schemes, rows.Err()
}

func scanScheme(row pgx.Row) (*entities.CommissionScheme, error) {
	var (
		id            uuid.UUID
		name          string
		effectiveFrom *time.Time
		effectiveTo   *time.Time
		createdAt     time.Time
		updatedAt     time.Time
	)

	err := row.Scan(&id, &name, &effectiveFrom, &effectiveTo, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to scan scheme: %w", err)
	}

	return entities.ReconstructCommissionScheme(id, name, effectiveFrom, effectiveTo, createdAt, updatedAt), nil
}
