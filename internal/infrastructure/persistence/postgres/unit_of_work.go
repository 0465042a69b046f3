// Package postgres - ports.UnitOfWork implementation over pgx transactions.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dcastillo/commispipe/internal/application/ports"
)

// Compile-time check
var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork delimits a database transaction. Thread-safe: transactions are
// taken from the pool per Execute call. Default isolation is READ COMMITTED.
type UnitOfWork struct {
	pool *pgxpool.Pool
	opts pgx.TxOptions
}

// NewUnitOfWork creates a UnitOfWork with default isolation.
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{
		pool: pool,
		opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
	}
}

// NewUnitOfWorkWithIsolation creates a UnitOfWork with the given isolation
// level.
func NewUnitOfWorkWithIsolation(pool *pgxpool.Pool, isolation pgx.TxIsoLevel) *UnitOfWork {
	return &UnitOfWork{
		pool: pool,
		opts: pgx.TxOptions{IsoLevel: isolation},
	}
}

// Execute runs fn inside a transaction. A nil return commits, an error
// rolls back, a panic rolls back and re-panics. When the context already
// carries a transaction, fn joins it instead of nesting.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(context.Context) error) error {
	if hasTx(ctx) {
		return fn(ctx)
	}

	tx, err := u.pool.BeginTx(ctx, u.opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	txCtx := injectTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ExecuteWithResult is Execute for functions that produce a value.
func (u *UnitOfWork) ExecuteWithResult(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	var result interface{}

	err := u.Execute(ctx, func(txCtx context.Context) error {
		var fnErr error
		result, fnErr = fn(txCtx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

// serializableMaxRetries bounds how often a scheme transaction is replayed
// after a serialization failure before the error surfaces to the caller.
const serializableMaxRetries = 3

// Compile-time check
var _ ports.UnitOfWork = (*SerializableUnitOfWork)(nil)

// SerializableUnitOfWork runs transactions at SERIALIZABLE isolation and
// transparently replays them on serialization failures and deadlocks. The
// scheme consistency pass uses it so concurrent writes around the same
// boundary date cannot both miss each other's truncation.
type SerializableUnitOfWork struct {
	inner *UnitOfWork
}

// NewSerializableUnitOfWork creates a SerializableUnitOfWork over pool.
func NewSerializableUnitOfWork(pool *pgxpool.Pool) *SerializableUnitOfWork {
	return &SerializableUnitOfWork{
		inner: NewUnitOfWorkWithIsolation(pool, pgx.Serializable),
	}
}

// Execute runs fn in a SERIALIZABLE transaction, retrying on serialization
// failures. fn may run more than once and must be safe to replay.
func (u *SerializableUnitOfWork) Execute(ctx context.Context, fn func(context.Context) error) error {
	return u.inner.ExecuteWithRetry(ctx, serializableMaxRetries, fn)
}

// ExecuteWithResult is Execute for functions that produce a value.
func (u *SerializableUnitOfWork) ExecuteWithResult(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	var result interface{}

	err := u.Execute(ctx, func(txCtx context.Context) error {
		var fnErr error
		result, fnErr = fn(txCtx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

// ExecuteWithRetry retries the transaction on serialization failures and
// deadlocks, up to maxRetries additional attempts.
func (u *UnitOfWork) ExecuteWithRetry(ctx context.Context, maxRetries int, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := u.Execute(ctx, fn)
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
