// Package ports - UnitOfWork delimits database transaction boundaries.
package ports

import "context"

// UnitOfWork runs a function inside a single database transaction.
//
// The context passed to fn carries the open transaction; every repository
// call inside fn must use that context so all writes join the same
// transaction. An error from fn rolls the transaction back, nil commits.
//
// Example:
//
//	err := uow.Execute(ctx, func(txCtx context.Context) error {
//	    if err := schemeRepo.Save(txCtx, scheme); err != nil {
//	        return err
//	    }
//	    return schemeRepo.Save(txCtx, truncatedSibling)
//	})
type UnitOfWork interface {
	// Execute runs fn in a transaction. Rollback on error, commit on nil.
	Execute(ctx context.Context, fn func(context.Context) error) error

	// ExecuteWithResult is Execute for functions that produce a value.
	ExecuteWithResult(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error)
}
