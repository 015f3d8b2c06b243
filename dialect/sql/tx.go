package sql

import (
	"context"
	"fmt"

	"github.com/syssam/quarry/dialect"
)

// txKey carries the active transaction through the context.
type txKey struct{}

// NewTxContext returns a context carrying the given transaction. Every
// statement issued with the returned context joins that transaction.
func NewTxContext(ctx context.Context, tx dialect.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction carried by the context, if any.
func TxFromContext(ctx context.Context) (dialect.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(dialect.Tx)
	return tx, ok
}

// RollbackError wraps a rollback failure together with the error that
// triggered the rollback.
type RollbackError struct {
	Err   error // Rollback failure
	Cause error // Original error that triggered the rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("dialect/sql: rollback failed: %v (caused by: %v)", e.Err, e.Cause)
}

// Unwrap returns the original error that triggered the rollback.
func (e *RollbackError) Unwrap() error {
	return e.Cause
}

// Transaction runs fn inside a transaction on the given driver. The
// active transaction travels in the context passed to fn, so statements
// issued through it join the transaction, and a nested Transaction call
// reuses the open transaction instead of starting a new one.
//
// The transaction is rolled back when fn returns an error or panics, and
// the original failure re-propagates after the rollback completes. The
// commit runs only when fn returns nil.
func Transaction(ctx context.Context, drv dialect.Driver, fn func(ctx context.Context, tx dialect.ExecQuerier) error) (err error) {
	if tx, ok := TxFromContext(ctx); ok {
		// Already inside a transaction: reuse it. Commit and rollback
		// remain owned by the outermost call.
		return fn(ctx, tx)
	}
	tx, err := drv.Tx(ctx)
	if err != nil {
		return err
	}
	done := false
	defer func() {
		if done {
			return
		}
		// Reached on panic or on an error return below. The rollback
		// runs on every non-commit exit path.
		if rerr := tx.Rollback(); rerr != nil && err != nil {
			err = &RollbackError{Err: rerr, Cause: err}
		} else if rerr != nil {
			err = rerr
		}
	}()
	if err = fn(NewTxContext(ctx, tx), tx); err != nil {
		return err
	}
	done = true
	return tx.Commit()
}
