package sql

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/syssam/quarry/dialect"
)

// Gate bounds the number of statements in flight on a driver. Checkout
// blocks until a slot frees up or the context is canceled; callers see
// an opaque blocking call. Statements inside an open transaction run on
// the transaction's slot and do not acquire again, so a transaction body
// cannot deadlock against its own gate.
type Gate struct {
	drv dialect.Driver
	sem *semaphore.Weighted
}

// Limit wraps the driver with a gate of n concurrent slots.
func Limit(drv dialect.Driver, n int64) *Gate {
	return &Gate{drv: drv, sem: semaphore.NewWeighted(n)}
}

// Exec acquires a slot and executes the statement.
func (g *Gate) Exec(ctx context.Context, query string, args, v any) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)
	return g.drv.Exec(ctx, query, args, v)
}

// Query acquires a slot and executes the query.
func (g *Gate) Query(ctx context.Context, query string, args, v any) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)
	return g.drv.Query(ctx, query, args, v)
}

// Tx acquires a slot for the whole transaction and returns it wrapped so
// the slot is released on commit or rollback.
func (g *Gate) Tx(ctx context.Context) (dialect.Tx, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	tx, err := g.drv.Tx(ctx)
	if err != nil {
		g.sem.Release(1)
		return nil, err
	}
	return &gatedTx{Tx: tx, g: g}, nil
}

// Close closes the underlying driver.
func (g *Gate) Close() error { return g.drv.Close() }

// Dialect returns the dialect name of the underlying driver.
func (g *Gate) Dialect() string { return g.drv.Dialect() }

var _ dialect.Driver = (*Gate)(nil)

type gatedTx struct {
	dialect.Tx
	g    *Gate
	done bool
}

func (t *gatedTx) Commit() error {
	t.release()
	return t.Tx.Commit()
}

func (t *gatedTx) Rollback() error {
	t.release()
	return t.Tx.Rollback()
}

func (t *gatedTx) release() {
	if !t.done {
		t.done = true
		t.g.sem.Release(1)
	}
}
