// Package dialect defines the execution interfaces a database backend
// implements to serve quarry datasets, along with the names of the
// supported dialects.
package dialect

import "context"

// Dialect names.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two standard database operations. Generated SQL
// carries inlined literals, so args is normally an empty slice; it is
// kept in the contract for adapters that bind parameters themselves.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows. The v
	// argument receives the execution result when non-nil.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows. The v argument
	// receives the fetched rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface a database backend implements.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx is a transaction scope over a driver.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}
