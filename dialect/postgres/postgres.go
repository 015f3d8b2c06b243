// Package postgres is the PostgreSQL adapter, backed by lib/pq.
// Importing it registers the postgres:// URL scheme.
package postgres

import (
	"net/url"

	"github.com/lib/pq"

	"github.com/syssam/quarry"
	"github.com/syssam/quarry/dialect"
	"github.com/syssam/quarry/dialect/sql"
)

func init() {
	sql.Register(dialect.Postgres, open)
}

// open connects with the full URL; lib/pq accepts postgres:// URLs as
// connection strings directly.
func open(u *url.URL) (dialect.Driver, error) {
	return sql.Open(dialect.Postgres, u.String())
}

// Formatter returns the PostgreSQL literal formatter. String quoting
// goes through pq.QuoteLiteral, which doubles quotes, escapes
// backslashes and switches to E'' syntax when needed.
func Formatter() *quarry.Formatter {
	return &quarry.Formatter{
		QuoteString: pq.QuoteLiteral,
	}
}
