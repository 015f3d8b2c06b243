// Package sqlite is the SQLite adapter, backed by the pure-Go
// modernc.org/sqlite driver. Importing it registers the sqlite:// URL
// scheme.
package sqlite

import (
	"net/url"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/syssam/quarry"
	"github.com/syssam/quarry/dialect"
	"github.com/syssam/quarry/dialect/sql"
)

func init() {
	sql.Register(dialect.SQLite, open)
}

// open connects to the database file named by the URL. sqlite://app.db
// opens ./app.db; sqlite:///var/db/app.db opens an absolute path;
// sqlite://:memory: opens an in-memory database.
func open(u *url.URL) (dialect.Driver, error) {
	return sql.Open(dialect.SQLite, DSN(u))
}

// DSN translates a sqlite URL into the driver's data source name.
func DSN(u *url.URL) string {
	dsn := u.Host + u.Path
	if u.Opaque != "" {
		dsn = u.Opaque
	}
	if q := u.RawQuery; q != "" {
		dsn += "?" + q
	}
	return dsn
}

// Formatter returns the SQLite literal formatter. Booleans render as
// 1 and 0; string escaping doubles embedded quotes.
func Formatter() *quarry.Formatter {
	return &quarry.Formatter{
		QuoteString: func(s string) string {
			return "'" + strings.ReplaceAll(s, "'", "''") + "'"
		},
		FormatBool: func(b bool) string {
			if b {
				return "1"
			}
			return "0"
		},
	}
}
