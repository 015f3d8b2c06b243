package sql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/quarry/dialect"
)

func TestIsValidIdentifier(t *testing.T) {
	t.Parallel()

	valid := []string{"users", "user_id", "_private", "schema.table", "t2"}
	for _, s := range valid {
		assert.True(t, IsValidIdentifier(s), s)
	}
	invalid := []string{"", "2fast", "na me", "semi;colon", "da'sh"}
	for _, s := range invalid {
		assert.False(t, IsValidIdentifier(s), s)
	}
}

func TestEscapeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", EscapeString("plain"))
	assert.Equal(t, "O''Brien", EscapeString("O'Brien"))
	assert.Equal(t, `a\\b`, EscapeString(`a\b`))
	assert.Equal(t, `\\''`, EscapeString(`\'`))
}

func TestDriverDialect(t *testing.T) {
	t.Parallel()

	assert.Equal(t, dialect.MySQL, NewDriver("mysql+ocsql", Conn{}).Dialect())
	assert.Equal(t, dialect.Postgres, NewDriver("postgres", Conn{}).Dialect())
	assert.Equal(t, "custom", NewDriver("custom", Conn{}).Dialect())
}

func TestConnExec(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO t DEFAULT VALUES").WillReturnResult(sqlmock.NewResult(3, 1))
	var res Result
	require.NoError(t, drv.Exec(ctx, "INSERT INTO t DEFAULT VALUES", []any{}, &res))
	id, err := res.LastInsertId()
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	mock.ExpectExec("DELETE FROM t").WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, drv.Exec(ctx, "DELETE FROM t", []any{}, nil))

	// Bad argument shapes are rejected before touching the database.
	assert.Error(t, drv.Exec(ctx, "DELETE FROM t", "args", nil))
	assert.Error(t, drv.Exec(ctx, "DELETE FROM t", []any{}, "out"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConnQuery(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT id FROM t").WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	var rows Rows
	require.NoError(t, drv.Query(ctx, "SELECT id FROM t", []any{}, &rows))
	defer rows.Close()
	var got []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		got = append(got, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int64{1, 2}, got)

	assert.Error(t, drv.Query(ctx, "SELECT id FROM t", []any{}, "out"))
	require.NoError(t, mock.ExpectationsWereMet())
}
