package quarry

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemCache()

	v, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	v, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, c.Delete(ctx, "k"))
	v, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Clear(ctx))
	v, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMemCacheExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemCache()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Nanosecond))
	time.Sleep(10 * time.Millisecond)

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestEncodeDecodeRows(t *testing.T) {
	t.Parallel()

	rows := []Row{{"id": int64(1), "name": "ana"}, {"id": int64(2), "name": "bob"}}
	data, err := EncodeRows(rows)
	require.NoError(t, err)

	got, err := DecodeRows(data)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ana", got[0]["name"])
	assert.Equal(t, int64(2), got[1]["id"])
}

func TestAllCached(t *testing.T) {
	t.Parallel()

	ds, mock := mockDataset(t)
	people := ds.From("people")
	c := NewMemCache()
	ctx := context.Background()

	// First call misses and executes; second is served from the cache
	// with no further query.
	mock.ExpectQuery("SELECT * FROM people").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "ana"))

	for i := 0; i < 2; i++ {
		rows, err := people.AllCached(ctx, c, time.Minute)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "ana", rows[0]["name"])
	}
	require.NoError(t, mock.ExpectationsWereMet())

	// A differently shaped dataset has its own cache key.
	mock.ExpectQuery("SELECT * FROM people WHERE (id = 1)").WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(1))
	_, err := people.Where(Cond{"id": 1}).AllCached(ctx, c, time.Minute)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
