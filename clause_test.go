package quarry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereCondition(t *testing.T) {
	t.Parallel()

	f := defaultFormatter
	t.Run("inclusive range", func(t *testing.T) {
		assert.Equal(t, "(age >= 18 AND age <= 30)", whereCondition(f, "age", Range{Lo: 18, Hi: 30}))
	})
	t.Run("exclusive range", func(t *testing.T) {
		assert.Equal(t, "(age >= 18 AND age < 30)", whereCondition(f, "age", Range{Lo: 18, Hi: 30, ExcludeEnd: true}))
	})
	t.Run("set membership", func(t *testing.T) {
		assert.Equal(t, "(id IN (1, 2, 3))", whereCondition(f, "id", []int{1, 2, 3}))
	})
	t.Run("empty set", func(t *testing.T) {
		assert.Equal(t, "(id IN (NULL))", whereCondition(f, "id", []int{}))
	})
	t.Run("scalar", func(t *testing.T) {
		assert.Equal(t, "(name = 'ana')", whereCondition(f, "name", "ana"))
	})
	t.Run("qualified left side", func(t *testing.T) {
		assert.Equal(t, "(items.price = 10)", whereCondition(f, "items__price", 10))
	})
}

func TestWhereList(t *testing.T) {
	t.Parallel()

	f := defaultFormatter
	t.Run("mapping", func(t *testing.T) {
		got, err := whereList(f, Cond{"b": 2, "a": 1}, nil)
		require.NoError(t, err)
		// Sorted key order keeps output deterministic.
		assert.Equal(t, "(a = 1) AND (b = 2)", got)
	})
	t.Run("fragment with args", func(t *testing.T) {
		got, err := whereList(f, "x = ? AND y = ?", []any{1, "two"})
		require.NoError(t, err)
		assert.Equal(t, "x = 1 AND y = 'two'", got)
	})
	t.Run("raw fragment", func(t *testing.T) {
		got, err := whereList(f, "age < 18 OR age > 65", nil)
		require.NoError(t, err)
		assert.Equal(t, "age < 18 OR age > 65", got)
	})
	t.Run("substituted text is not re-scanned", func(t *testing.T) {
		got, err := whereList(f, "x = ?", []any{"?"})
		require.NoError(t, err)
		assert.Equal(t, "x = '?'", got)
	})
	t.Run("not enough args", func(t *testing.T) {
		_, err := whereList(f, "x = ? AND y = ?", []any{1})
		assert.True(t, IsUsageError(err))
	})
	t.Run("too many args", func(t *testing.T) {
		_, err := whereList(f, "x = ?", []any{1, 2})
		assert.True(t, IsUsageError(err))
	})
	t.Run("unsupported shape", func(t *testing.T) {
		_, err := whereList(f, 42, nil)
		assert.True(t, IsUsageError(err))
	})
}

func TestJoinConds(t *testing.T) {
	t.Parallel()

	got := joinConds(Cond{"category_id": "id"}, "categories", "items")
	assert.Equal(t, "categories.category_id = items.id", got)

	got = joinConds(Cond{"a": "x", "b": "y"}, "t2", "t1")
	assert.Equal(t, "t2.a = t1.x AND t2.b = t1.y", got)
}

func TestReverseOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []any{Raw("name DESC")}, reverseOrder([]any{"name"}))
	assert.Equal(t, []any{Raw("name")}, reverseOrder([]any{Desc("name")}))
	assert.Equal(t,
		[]any{Raw("a DESC"), Raw("b")},
		reverseOrder([]any{"a", Desc("b")}),
	)

	// Double application round-trips.
	terms := []any{"a", Desc("b")}
	assert.Equal(t,
		[]any{Raw("a"), Raw("b DESC")},
		reverseOrder(reverseOrder(terms)),
	)
}

func TestFieldList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "*", fieldList(nil))
	assert.Equal(t, "name", fieldList([]any{"name"}))
	assert.Equal(t, "items.name, items.price AS total", fieldList([]any{"items__name", "items__price___total"}))
}

func TestSourceList(t *testing.T) {
	t.Parallel()

	_, err := sourceList(nil)
	assert.True(t, IsUsageError(err))

	got, err := sourceList([]any{"people"})
	require.NoError(t, err)
	assert.Equal(t, "people", got)

	got, err = sourceList([]any{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "a, b", got)
}
