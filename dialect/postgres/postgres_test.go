package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dsql "github.com/syssam/quarry/dialect/sql"
)

func TestRegistered(t *testing.T) {
	t.Parallel()

	assert.Contains(t, dsql.Adapters(), "postgres")
}

func TestFormatter(t *testing.T) {
	t.Parallel()

	f := Formatter()
	assert.Equal(t, "'plain'", f.Literal("plain"))
	assert.Equal(t, "'O''Brien'", f.Literal("O'Brien"))
	// Backslashes force the escape string syntax.
	assert.Equal(t, ` E'a\\b'`, f.Literal(`a\b`))
	assert.Equal(t, "TRUE", f.Literal(true))
}
