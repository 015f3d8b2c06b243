package sqlite

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dsql "github.com/syssam/quarry/dialect/sql"
)

func TestDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rawurl string
		want   string
	}{
		{"sqlite://app.db", "app.db"},
		{"sqlite:///var/db/app.db", "/var/db/app.db"},
		{"sqlite://:memory:", ":memory:"},
		{"sqlite:file.db", "file.db"},
		{"sqlite://app.db?_pragma=busy_timeout(5000)", "app.db?_pragma=busy_timeout(5000)"},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.rawurl)
		require.NoError(t, err, tt.rawurl)
		assert.Equal(t, tt.want, DSN(u), tt.rawurl)
	}
}

func TestRegistered(t *testing.T) {
	t.Parallel()

	assert.Contains(t, dsql.Adapters(), "sqlite")
}

func TestFormatter(t *testing.T) {
	t.Parallel()

	f := Formatter()
	assert.Equal(t, "'O''Brien'", f.Literal("O'Brien"))
	assert.Equal(t, "1", f.Literal(true))
	assert.Equal(t, "0", f.Literal(false))
}
