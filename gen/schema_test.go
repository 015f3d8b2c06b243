package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSchema = `
package: app
tables:
  - name: users
    primary_key: [id]
    columns:
      - {name: id, type: int64}
      - {name: email, type: string}
      - {name: created_at, type: time}
`

func TestParse(t *testing.T) {
	t.Parallel()

	s, err := Parse([]byte(validSchema))
	require.NoError(t, err)
	assert.Equal(t, "app", s.Package)
	require.Len(t, s.Tables, 1)
	assert.Equal(t, "users", s.Tables[0].Name)
	assert.Equal(t, []string{"id"}, s.Tables[0].PrimaryKey)
	assert.Len(t, s.Tables[0].Columns, 3)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bad yaml", ":\n:::", "parse schema"},
		{"no package", "tables:\n  - name: t\n    columns:\n      - {name: a, type: string}\n", "no package name"},
		{"no tables", "package: app\n", "no tables"},
		{"unnamed table", "package: app\ntables:\n  - columns:\n      - {name: a, type: string}\n", "no name"},
		{"no columns", "package: app\ntables:\n  - name: t\n", "no columns"},
		{"unknown type", "package: app\ntables:\n  - name: t\n    columns:\n      - {name: a, type: varchar}\n", `unknown type "varchar"`},
		{"pk not a column", "package: app\ntables:\n  - name: t\n    primary_key: [missing]\n    columns:\n      - {name: a, type: string}\n", "primary key missing is not a column"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSchema), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "app", s.Package)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
