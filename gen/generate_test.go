package gen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExported(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "User", exported("user"))
	assert.Equal(t, "CreatedAt", exported("created_at"))
	assert.Equal(t, "APIKey", exported("API_key"))
}

func TestTypeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "User", typeName(Table{Name: "users"}))
	assert.Equal(t, "OrderItem", typeName(Table{Name: "order_items"}))
	assert.Equal(t, "Person", typeName(Table{Name: "people"}))
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	s, err := Parse([]byte(validSchema))
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, New(s, dir).WithWorkers(1).Generate(context.Background()))

	src, err := os.ReadFile(filepath.Join(dir, "user.go"))
	require.NoError(t, err)
	got := string(src)
	assert.Contains(t, got, "Code generated by quarrygen. DO NOT EDIT.")
	assert.Contains(t, got, "package app")
	assert.Contains(t, got, `UserTable = "users"`)
	assert.Contains(t, got, `UserEmail = "email"`)
	assert.Contains(t, got, "func NewUserModel(drv dialect.Driver, opts ...quarry.ModelOption) (*quarry.Model, error)")
	assert.Contains(t, got, "quarry.PrimaryKey(\"id\")")
	assert.Contains(t, got, "type User struct")
	assert.Contains(t, got, "func (m User) Email() string")
	assert.Contains(t, got, "func (m User) SetCreatedAt(v time.Time)")
}

func TestGenerateNoPrimaryKey(t *testing.T) {
	t.Parallel()

	s, err := Parse([]byte("package: app\ntables:\n  - name: log_lines\n    columns:\n      - {name: message, type: string}\n"))
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, New(s, dir).Generate(context.Background()))

	src, err := os.ReadFile(filepath.Join(dir, "log_line.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "quarry.NoPrimaryKey()")
}
