package quarry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	c, err := ParseConfig([]byte("url: postgres://localhost/app\nmax_statements: 16\nslow_query: 250ms\nlog_queries: true\n"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/app", c.URL)
	assert.Equal(t, int64(16), c.MaxStatements)
	assert.Equal(t, 250*time.Millisecond, time.Duration(c.SlowQuery))
	assert.True(t, c.LogQueries)
}

func TestParseConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig([]byte("max_statements: 16\n"))
	assert.True(t, IsUsageError(err))

	_, err = ParseConfig([]byte("url: sqlite://app.db\nslow_query: nonsense\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte(":\n:::"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "db.yaml")
	require.NoError(t, os.WriteFile(path, []byte("url: sqlite://:memory:\n"), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite://:memory:", c.URL)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigOpenUnknownScheme(t *testing.T) {
	t.Parallel()

	// No adapter packages are imported by this test binary.
	c := &Config{URL: "oracle://localhost/app"}
	_, err := c.Open()
	assert.Error(t, err)
}
