package sql

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/quarry/dialect"
)

func TestRegister(t *testing.T) {
	opened := ""
	Register("testdb", func(u *url.URL) (dialect.Driver, error) {
		opened = u.Host + u.Path
		return nil, nil
	})
	t.Cleanup(func() {
		adaptersMu.Lock()
		delete(adapters, "testdb")
		adaptersMu.Unlock()
	})

	assert.Contains(t, Adapters(), "testdb")

	_, err := OpenURL("testdb://localhost/app")
	require.NoError(t, err)
	assert.Equal(t, "localhost/app", opened)

	assert.Panics(t, func() { Register("testdb", func(*url.URL) (dialect.Driver, error) { return nil, nil }) })
	assert.Panics(t, func() { Register("nilfn", nil) })
}

func TestOpenURLUnknownScheme(t *testing.T) {
	_, err := OpenURL("nosuchdb://localhost/app")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forgotten import?")
}
