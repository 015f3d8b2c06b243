package sql

import (
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/syssam/quarry/dialect"
)

// OpenFunc opens a driver for a parsed connection URL.
type OpenFunc func(u *url.URL) (dialect.Driver, error)

var (
	adaptersMu sync.RWMutex
	adapters   = make(map[string]OpenFunc)
)

// Register makes an adapter available under the given URL scheme. It is
// intended to be called from adapter package init functions, the way
// database/sql drivers register themselves. Registering the same scheme
// twice panics.
func Register(scheme string, fn OpenFunc) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	if fn == nil {
		panic("dialect/sql: Register adapter is nil")
	}
	if _, dup := adapters[scheme]; dup {
		panic("dialect/sql: Register called twice for adapter " + scheme)
	}
	adapters[scheme] = fn
}

// Adapters returns the sorted list of registered schemes.
func Adapters() []string {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()
	list := make([]string, 0, len(adapters))
	for scheme := range adapters {
		list = append(list, scheme)
	}
	sort.Strings(list)
	return list
}

// OpenURL opens a driver by dispatching on the URL's scheme.
func OpenURL(rawurl string) (dialect.Driver, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: parse url: %w", err)
	}
	adaptersMu.RLock()
	fn, ok := adapters[u.Scheme]
	adaptersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("dialect/sql: unknown adapter scheme %q (forgotten import?)", u.Scheme)
	}
	return fn(u)
}
