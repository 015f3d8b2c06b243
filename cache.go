package quarry

import (
	"context"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache stores encoded query results. Implement it with a preferred
// backing store (Redis, Memcached, in-memory); MemCache is a ready
// in-process implementation.
//
// Caching is strictly opt-in through AllCached. The dataset iteration
// contract is unchanged: Each and All always re-issue their query.
type Cache interface {
	// Get retrieves a value. It returns nil, nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL. A zero TTL never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Clear removes all values.
	Clear(ctx context.Context) error
}

// MemCache is an in-process Cache.
type MemCache struct {
	mu sync.RWMutex
	m  map[string]memEntry
}

type memEntry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

// NewMemCache returns an empty in-process cache.
func NewMemCache() *MemCache {
	return &MemCache{m: make(map[string]memEntry)}
}

// Get implements Cache.
func (c *MemCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, nil
	}
	return e.value, nil
}

// Set implements Cache.
func (c *MemCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memEntry{value: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.m[key] = e
	c.mu.Unlock()
	return nil
}

// Delete implements Cache.
func (c *MemCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	return nil
}

// Clear implements Cache.
func (c *MemCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.m = make(map[string]memEntry)
	c.mu.Unlock()
	return nil
}

// EncodeRows encodes rows for cache storage.
func EncodeRows(rows []Row) ([]byte, error) {
	return msgpack.Marshal(rows)
}

// DecodeRows decodes rows from cache storage.
func DecodeRows(data []byte) ([]Row, error) {
	var rows []Row
	if err := msgpack.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// AllCached collects the dataset's rows through the cache, keyed by the
// generated SELECT text. A miss executes the query and stores the
// encoded result with the given TTL.
func (d *Dataset) AllCached(ctx context.Context, c Cache, ttl time.Duration) ([]Row, error) {
	key, err := d.SelectSQL()
	if err != nil {
		return nil, err
	}
	if data, err := c.Get(ctx, key); err != nil {
		return nil, err
	} else if data != nil {
		return DecodeRows(data)
	}
	rows, err := d.All(ctx)
	if err != nil {
		return nil, err
	}
	data, err := EncodeRows(rows)
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return nil, err
	}
	return rows, nil
}
