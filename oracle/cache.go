package oracle

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is the cache lifetime applied when Cache.TTL is zero.
const DefaultTTL = 5 * time.Minute

// Cache is a TTL cache over a ChainQuery. It owns its clock (Now is
// injectable for tests) and its eviction policy; expiry simply triggers a
// re-fetch on the next call. Errors are never cached, so a transient oracle
// failure does not poison later lookups.
//
// A stale entry is never preferred over a live call: entries past TTL are
// discarded before the inner query is consulted.
type Cache struct {
	Chain ChainQuery
	TTL   time.Duration
	Now   func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	at    time.Time
	value any
}

// NewCache wraps chain with a TTL cache.
func NewCache(chain ChainQuery, ttl time.Duration) *Cache {
	return &Cache{Chain: chain, TTL: ttl}
}

func (c *Cache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Cache) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return DefaultTTL
}

func (c *Cache) load(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.at) > c.ttl() {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]cacheEntry)
	}
	c.entries[key] = cacheEntry{at: c.now(), value: value}
}

// Invalidate drops every cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}

func cached[T any](c *Cache, key string, fetch func() (T, error)) (T, error) {
	if v, ok := c.load(key); ok {
		return v.(T), nil
	}
	v, err := fetch()
	if err != nil {
		return v, err
	}
	c.store(key, v)
	return v, nil
}

func (c *Cache) AccountInfo(ctx context.Context, stakeAddr string) (Lookup[AccountInfo], error) {
	return cached(c, "account\x00"+stakeAddr, func() (Lookup[AccountInfo], error) {
		return c.Chain.AccountInfo(ctx, stakeAddr)
	})
}

func (c *Cache) AddressInfo(ctx context.Context, addr string) (Lookup[AddressInfo], error) {
	return cached(c, "address\x00"+addr, func() (Lookup[AddressInfo], error) {
		return c.Chain.AddressInfo(ctx, addr)
	})
}

func (c *Cache) DRepInfo(ctx context.Context, drepID string) (Lookup[DRepInfo], error) {
	return cached(c, "drep\x00"+drepID, func() (Lookup[DRepInfo], error) {
		return c.Chain.DRepInfo(ctx, drepID)
	})
}

func (c *Cache) IsCommitteeMember(ctx context.Context, coldCredentialHex string) (bool, error) {
	return cached(c, "committee\x00"+coldCredentialHex, func() (bool, error) {
		return c.Chain.IsCommitteeMember(ctx, coldCredentialHex)
	})
}

func (c *Cache) PoolPower(ctx context.Context, poolID string) (Lookup[uint64], error) {
	return cached(c, "pool\x00"+poolID, func() (Lookup[uint64], error) {
		return c.Chain.PoolPower(ctx, poolID)
	})
}

func (c *Cache) TransactionUTXOs(ctx context.Context, txID string) (Lookup[TxUTXOs], error) {
	return cached(c, "utxos\x00"+txID, func() (Lookup[TxUTXOs], error) {
		return c.Chain.TransactionUTXOs(ctx, txID)
	})
}

var _ ChainQuery = (*Cache)(nil)
