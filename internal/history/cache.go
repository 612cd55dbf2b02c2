package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type cacheEntry struct {
	closes  []float64
	fetched time.Time
}

// CachedFetcher serves recent results from an LRU cache and refreshes
// entries older than the TTL. It is safe for concurrent use.
type CachedFetcher struct {
	next  Fetcher
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewCachedFetcher wraps next with a cache holding up to size tickers.
func NewCachedFetcher(next Fetcher, size int, ttl time.Duration) (*CachedFetcher, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("could not create history cache: %w", err)
	}
	return &CachedFetcher{next: next, cache: cache, ttl: ttl, now: time.Now}, nil
}

// History returns a cached copy when fresh and otherwise asks the wrapped
// fetcher. Errors are not cached.
func (c *CachedFetcher) History(ctx context.Context, ticker string) ([]float64, error) {
	key := strings.ToUpper(strings.TrimSpace(ticker))

	if v, ok := c.cache.Get(key); ok {
		entry := v.(cacheEntry)
		if c.now().Sub(entry.fetched) < c.ttl {
			return append([]float64(nil), entry.closes...), nil
		}
		c.cache.Remove(key)
	}

	closes, err := c.next.History(ctx, key)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cacheEntry{closes: append([]float64(nil), closes...), fetched: c.now()})
	return closes, nil
}
