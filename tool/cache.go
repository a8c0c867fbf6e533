package tool

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedSearch memoizes a WebSearcher by normalized query. Errors are never
// cached.
type CachedSearch struct {
	next  WebSearcher
	cache *cache.Cache
}

var _ WebSearcher = (*CachedSearch)(nil)

// NewCachedSearch wraps next with a cache whose entries live for ttl.
func NewCachedSearch(next WebSearcher, ttl time.Duration) *CachedSearch {
	return &CachedSearch{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Search returns a cached copy of the results when the query was seen
// within the TTL.
func (c *CachedSearch) Search(ctx context.Context, query string) ([]SearchResult, error) {
	key := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if x, found := c.cache.Get(key); found {
		return slices.Clone(x.([]SearchResult)), nil
	}

	results, err := c.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, slices.Clone(results), cache.DefaultExpiration)
	return results, nil
}

// Len returns the number of cached queries.
func (c *CachedSearch) Len() int {
	return c.cache.ItemCount()
}
