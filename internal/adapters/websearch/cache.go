package websearch

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
	"github.com/0xcro3dile/coderag-go/internal/domain/ports"
)

const DefaultCacheSize = 100

// CachedSearcher memoizes successful searches by exact query text.
type CachedSearcher struct {
	next  ports.WebSearcher
	cache *lru.Cache[string, []entities.SearchResult]
}

// NewCachedSearcher wraps next with an LRU of the given capacity.
func NewCachedSearcher(next ports.WebSearcher, size int) (*CachedSearcher, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []entities.SearchResult](size)
	if err != nil {
		return nil, fmt.Errorf("creating search cache: %w", err)
	}
	return &CachedSearcher{next: next, cache: cache}, nil
}

// Search serves repeated queries from the cache. Failures are not cached.
func (c *CachedSearcher) Search(ctx context.Context, query string) ([]entities.SearchResult, error) {
	if results, ok := c.cache.Get(query); ok {
		return results, nil
	}
	results, err := c.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	c.cache.Add(query, results)
	return results, nil
}
