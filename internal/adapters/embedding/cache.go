package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/0xcro3dile/coderag-go/internal/domain/ports"
)

const DefaultCacheSize = 256

// CachedEmbedder memoizes embeddings by exact input text.
type CachedEmbedder struct {
	next  ports.EmbeddingService
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps next with an LRU of the given capacity.
func NewCachedEmbedder(next ports.EmbeddingService, size int) (*CachedEmbedder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}
	return &CachedEmbedder{next: next, cache: cache}, nil
}

// Embed returns the cached vector for text or computes and caches it.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if emb, ok := c.cache.Get(text); ok {
		return emb, nil
	}
	emb, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, emb)
	return emb, nil
}

// EmbedBatch embeds only the texts not already cached, in one call to the wrapped service.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var (
		missing []string
		slots   []int
	)
	for i, text := range texts {
		if emb, ok := c.cache.Get(text); ok {
			out[i] = emb
			continue
		}
		missing = append(missing, text)
		slots = append(slots, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	embs, err := c.next.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(embs) != len(missing) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(embs), len(missing))
	}
	for j, emb := range embs {
		out[slots[j]] = emb
		c.cache.Add(missing[j], emb)
	}
	return out, nil
}

// Len returns the number of cached embeddings.
func (c *CachedEmbedder) Len() int { return c.cache.Len() }
