package rank

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedScorer memoizes another Scorer by the SHA-256 of the input text.
type CachedScorer struct {
	next  Scorer
	cache *lru.Cache[[sha256.Size]byte, []Scored]
	log   *slog.Logger
}

// NewCachedScorer wraps next with an LRU of the given size.
func NewCachedScorer(next Scorer, size int, log *slog.Logger) (*CachedScorer, error) {
	if size <= 0 {
		size = 256
	}
	if log == nil {
		log = slog.Default()
	}
	cache, err := lru.New[[sha256.Size]byte, []Scored](size)
	if err != nil {
		return nil, err
	}
	return &CachedScorer{next: next, cache: cache, log: log}, nil
}

func (c *CachedScorer) Score(ctx context.Context, text string) ([]Scored, error) {
	key := sha256.Sum256([]byte(text))
	if scored, ok := c.cache.Get(key); ok {
		c.log.Debug("score cache hit", "sentences", len(scored))
		return slices.Clone(scored), nil
	}
	scored, err := c.next.Score(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, slices.Clone(scored))
	return scored, nil
}

// Len reports the number of cached texts.
func (c *CachedScorer) Len() int {
	return c.cache.Len()
}
