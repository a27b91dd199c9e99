package classify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/stereoscan/internal/worker"
)

// CachingScorer memoizes classifier scores keyed by text hash, so re-running an
// evaluation over overlapping corpora does not re-score identical texts.
type CachingScorer struct {
	inner worker.BatchScorer
	cache *gocache.Cache
	ttl   time.Duration
}

// NewCachingScorer wraps a scorer with an in-memory score cache
func NewCachingScorer(inner worker.BatchScorer, ttl time.Duration) *CachingScorer {
	return &CachingScorer{
		inner: inner,
		cache: gocache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// ScoreBatch returns cached scores where available and scores only the misses
// through the wrapped scorer
func (c *CachingScorer) ScoreBatch(ctx context.Context, texts []string) ([]float64, error) {
	scores := make([]float64, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if v, found := c.cache.Get(cacheKey(text)); found {
			scores[i] = v.(float64)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return scores, nil
	}

	fresh, err := c.inner.ScoreBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, idx := range missingIdx {
		scores[idx] = fresh[j]
		c.cache.Set(cacheKey(texts[idx]), fresh[j], c.ttl)
	}
	return scores, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
