// Package cache provides caching for prediction results and risk summaries.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pulseguard-risk-server/internal/domain"
)

// PredictionCache is a bounded in-process memo of prediction results keyed by
// the encoded feature vector hash. The predictor is a pure function of the
// encoded vector for a fixed model, so entries never go stale while the
// process runs.
type PredictionCache struct {
	entries *lru.Cache[string, domain.PredictionResult]
}

// NewPredictionCache creates a prediction cache holding at most size entries.
func NewPredictionCache(size int) (*PredictionCache, error) {
	entries, err := lru.New[string, domain.PredictionResult](size)
	if err != nil {
		return nil, fmt.Errorf("creating prediction cache: %w", err)
	}
	return &PredictionCache{entries: entries}, nil
}

// Get returns the cached result for a key, if present.
func (c *PredictionCache) Get(key string) (domain.PredictionResult, bool) {
	return c.entries.Get(key)
}

// Add stores a result, evicting the least recently used entry when full.
func (c *PredictionCache) Add(key string, result domain.PredictionResult) {
	c.entries.Add(key, result)
}

// Len returns the number of cached entries.
func (c *PredictionCache) Len() int {
	return c.entries.Len()
}
