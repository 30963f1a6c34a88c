// Package common provides shared building blocks for XandAI providers:
// model list caching and connectivity result caching.
package common

import (
	"sync"
	"time"

	"github.com/xandai-project/xandai-go/pkg/types"
)

// ModelCache stores a cached model list with timestamp and thread-safe access
type ModelCache struct {
	models    []types.Model
	timestamp time.Time
	ttl       time.Duration
	mutex     sync.RWMutex
}

// NewModelCache creates a new model cache with the specified TTL
func NewModelCache(ttl time.Duration) *ModelCache {
	return &ModelCache{ttl: ttl}
}

// IsStale checks if the cache is expired
func (mc *ModelCache) IsStale() bool {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()
	return time.Since(mc.timestamp) > mc.ttl
}

// Get returns cached models
func (mc *ModelCache) Get() []types.Model {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()
	return mc.models
}

// Update replaces the cache contents and refreshes the timestamp
func (mc *ModelCache) Update(models []types.Model) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	mc.models = models
	mc.timestamp = time.Now()
}

// GetModels returns cached models if fresh, otherwise calls fetchFunc.
// On fetch failure it serves a stale cache if one exists, then falls back
// to fallbackFunc, and only then surfaces the fetch error.
func (mc *ModelCache) GetModels(fetchFunc func() ([]types.Model, error), fallbackFunc func() []types.Model) ([]types.Model, error) {
	if !mc.IsStale() {
		if cached := mc.Get(); len(cached) > 0 {
			return cached, nil
		}
	}

	models, err := fetchFunc()
	if err != nil {
		if stale := mc.Get(); len(stale) > 0 {
			return stale, nil
		}
		if fallbackFunc != nil {
			return fallbackFunc(), nil
		}
		return nil, err
	}

	mc.Update(models)
	return models, nil
}

// Clear empties the cache and resets the timestamp
func (mc *ModelCache) Clear() {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	mc.models = nil
	mc.timestamp = time.Time{}
}
