package common

import (
	"context"
	"sync"
	"time"

	"github.com/xandai-project/xandai-go/pkg/types"
)

// ConnectivityCacheConfig holds configuration for the connectivity cache
type ConnectivityCacheConfig struct {
	// TTL is how long a connectivity result stays valid.
	TTL time.Duration

	// Enabled controls whether caching is active. When disabled every call
	// performs a real connectivity check.
	Enabled bool
}

// DefaultConnectivityCacheConfig returns the default cache configuration.
// The 30 second TTL prevents hammering the server during rapid health checks.
func DefaultConnectivityCacheConfig() ConnectivityCacheConfig {
	return ConnectivityCacheConfig{
		TTL:     30 * time.Second,
		Enabled: true,
	}
}

type connectivityEntry struct {
	err       error
	timestamp time.Time
}

// ConnectivityCache provides thread-safe caching of connectivity test results
type ConnectivityCache struct {
	config ConnectivityCacheConfig
	cache  map[types.ProviderType]connectivityEntry
	mu     sync.RWMutex
}

// NewConnectivityCache creates a connectivity cache with the given configuration
func NewConnectivityCache(config ConnectivityCacheConfig) *ConnectivityCache {
	return &ConnectivityCache{
		config: config,
		cache:  make(map[types.ProviderType]connectivityEntry),
	}
}

// NewDefaultConnectivityCache creates a connectivity cache with default configuration
func NewDefaultConnectivityCache() *ConnectivityCache {
	return NewConnectivityCache(DefaultConnectivityCacheConfig())
}

// TestConnectivity returns a cached result when fresh, otherwise runs
// testFunc and caches its result. bypassCache forces a fresh check but
// still updates the cache.
func (cc *ConnectivityCache) TestConnectivity(
	ctx context.Context,
	providerType types.ProviderType,
	testFunc func(context.Context) error,
	bypassCache bool,
) error {
	if !cc.config.Enabled || bypassCache {
		err := testFunc(ctx)
		if cc.config.Enabled {
			cc.set(providerType, err)
		}
		return err
	}

	if cachedErr, found := cc.get(providerType); found {
		return cachedErr
	}

	err := testFunc(ctx)
	cc.set(providerType, err)
	return err
}

// Invalidate removes the cached result for a provider
func (cc *ConnectivityCache) Invalidate(providerType types.ProviderType) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	delete(cc.cache, providerType)
}

func (cc *ConnectivityCache) get(providerType types.ProviderType) (error, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	entry, ok := cc.cache[providerType]
	if !ok || time.Since(entry.timestamp) > cc.config.TTL {
		return nil, false
	}
	return entry.err, true
}

func (cc *ConnectivityCache) set(providerType types.ProviderType, err error) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[providerType] = connectivityEntry{err: err, timestamp: time.Now()}
}
