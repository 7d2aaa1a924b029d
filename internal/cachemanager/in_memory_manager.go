package cachemanager

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/acquire/internal/log"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// InMemoryCacheManager keeps values in a go-cache for the life of the process.
type InMemoryCacheManager[K ~string, V any] struct {
	name  string
	cache *gocache.Cache
}

var _ CacheManager[string, int] = (*InMemoryCacheManager[string, int])(nil)

// NewInMemoryCacheManager creates an empty cache. name identifies it in log
// output, e.g. "registry-index".
func NewInMemoryCacheManager[K ~string, V any](name string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		name:  name,
		cache: gocache.New(defaultExpiration, cleanupInterval),
	}
}

func (c *InMemoryCacheManager[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zero V
	raw, found := c.cache.Get(string(key))
	if !found {
		log.Debug(log.CatCache, "cache miss", "cache", c.name, "key", key)
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		log.Error(log.CatCache, "cached value has the wrong type", "cache", c.name, "key", key)
		c.cache.Delete(string(key))
		return zero, false
	}
	log.Debug(log.CatCache, "cache hit", "cache", c.name, "key", key)
	return v, true
}

// Set stores value under key. A zero ttl uses the cache's default expiration.
func (c *InMemoryCacheManager[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(string(key), value, ttl)
}

func (c *InMemoryCacheManager[K, V]) Delete(_ context.Context, keys ...K) error {
	for _, key := range keys {
		c.cache.Delete(string(key))
	}
	return nil
}

// Len returns the number of cached items, including expired ones not yet cleaned up.
func (c *InMemoryCacheManager[K, V]) Len() int {
	return c.cache.ItemCount()
}
