package cachemanager

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader produces the value for a key on a cache miss.
type Loader[V any] func(ctx context.Context) (V, error)

// ReadThroughCache fills a CacheManager on demand. Concurrent misses for the same
// key share a single load, and load errors are never cached.
type ReadThroughCache[K ~string, V any] struct {
	cache CacheManager[K, V]
	ttl   time.Duration
	group singleflight.Group
}

// NewReadThroughCache stores loaded values in cache for ttl.
func NewReadThroughCache[K ~string, V any](cache CacheManager[K, V], ttl time.Duration) *ReadThroughCache[K, V] {
	return &ReadThroughCache[K, V]{cache: cache, ttl: ttl}
}

// Get returns the cached value for key, calling load when it is missing. Callers
// that join an in-flight load share its result, including its error.
func (r *ReadThroughCache[K, V]) Get(ctx context.Context, key K, load Loader[V]) (V, error) {
	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}

	v, err, _ := r.group.Do(string(key), func() (any, error) {
		if value, ok := r.cache.Get(ctx, key); ok {
			return value, nil
		}
		value, err := load(ctx)
		if err != nil {
			return value, err
		}
		r.cache.Set(ctx, key, value, r.ttl)
		return value, nil
	})
	value, ok := v.(V)
	if !ok && v != nil {
		var zero V
		return zero, fmt.Errorf("cache %q: unexpected value type %T", string(key), v)
	}
	return value, err
}

// Invalidate drops cached values for keys. A load already in flight still
// completes and stores its result.
func (r *ReadThroughCache[K, V]) Invalidate(ctx context.Context, keys ...K) error {
	for _, k := range keys {
		r.group.Forget(string(k))
	}
	return r.cache.Delete(ctx, keys...)
}
