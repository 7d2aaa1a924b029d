package registry

import (
	"context"
	"time"

	"github.com/zjrosen/acquire/internal/cachemanager"
	"github.com/zjrosen/acquire/internal/domain/artifact"
)

// listKey cannot collide with an artifact name because names never contain NUL.
const listKey = "\x00list"

// CachedSource memoises another source's answers for a TTL. Failures are not cached.
type CachedSource struct {
	inner Source
	cache *cachemanager.ReadThroughCache[string, []*artifact.Artifact]
}

var _ Source = (*CachedSource)(nil)

// NewCachedSource wraps inner with a read-through cache held in mgr.
// Concurrent lookups of the same name share one request to inner.
func NewCachedSource(inner Source, mgr cachemanager.CacheManager[string, []*artifact.Artifact], ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner: inner,
		cache: cachemanager.NewReadThroughCache(mgr, ttl),
	}
}

func (s *CachedSource) Name() string { return s.inner.Name() }

// Unwrap returns the wrapped source.
func (s *CachedSource) Unwrap() Source { return s.inner }

func (s *CachedSource) Query(ctx context.Context, name string) ([]*artifact.Artifact, error) {
	return s.cache.Get(ctx, s.key(name), func(ctx context.Context) ([]*artifact.Artifact, error) {
		return s.inner.Query(ctx, name)
	})
}

func (s *CachedSource) List(ctx context.Context) ([]*artifact.Artifact, error) {
	return s.cache.Get(ctx, s.key(listKey), s.inner.List)
}

// Invalidate drops every cached answer for name, and the cached listing.
func (s *CachedSource) Invalidate(ctx context.Context, names ...string) error {
	keys := make([]string, 0, len(names)+1)
	for _, n := range names {
		keys = append(keys, s.key(n))
	}
	keys = append(keys, s.key(listKey))
	return s.cache.Invalidate(ctx, keys...)
}

func (s *CachedSource) key(name string) string {
	return s.inner.Name() + "/" + name
}
