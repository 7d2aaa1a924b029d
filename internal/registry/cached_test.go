package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/acquire/internal/domain/artifact"
)

type countingSource struct {
	Source
	queries atomic.Int32
	lists   atomic.Int32
	fail    atomic.Bool
}

func (c *countingSource) Query(ctx context.Context, name string) ([]*artifact.Artifact, error) {
	c.queries.Add(1)
	if c.fail.Load() {
		return nil, errors.New("down")
	}
	return c.Source.Query(ctx, name)
}

func (c *countingSource) List(ctx context.Context) ([]*artifact.Artifact, error) {
	c.lists.Add(1)
	return c.Source.List(ctx)
}

func TestCachedSource(t *testing.T) {
	ctx := context.Background()
	static, err := NewStatic("main", mkArtifact(t, "foo", "1.0.0"))
	require.NoError(t, err)
	inner := &countingSource{Source: static}

	src := NewCachedSource(inner, NewIndexCache(), time.Minute)
	require.Equal(t, "main", src.Name())
	require.Same(t, inner, src.Unwrap())

	for i := 0; i < 3; i++ {
		got, err := src.Query(ctx, "foo")
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	require.EqualValues(t, 1, inner.queries.Load())

	_, err = src.List(ctx)
	require.NoError(t, err)
	_, err = src.List(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, inner.lists.Load())

	require.NoError(t, src.Invalidate(ctx, "foo"))
	_, err = src.Query(ctx, "foo")
	require.NoError(t, err)
	_, err = src.List(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, inner.queries.Load())
	require.EqualValues(t, 2, inner.lists.Load())
}

func TestCachedSource_FailuresNotCached(t *testing.T) {
	ctx := context.Background()
	static, err := NewStatic("main", mkArtifact(t, "foo", "1.0.0"))
	require.NoError(t, err)
	inner := &countingSource{Source: static}
	inner.fail.Store(true)

	src := NewCachedSource(inner, NewIndexCache(), time.Minute)
	_, err = src.Query(ctx, "foo")
	require.Error(t, err)

	inner.fail.Store(false)
	got, err := src.Query(ctx, "foo")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestCachedSource_SharedManagerKeysBySource(t *testing.T) {
	ctx := context.Background()
	mgr := NewIndexCache()
	a, err := NewStatic("a", mkArtifact(t, "foo", "1.0.0"))
	require.NoError(t, err)
	b, err := NewStatic("b", mkArtifact(t, "foo", "2.0.0"))
	require.NoError(t, err)

	gotA, err := NewCachedSource(a, mgr, time.Minute).Query(ctx, "foo")
	require.NoError(t, err)
	gotB, err := NewCachedSource(b, mgr, time.Minute).Query(ctx, "foo")
	require.NoError(t, err)

	require.Equal(t, "1.0.0", gotA[0].Version())
	require.Equal(t, "2.0.0", gotB[0].Version())
}

func TestCachedSource_ConcurrentQueriesShareOneLoad(t *testing.T) {
	ctx := context.Background()
	static, err := NewStatic("main", mkArtifact(t, "foo", "1.0.0"))
	require.NoError(t, err)
	inner := &countingSource{Source: static}
	src := NewCachedSource(inner, NewIndexCache(), time.Minute)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = src.Query(ctx, "foo")
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, inner.queries.Load())
}
