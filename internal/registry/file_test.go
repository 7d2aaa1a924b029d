package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileSource_Directory(t *testing.T) {
	dir := t.TempDir()
	writeIndex(t, dir, sampleIndex)

	src := NewFileSource("main", dir)
	require.Equal(t, filepath.Join(dir, IndexFileName), src.Path())

	got, err := src.Query(context.Background(), "tools/kitware/cmake")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, filepath.Join(dir, "cmake-3.27.1"), got[0].Location())
}

func TestFileSource_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleIndex), 0o644))

	src := NewFileSource("custom", path)
	all, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestFileSource_MissingIsUnreachable(t *testing.T) {
	src := NewFileSource("gone", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := src.Query(context.Background(), "foo")
	require.ErrorIs(t, err, ErrSourceUnreachable)
}

func TestFileSource_MalformedIndex(t *testing.T) {
	dir := t.TempDir()
	writeIndex(t, dir, "artifacts:\n  - name: foo\n")

	_, err := NewFileSource("main", dir).Query(context.Background(), "foo")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrSourceUnreachable)
	require.Contains(t, err.Error(), "registry main")
}

func TestFileSource_MemoisedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeIndex(t, dir, "artifacts:\n  - {name: foo, version: 1.0.0}\n")

	src := NewFileSource("main", dir)
	got, err := src.Query(ctx, "foo")
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, os.WriteFile(path, []byte("artifacts:\n  - {name: foo, version: 1.0.0}\n  - {name: foo, version: 2.0.0}\n"), 0o644))
	got, err = src.Query(ctx, "foo")
	require.NoError(t, err)
	require.Len(t, got, 1, "parsed index is memoised")

	src.Invalidate()
	got, err = src.Query(ctx, "foo")
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestFileSource_WatchReloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()
	path := writeIndex(t, dir, "artifacts:\n  - {name: foo, version: 1.0.0}\n")

	src := NewFileSource("main", dir)
	require.NoError(t, src.Watch(ctx))

	got, err := src.Query(ctx, "foo")
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, os.WriteFile(path, []byte("artifacts:\n  - {name: foo, version: 1.0.0}\n  - {name: foo, version: 2.0.0}\n"), 0o644))

	require.Eventually(t, func() bool {
		got, err := src.Query(ctx, "foo")
		return err == nil && len(got) == 2
	}, 3*time.Second, 50*time.Millisecond)
}
