package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	require.Equal(t, home, ExpandHome("~"))
	require.Equal(t, filepath.Join(home, ".acquire", "registries"), ExpandHome("~/.acquire/registries"))
	require.Equal(t, "~other/x", ExpandHome("~other/x"))
	require.Equal(t, "/abs/path", ExpandHome("/abs/path"))
}

func TestResolve(t *testing.T) {
	require.Equal(t, "/base/reg.yaml", Resolve("/base", "reg.yaml"))
	require.Equal(t, "/abs/reg.yaml", Resolve("/base", "/abs/reg.yaml"))
	require.Equal(t, "reg.yaml", Resolve("", "reg.yaml"))
}

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	target := filepath.Join(root, "a", "acquire.yaml")
	require.NoError(t, os.WriteFile(target, []byte("registries: []\n"), 0o600))

	got, ok := FindUp(nested, "acquire.yaml")
	require.True(t, ok)
	require.Equal(t, target, got)
}

func TestFindUp_PrefersNearest(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "acquire.yaml"), nil, 0o600))
	near := filepath.Join(nested, "acquire.yaml")
	require.NoError(t, os.WriteFile(near, nil, 0o600))

	got, ok := FindUp(nested, "acquire.yaml")
	require.True(t, ok)
	require.Equal(t, near, got)
}

func TestFindUp_NameOrderWithinDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "second.yaml"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "first.yaml"), nil, 0o600))

	got, ok := FindUp(dir, "first.yaml", "second.yaml")
	require.True(t, ok)
	require.Equal(t, filepath.Join(dir, "first.yaml"), got)
}

func TestFindUp_IgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "acquire.yaml"), 0o750))

	_, ok := FindUp(dir, "acquire.yaml")
	require.False(t, ok)
}
