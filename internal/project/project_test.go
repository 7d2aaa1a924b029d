package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/acquire/internal/config"
)

func writeProject(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDiscover_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "acquire.yaml", `
registries:
  - name: project
    location: ./registry
  - name: remote
    location: https://example.com/index.yaml
`)
	nested := filepath.Join(root, "src", "lib")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	p, err := Discover(nested)
	require.NoError(t, err)
	require.Equal(t, root, p.Dir())
	require.Len(t, p.Registries, 2)
	require.Equal(t, config.KindFile, p.Registries[0].ResolvedKind())
	require.Equal(t, config.KindHTTP, p.Registries[1].ResolvedKind())
}

func TestDiscover_HiddenName(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, ".acquire.yaml", "registries:\n  - name: p\n    location: reg\n")

	p, err := Discover(root)
	require.NoError(t, err)
	require.Equal(t, "p", p.Registries[0].Name)
}

func TestDiscover_ExplicitFile(t *testing.T) {
	path := writeProject(t, t.TempDir(), "custom.yaml", "registries: []\n")

	p, err := Discover(path)
	require.NoError(t, err)
	require.Empty(t, p.Registries)
	require.Equal(t, path, p.Path)
}

func TestDiscover_NotFound(t *testing.T) {
	_, err := Discover(t.TempDir())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_InvalidRegistries(t *testing.T) {
	path := writeProject(t, t.TempDir(), "acquire.yaml", `
registries:
  - name: dup
    location: a
  - name: dup
    location: b
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "duplicate name")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeProject(t, t.TempDir(), "acquire.yaml", "registries: [\n")
	_, err := Load(path)
	require.ErrorContains(t, err, "parse")
}
