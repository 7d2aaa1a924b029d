package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func readIndex(t *testing.T, dir string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, IndexFileName))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	return doc
}

func TestBuilder_WithArtifact(t *testing.T) {
	dir := NewRegistry(t, "main").
		WithArtifact("tools/kitware/cmake", "3.28.1", Summary("CMake"), Env("CMAKE_ROOT", ".")).
		Build()

	doc := readIndex(t, dir)
	require.Equal(t, "main", doc["registry"].(map[string]any)["name"])

	arts := doc["artifacts"].([]any)
	require.Len(t, arts, 1)
	a := arts[0].(map[string]any)
	require.Equal(t, "tools/kitware/cmake", a["name"])
	require.Equal(t, "3.28.1", a["version"])
	require.Equal(t, "./cmake-3.28.1", a["location"])
	require.Equal(t, ".", a["exports"].(map[string]any)["env"].(map[string]any)["CMAKE_ROOT"])

	require.DirExists(t, filepath.Join(dir, "cmake-3.28.1"))
}

func TestBuilder_NotInstalled(t *testing.T) {
	dir := NewRegistry(t, "main").
		WithArtifact("x", "1.0.0", NotInstalled()).
		WithArtifact("y", "1.0.0", Location("/opt/y")).
		Build()

	require.NoDirExists(t, filepath.Join(dir, "x-1.0.0"))
	require.Len(t, readIndex(t, dir)["artifacts"], 2)
}

func TestBuilder_Empty(t *testing.T) {
	dir := NewRegistry(t, "empty").Build()
	require.Empty(t, readIndex(t, dir)["artifacts"])
}

func TestBuilder_WithStandardArtifacts(t *testing.T) {
	dir := NewRegistry(t, "main").WithStandardArtifacts().Build()

	require.Len(t, readIndex(t, dir)["artifacts"], 6)
	require.DirExists(t, filepath.Join(dir, "cmake-3.28.1"))
	require.DirExists(t, filepath.Join(dir, "gcc-10.2.1-ja"))
	require.NoDirExists(t, filepath.Join(dir, "thing-1.0.0"))
}
