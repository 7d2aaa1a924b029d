// Package testutil builds registry fixtures on disk for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// IndexFileName matches the name file registries look for in a directory.
const IndexFileName = "registry.yaml"

type indexData struct {
	Registry struct {
		Name string `yaml:"name"`
	} `yaml:"registry"`
	Artifacts []artifactData `yaml:"artifacts"`
}

// Builder accumulates artifacts and writes them as a registry index.
type Builder struct {
	t         *testing.T
	name      string
	artifacts []artifactData
}

// NewRegistry creates a builder for an index called name.
func NewRegistry(t *testing.T, name string) *Builder {
	t.Helper()
	return &Builder{t: t, name: name}
}

// WithArtifact adds one artifact version with optional configuration.
func (b *Builder) WithArtifact(name, version string, opts ...ArtifactOption) *Builder {
	a := defaultArtifact(name, version)
	for _, opt := range opts {
		opt(&a)
	}
	b.artifacts = append(b.artifacts, a)
	return b
}

// Build writes the index into a fresh temp directory, creates the install
// location of every installed artifact, and returns the directory.
func (b *Builder) Build() string {
	b.t.Helper()
	dir := b.t.TempDir()
	b.BuildIn(dir)
	return dir
}

// BuildIn is Build into an existing directory.
func (b *Builder) BuildIn(dir string) {
	b.t.Helper()
	var idx indexData
	idx.Registry.Name = b.name
	idx.Artifacts = b.artifacts
	if idx.Artifacts == nil {
		idx.Artifacts = []artifactData{}
	}

	data, err := yaml.Marshal(idx)
	require.NoError(b.t, err)
	require.NoError(b.t, os.WriteFile(filepath.Join(dir, IndexFileName), data, 0o600))

	for _, a := range b.artifacts {
		if !a.installed || a.Location == "" || filepath.IsAbs(a.Location) {
			continue
		}
		require.NoError(b.t, os.MkdirAll(filepath.Join(dir, a.Location), 0o750))
	}
}
