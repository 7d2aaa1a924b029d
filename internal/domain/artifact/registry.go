package artifact

import (
	"errors"
	"sort"
)

// Registry errors
var (
	ErrNotFound         = errors.New("artifact not found")
	ErrDuplicateVersion = errors.New("duplicate version for artifact")
	ErrNilArtifact      = errors.New("artifact cannot be nil")
)

// Registry holds the artifacts published by one registry source
type Registry struct {
	name      string
	artifacts []*Artifact
}

// NewRegistry creates a new empty registry
func NewRegistry(name string) *Registry {
	return &Registry{
		name:      name,
		artifacts: make([]*Artifact, 0),
	}
}

// Name returns the registry name
func (r *Registry) Name() string {
	return r.name
}

// Add adds an artifact to the registry
func (r *Registry) Add(a *Artifact) error {
	if a == nil {
		return ErrNilArtifact
	}

	for _, existing := range r.artifacts {
		if existing.Name() == a.Name() && existing.Version() == a.Version() {
			return ErrDuplicateVersion
		}
	}

	r.artifacts = append(r.artifacts, a)
	return nil
}

// List returns all artifacts in insertion order
func (r *Registry) List() []*Artifact {
	return r.artifacts
}

// Versions returns every version of the named artifact, in insertion order.
func (r *Registry) Versions(name string) []*Artifact {
	result := make([]*Artifact, 0)
	for _, a := range r.artifacts {
		if a.Name() == name {
			result = append(result, a)
		}
	}
	return result
}

// Get returns a specific artifact by name and version
func (r *Registry) Get(name, version string) (*Artifact, error) {
	for _, a := range r.artifacts {
		if a.Name() == name && a.Version() == version {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

// GetByLanguage returns artifacts that ship the given language variant
func (r *Registry) GetByLanguage(lang string) []*Artifact {
	result := make([]*Artifact, 0)
	for _, a := range r.artifacts {
		if a.HasLanguage(lang) {
			result = append(result, a)
		}
	}
	return result
}

// Names returns all unique artifact names, sorted alphabetically
func (r *Registry) Names() []string {
	nameSet := make(map[string]bool)
	for _, a := range r.artifacts {
		nameSet[a.Name()] = true
	}

	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of artifacts
func (r *Registry) Len() int {
	return len(r.artifacts)
}
