package registry

import (
	"errors"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/acquire/internal/domain/artifact"
)

// IndexFileName is the index looked up when a file source points at a directory.
const IndexFileName = "registry.yaml"

// IndexFile is the root structure of a registry index.
type IndexFile struct {
	Registry  IndexHeader   `yaml:"registry"`
	Artifacts []ArtifactDef `yaml:"artifacts"`
}

// IndexHeader describes the registry itself.
type IndexHeader struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ArtifactDef defines one artifact version in YAML.
type ArtifactDef struct {
	Name      string     `yaml:"name"`      // e.g., "tools/kitware/cmake"
	Version   string     `yaml:"version"`   // e.g., "3.27.1"
	Summary   string     `yaml:"summary"`   // One-line description
	Languages []string   `yaml:"languages"` // Language variants; empty means language-neutral
	Location  string     `yaml:"location"`  // Install location, relative to the index base
	Exports   ExportsDef `yaml:"exports"`
}

// ExportsDef defines what activating an artifact changes.
type ExportsDef struct {
	Paths      map[string][]string `yaml:"paths"`      // PATH-like variable -> entries relative to location
	Env        map[string]string   `yaml:"env"`        // Variables set outright
	Properties map[string]string   `yaml:"properties"` // Build-system properties
	Tools      map[string]string   `yaml:"tools"`      // Tool alias -> path relative to location
}

// ParseIndex parses index data into a registry called name. Relative install locations
// are resolved against base; an empty base leaves them untouched. Every invalid entry
// is reported, not just the first.
func ParseIndex(name string, data []byte, base string) (*artifact.Registry, error) {
	var file IndexFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	reg := artifact.NewRegistry(name)
	var errs []error
	for i, def := range file.Artifacts {
		a, err := buildArtifactFromDef(def, base)
		if err != nil {
			errs = append(errs, fmt.Errorf("artifact %d (%s): %w", i, def.Name, err))
			continue
		}
		if err := reg.Add(a); err != nil {
			errs = append(errs, fmt.Errorf("artifact %d (%s): %w", i, a.ID(), err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reg, nil
}

func buildArtifactFromDef(def ArtifactDef, base string) (*artifact.Artifact, error) {
	location := def.Location
	if location != "" && base != "" && !filepath.IsAbs(location) {
		location = filepath.Join(base, location)
	}

	return artifact.NewBuilder(def.Name).
		Version(def.Version).
		Summary(def.Summary).
		Languages(def.Languages...).
		Location(location).
		Exports(artifact.Exports{
			Paths:      def.Exports.Paths,
			Env:        def.Exports.Env,
			Properties: def.Exports.Properties,
			Tools:      def.Exports.Tools,
		}).
		Build()
}
