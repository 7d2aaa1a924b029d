package testutil

import "path"

// artifactData holds one artifact entry of a registry index.
type artifactData struct {
	Name      string      `yaml:"name"`
	Version   string      `yaml:"version"`
	Summary   string      `yaml:"summary,omitempty"`
	Languages []string    `yaml:"languages,omitempty"`
	Location  string      `yaml:"location,omitempty"`
	Exports   exportsData `yaml:"exports,omitempty"`

	installed bool
}

type exportsData struct {
	Paths      map[string][]string `yaml:"paths,omitempty"`
	Env        map[string]string   `yaml:"env,omitempty"`
	Properties map[string]string   `yaml:"properties,omitempty"`
	Tools      map[string]string   `yaml:"tools,omitempty"`
}

// defaultArtifact returns an installed artifact located at ./<base>-<version>.
func defaultArtifact(name, version string) artifactData {
	return artifactData{
		Name:      name,
		Version:   version,
		Location:  "./" + path.Base(name) + "-" + version,
		installed: true,
	}
}

// ArtifactOption configures an artifact during builder setup.
type ArtifactOption func(*artifactData)

// Summary sets the one-line description.
func Summary(s string) ArtifactOption {
	return func(a *artifactData) { a.Summary = s }
}

// Languages sets the language variants.
func Languages(langs ...string) ArtifactOption {
	return func(a *artifactData) { a.Languages = langs }
}

// Location overrides the install location, relative to the index directory.
func Location(loc string) ArtifactOption {
	return func(a *artifactData) { a.Location = loc }
}

// NotInstalled leaves the install location missing on disk.
func NotInstalled() ArtifactOption {
	return func(a *artifactData) { a.installed = false }
}

// PathExport prepends entries to the path list variable key.
func PathExport(key string, entries ...string) ArtifactOption {
	return func(a *artifactData) {
		if a.Exports.Paths == nil {
			a.Exports.Paths = make(map[string][]string)
		}
		a.Exports.Paths[key] = append(a.Exports.Paths[key], entries...)
	}
}

// Env sets a variable; "." and "./..." resolve against the install location.
func Env(key, value string) ArtifactOption {
	return func(a *artifactData) {
		if a.Exports.Env == nil {
			a.Exports.Env = make(map[string]string)
		}
		a.Exports.Env[key] = value
	}
}

// Property sets a build property.
func Property(key, value string) ArtifactOption {
	return func(a *artifactData) {
		if a.Exports.Properties == nil {
			a.Exports.Properties = make(map[string]string)
		}
		a.Exports.Properties[key] = value
	}
}

// Tool sets a tool alias.
func Tool(alias, target string) ArtifactOption {
	return func(a *artifactData) {
		if a.Exports.Tools == nil {
			a.Exports.Tools = make(map[string]string)
		}
		a.Exports.Tools[alias] = target
	}
}
