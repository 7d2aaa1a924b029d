package artifact

import (
	"maps"
	"slices"
	"strings"
)

// Exports describes what activating an artifact exposes in the environment.
// Paths and tool locations are relative to the artifact's install location.
type Exports struct {
	Paths      map[string][]string // path-list variables, e.g. PATH -> [bin]
	Env        map[string]string   // plain environment variables
	Properties map[string]string   // build-system properties (MSBuild)
	Tools      map[string]string   // tool aliases, e.g. cmake -> bin/cmake
}

// IsEmpty reports whether the exports change nothing.
func (e Exports) IsEmpty() bool {
	return len(e.Paths) == 0 && len(e.Env) == 0 && len(e.Properties) == 0 && len(e.Tools) == 0
}

func (e Exports) clone() Exports {
	out := Exports{
		Env:        maps.Clone(e.Env),
		Properties: maps.Clone(e.Properties),
		Tools:      maps.Clone(e.Tools),
	}
	if e.Paths != nil {
		out.Paths = make(map[string][]string, len(e.Paths))
		for k, v := range e.Paths {
			out.Paths[k] = slices.Clone(v)
		}
	}
	return out
}

// Artifact is a single version of an artifact as published by a registry.
type Artifact struct {
	name      string   // e.g., "tools/kitware/cmake"
	version   string   // e.g., "3.27.1"
	summary   string   // e.g., "CMake build system"
	languages []string // e.g., ["en-us", "ja-jp"]; empty means language-neutral
	location  string   // install location the exports are relative to
	exports   Exports
}

// newArtifact creates an artifact (used by builder)
func newArtifact(name, version, summary, location string, languages []string, exports Exports) *Artifact {
	return &Artifact{
		name:      name,
		version:   version,
		summary:   summary,
		languages: languages,
		location:  location,
		exports:   exports,
	}
}

// Name returns the artifact name
func (a *Artifact) Name() string {
	return a.name
}

// Version returns the artifact version
func (a *Artifact) Version() string {
	return a.version
}

// Summary returns the one-line description
func (a *Artifact) Summary() string {
	return a.summary
}

// Languages returns the language variants the artifact ships.
func (a *Artifact) Languages() []string {
	return a.languages
}

// Location returns the install location.
func (a *Artifact) Location() string {
	return a.location
}

// Exports returns a copy of the artifact's exports.
func (a *Artifact) Exports() Exports {
	return a.exports.clone()
}

// HasLanguage reports whether the artifact ships the given language variant.
// Language-neutral artifacts (no variants) match every language.
func (a *Artifact) HasLanguage(lang string) bool {
	if len(a.languages) == 0 {
		return true
	}
	for _, l := range a.languages {
		if strings.EqualFold(l, lang) {
			return true
		}
	}
	return false
}

// ID returns "name@version".
func (a *Artifact) ID() string {
	return a.name + "@" + a.version
}
