package artifact

import "errors"

// Builder errors
var (
	ErrEmptyName    = errors.New("artifact name cannot be empty")
	ErrEmptyVersion = errors.New("artifact version cannot be empty")
)

// Builder provides a fluent API for creating artifacts
type Builder struct {
	name      string
	version   string
	summary   string
	location  string
	languages []string
	exports   Exports
}

// NewBuilder creates a new artifact builder
func NewBuilder(name string) *Builder {
	return &Builder{
		name: name,
	}
}

// Version sets the artifact version
func (b *Builder) Version(v string) *Builder {
	b.version = v
	return b
}

// Summary sets the one-line description
func (b *Builder) Summary(s string) *Builder {
	b.summary = s
	return b
}

// Location sets the install location
func (b *Builder) Location(l string) *Builder {
	b.location = l
	return b
}

// Languages sets the language variants
func (b *Builder) Languages(langs ...string) *Builder {
	b.languages = langs
	return b
}

// Path appends entries to a path-list variable export.
func (b *Builder) Path(variable string, entries ...string) *Builder {
	if b.exports.Paths == nil {
		b.exports.Paths = make(map[string][]string)
	}
	b.exports.Paths[variable] = append(b.exports.Paths[variable], entries...)
	return b
}

// Env sets an environment variable export.
func (b *Builder) Env(key, value string) *Builder {
	if b.exports.Env == nil {
		b.exports.Env = make(map[string]string)
	}
	b.exports.Env[key] = value
	return b
}

// Property sets a build property export.
func (b *Builder) Property(key, value string) *Builder {
	if b.exports.Properties == nil {
		b.exports.Properties = make(map[string]string)
	}
	b.exports.Properties[key] = value
	return b
}

// Tool sets a tool alias export.
func (b *Builder) Tool(alias, path string) *Builder {
	if b.exports.Tools == nil {
		b.exports.Tools = make(map[string]string)
	}
	b.exports.Tools[alias] = path
	return b
}

// Exports replaces all exports at once.
func (b *Builder) Exports(e Exports) *Builder {
	b.exports = e.clone()
	return b
}

// Build creates the artifact, validating required fields
func (b *Builder) Build() (*Artifact, error) {
	if b.name == "" {
		return nil, ErrEmptyName
	}
	if b.version == "" {
		return nil, ErrEmptyVersion
	}

	return newArtifact(b.name, b.version, b.summary, b.location, b.languages, b.exports.clone()), nil
}
