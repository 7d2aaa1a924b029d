// Package flags holds the feature flags read from the "flags" config section.
// A Registry is read-only once built; unknown names fall back to their default.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/acquire/internal/log"
)

const (
	// RegistryWatch invalidates file registry indexes when the file changes on disk.
	// Only long-lived processes benefit; a single `use` reads each index once.
	RegistryWatch = "registry-watch"

	// ParallelMatch matches specifiers concurrently. When disabled the selector
	// runs with a concurrency of one.
	ParallelMatch = "parallel-match"
)

var defaults = map[string]bool{
	RegistryWatch: false,
	ParallelMatch: true,
}

// Registry holds flag state.
type Registry struct {
	flags map[string]bool
}

// New builds a registry from the configured values layered over the defaults.
func New(configured map[string]bool) *Registry {
	flags := maps.Clone(defaults)
	for name, on := range configured {
		if _, known := defaults[name]; !known {
			log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
		}
		flags[name] = on
	}
	r := &Registry{flags: flags}
	log.Debug(log.CatConfig, "Feature flags initialized", "flags", r.All())
	return r
}

// Enabled reports whether name is on. A nil registry reports the default.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return defaults[name]
	}
	return r.flags[name]
}

// All returns a copy of every flag value.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return maps.Clone(defaults)
	}
	return maps.Clone(r.flags)
}

// Known returns the names of the flags acquire understands, sorted.
func Known() []string {
	return slices.Sorted(maps.Keys(defaults))
}
