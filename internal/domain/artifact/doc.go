// Package artifact implements the domain layer for artifact acquisition.
//
// This package follows Domain-Driven Design (DDD) principles:
//   - Contains only pure Go code with standard library imports (no external dependencies)
//   - Defines entity types (Artifact, ActiveArtifact) and value objects (Specifier, Candidate, Selection)
//   - Enforces the one-version-per-name invariant for selection sets
//   - Has no knowledge of infrastructure concerns (registry transport, YAML parsing, databases)
//
// # Core Types
//
// Artifact is a single registry entry: a name, a version, optional language variants
// and the exports (paths, environment variables, build properties, tools) that
// activation exposes. Use Builder for construction.
//
// Specifier is a user request for an artifact: a name, an optional registry
// qualifier and a version constraint. Specifiers are identified by input position,
// not by name, so the same name may be requested twice.
//
// Candidate is an Artifact as discovered through a particular registry source.
//
// SelectionSet maps each specifier to the candidates chosen for it and is the
// input to activation.
//
// ActiveArtifact is an artifact currently exposed in the session environment,
// together with the Handle describing what activation changed.
//
// # Registry Collection
//
// Registry is an in-memory collection of artifacts keyed by name and version.
// Registry sources load their index into one.
package artifact
