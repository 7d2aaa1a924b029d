// Package registry provides the sources a resolver queries for artifacts: YAML index
// files on disk, indexes served over HTTP, and a cache wrapper around either.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjrosen/acquire/internal/domain/artifact"
)

// ErrSourceUnreachable reports that a source could not be read at all, as opposed to
// being read and containing nothing.
var ErrSourceUnreachable = errors.New("registry source unreachable")

// Source is one named registry of artifacts.
type Source interface {
	Name() string
	// Query returns every version of the artifact called name. An unknown name is
	// not an error.
	Query(ctx context.Context, name string) ([]*artifact.Artifact, error)
	// List returns every artifact the source publishes.
	List(ctx context.Context) ([]*artifact.Artifact, error)
}

// UnreachableError wraps the cause of a failed read with ErrSourceUnreachable.
type UnreachableError struct {
	Source string
	Err    error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("registry %s unreachable: %v", e.Source, e.Err)
}

func (e *UnreachableError) Unwrap() []error {
	return []error{ErrSourceUnreachable, e.Err}
}

// Static is a Source over a fixed, in-memory registry.
type Static struct {
	reg *artifact.Registry
}

var _ Source = (*Static)(nil)

// NewStatic builds a Static source. Duplicate name+version pairs are rejected.
func NewStatic(name string, artifacts ...*artifact.Artifact) (*Static, error) {
	reg := artifact.NewRegistry(name)
	for _, a := range artifacts {
		if err := reg.Add(a); err != nil {
			return nil, fmt.Errorf("registry %s: %s: %w", name, a.ID(), err)
		}
	}
	return &Static{reg: reg}, nil
}

// FromRegistry wraps an already built registry.
func FromRegistry(reg *artifact.Registry) *Static {
	return &Static{reg: reg}
}

func (s *Static) Name() string { return s.reg.Name() }

func (s *Static) Query(ctx context.Context, name string) ([]*artifact.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.reg.Versions(name), nil
}

func (s *Static) List(ctx context.Context) ([]*artifact.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]*artifact.Artifact(nil), s.reg.List()...), nil
}
