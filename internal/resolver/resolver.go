// Package resolver composes registry sources into an ordered view and answers
// artifact queries across all of them.
//
// A Resolver's source list never changes after construction. With returns a new
// resolver; neither input is modified, so a resolver shared through the session can
// be extended per invocation without affecting later ones.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/acquire/internal/domain/artifact"
	"github.com/zjrosen/acquire/internal/log"
	"github.com/zjrosen/acquire/internal/registry"
	"github.com/zjrosen/acquire/internal/tracing"
	"github.com/zjrosen/acquire/internal/version"
)

// DefaultTimeout bounds a single source query when none is configured.
const DefaultTimeout = 10 * time.Second

var tracer = otel.Tracer("github.com/zjrosen/acquire/internal/resolver")

// Warning records a source that was skipped during a query.
type Warning struct {
	Source string
	Err    error
}

func (w Warning) String() string {
	return fmt.Sprintf("registry %s skipped: %v", w.Source, w.Err)
}

// Resolver queries an ordered list of sources. Earlier sources have higher priority.
type Resolver struct {
	sources []registry.Source
	timeout time.Duration

	mu       sync.Mutex
	warnings []Warning
}

// New creates a resolver over sources. A non-positive timeout uses DefaultTimeout.
func New(timeout time.Duration, sources ...registry.Source) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		sources: slices.Clone(sources),
		timeout: timeout,
	}
}

// With returns a resolver whose sources are r's followed by extra's. A source in extra
// whose name is already used in r is dropped. A nil extra yields a copy of r.
func (r *Resolver) With(extra *Resolver) *Resolver {
	combined := slices.Clone(r.sources)
	if extra == nil {
		return &Resolver{sources: combined, timeout: r.timeout}
	}

	names := make(map[string]bool, len(combined))
	for _, s := range combined {
		names[s.Name()] = true
	}
	for _, s := range extra.sources {
		if names[s.Name()] {
			log.Warn(log.CatResolve, "duplicate registry name, keeping the existing one", "registry", s.Name())
			continue
		}
		names[s.Name()] = true
		combined = append(combined, s)
	}
	return &Resolver{sources: combined, timeout: r.timeout}
}

// Sources returns the sources in priority order.
func (r *Resolver) Sources() []registry.Source {
	return slices.Clone(r.sources)
}

// Names returns the source names in priority order.
func (r *Resolver) Names() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

// Timeout returns the per-source query timeout.
func (r *Resolver) Timeout() time.Duration {
	return r.timeout
}

// Warnings returns every source skip recorded by this resolver so far.
func (r *Resolver) Warnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.warnings)
}

// Query returns the candidates for spec.Name across every source, or only the source
// named by spec.Registry. Candidates are ordered by source priority, then by
// descending version. Sources that fail or time out are skipped with a warning; the
// query fails with artifact.ErrRegistryUnavailable only if none answered.
func (r *Resolver) Query(ctx context.Context, spec artifact.Specifier) (iter.Seq[artifact.Candidate], error) {
	ctx, span := tracing.Start(ctx, tracer, tracing.SpanResolverQuery,
		attribute.String(tracing.AttrSpecifier, spec.QualifiedName()))

	indexes, err := r.targets(spec.Registry)
	if err != nil {
		tracing.Finish(span, err)
		return nil, err
	}

	results, err := r.fanOut(ctx, span, indexes, func(ctx context.Context, src registry.Source) ([]*artifact.Artifact, error) {
		return src.Query(ctx, spec.Name)
	})
	if err != nil {
		tracing.Finish(span, err)
		return nil, err
	}

	candidates := flatten(results)
	span.SetAttributes(attribute.Int(tracing.AttrCandidateCount, len(candidates)))
	tracing.Finish(span, nil)

	log.Debug(log.CatResolve, "query finished", "specifier", spec.QualifiedName(), "candidates", len(candidates))

	return func(yield func(artifact.Candidate) bool) {
		for _, c := range candidates {
			if !yield(c) {
				return
			}
		}
	}, nil
}

// List returns every artifact across all reachable sources, ordered by source
// priority, then name, then descending version.
func (r *Resolver) List(ctx context.Context) ([]artifact.Candidate, error) {
	ctx, span := tracing.Start(ctx, tracer, tracing.SpanResolverList)

	indexes, err := r.targets("")
	if err != nil {
		tracing.Finish(span, err)
		return nil, err
	}

	results, err := r.fanOut(ctx, span, indexes, func(ctx context.Context, src registry.Source) ([]*artifact.Artifact, error) {
		return src.List(ctx)
	})
	if err != nil {
		tracing.Finish(span, err)
		return nil, err
	}

	for i := range results {
		slices.SortStableFunc(results[i].artifacts, func(a, b *artifact.Artifact) int {
			if a.Name() != b.Name() {
				if a.Name() < b.Name() {
					return -1
				}
				return 1
			}
			return version.CompareStrings(b.Version(), a.Version())
		})
	}
	candidates := make([]artifact.Candidate, 0)
	for _, res := range results {
		for _, a := range res.artifacts {
			candidates = append(candidates, artifact.Candidate{Artifact: a, Source: res.source, Priority: res.priority})
		}
	}
	tracing.Finish(span, nil)
	return candidates, nil
}

// Probe queries every source for a listing and reports, per source name, the error it
// returned (nil when reachable).
func (r *Resolver) Probe(ctx context.Context) map[string]error {
	status := make(map[string]error, len(r.sources))
	var mu sync.Mutex
	var g errgroup.Group
	for _, src := range r.sources {
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			_, err := src.List(qctx)
			mu.Lock()
			status[src.Name()] = err
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return status
}

func (r *Resolver) targets(registryName string) ([]int, error) {
	if len(r.sources) == 0 {
		return nil, fmt.Errorf("%w: no registries configured", artifact.ErrRegistryUnavailable)
	}
	if registryName == "" {
		indexes := make([]int, len(r.sources))
		for i := range r.sources {
			indexes[i] = i
		}
		return indexes, nil
	}
	for i, s := range r.sources {
		if s.Name() == registryName {
			return []int{i}, nil
		}
	}
	return nil, fmt.Errorf("%w: registry %q is not configured", artifact.ErrRegistryUnavailable, registryName)
}

type sourceResult struct {
	source    string
	priority  int
	artifacts []*artifact.Artifact
}

// fanOut runs fn against the sources at indexes concurrently, each under its own
// timeout, and returns the answers of the sources that succeeded in priority order.
func (r *Resolver) fanOut(
	ctx context.Context,
	span trace.Span,
	indexes []int,
	fn func(context.Context, registry.Source) ([]*artifact.Artifact, error),
) ([]sourceResult, error) {
	answers := make([][]*artifact.Artifact, len(indexes))
	errs := make([]error, len(indexes))

	// Failures are collected per source rather than returned, so one slow or broken
	// registry never cancels the others.
	var g errgroup.Group
	for i, idx := range indexes {
		src := r.sources[idx]
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			qctx, sspan := tracing.Start(qctx, tracer, tracing.SpanSourceQuery,
				attribute.String(tracing.AttrRegistry, src.Name()))
			answers[i], errs[i] = fn(qctx, src)
			tracing.Finish(sspan, errs[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]sourceResult, 0, len(indexes))
	var failures []error
	for i, idx := range indexes {
		name := r.sources[idx].Name()
		if errs[i] != nil {
			r.warn(Warning{Source: name, Err: errs[i]})
			span.AddEvent(tracing.EventSourceSkipped, trace.WithAttributes(attribute.String(tracing.AttrRegistry, name)))
			failures = append(failures, fmt.Errorf("%s: %w", name, errs[i]))
			continue
		}
		results = append(results, sourceResult{source: name, priority: idx, artifacts: answers[i]})
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %w", artifact.ErrRegistryUnavailable, errors.Join(failures...))
	}
	return results, nil
}

func (r *Resolver) warn(w Warning) {
	log.Warn(log.CatResolve, "registry skipped", "registry", w.Source, "error", w.Err)
	r.mu.Lock()
	r.warnings = append(r.warnings, w)
	r.mu.Unlock()
}

func flatten(results []sourceResult) []artifact.Candidate {
	var out []artifact.Candidate
	for _, res := range results {
		group := make([]artifact.Candidate, 0, len(res.artifacts))
		for _, a := range res.artifacts {
			group = append(group, artifact.Candidate{Artifact: a, Source: res.source, Priority: res.priority})
		}
		version.SortCandidates(group)
		out = append(out, group...)
	}
	return out
}
