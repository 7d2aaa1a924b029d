// Package selector turns user-supplied artifact specifiers into a SelectionSet, one
// concrete version per specifier.
package selector

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/acquire/internal/domain/artifact"
	"github.com/zjrosen/acquire/internal/log"
	"github.com/zjrosen/acquire/internal/matcher"
	"github.com/zjrosen/acquire/internal/tracing"
	"github.com/zjrosen/acquire/internal/version"
)

// DefaultConcurrency bounds concurrent specifier matching when unset.
const DefaultConcurrency = 4

// ErrInvalidCount is returned for a selection count below one.
var ErrInvalidCount = errors.New("selection count must be at least 1")

var tracer = otel.Tracer("github.com/zjrosen/acquire/internal/selector")

// Selector matches specifiers against a resolver.
type Selector struct {
	// Concurrency bounds how many specifiers are matched at once. Values below one
	// use DefaultConcurrency.
	Concurrency int
}

// Select is Selector{}.Select.
func Select(ctx context.Context, inputs, versions []string, q matcher.Querier, count int, filter matcher.LanguageFilter) (*artifact.SelectionSet, error) {
	return Selector{}.Select(ctx, inputs, versions, q, count, filter)
}

// ValidateCounts checks the input preconditions that need no registry access: at least
// one input, and either no versions or exactly one per input.
func ValidateCounts(inputs, versions []string) error {
	if len(inputs) == 0 {
		return artifact.ErrNoArtifactsSpecified
	}
	if len(versions) != 0 && len(versions) != len(inputs) {
		return &artifact.MismatchedVersionCountError{Specifiers: len(inputs), Versions: len(versions)}
	}
	return nil
}

// Parse builds one specifier per input, pairing inputs[i] with versions[i] when
// versions are given.
func Parse(inputs, versions []string) ([]artifact.Specifier, error) {
	if err := ValidateCounts(inputs, versions); err != nil {
		return nil, err
	}
	specs := make([]artifact.Specifier, len(inputs))
	for i, in := range inputs {
		constraint := ""
		if len(versions) > 0 {
			constraint = versions[i]
		}
		spec, err := artifact.ParseSpecifier(i, in, constraint)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	return specs, nil
}

// Select resolves each input to its top count candidates by descending version.
// Preconditions are checked before any registry is queried. If any specifier fails,
// no selection is returned and every failure is reported.
func (s Selector) Select(ctx context.Context, inputs, versions []string, q matcher.Querier, count int, filter matcher.LanguageFilter) (*artifact.SelectionSet, error) {
	if err := ValidateCounts(inputs, versions); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}
	specs, err := Parse(inputs, versions)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.Start(ctx, tracer, tracing.SpanSelect,
		attribute.Int(tracing.AttrSelectCount, count),
		attribute.Int("specifier.count", len(specs)))

	limit := s.Concurrency
	if limit < 1 {
		limit = DefaultConcurrency
	}

	selections := make([]artifact.Selection, len(specs))
	errs := make([]error, len(specs))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, spec := range specs {
		g.Go(func() error {
			selections[i], errs[i] = selectOne(ctx, spec, q, count, filter)
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		log.Debug(log.CatSelect, "selection failed", "error", err)
		tracing.Finish(span, err)
		return nil, err
	}

	set, err := artifact.NewSelectionSet(selections)
	if err != nil {
		tracing.Finish(span, err)
		return nil, err
	}
	tracing.Finish(span, nil)

	for _, sel := range set.Selections() {
		best := sel.Best()
		log.Debug(log.CatSelect, "selected", "specifier", sel.Specifier.String(), "artifact", best.Artifact.ID(), "registry", best.Source)
	}
	return set, nil
}

func selectOne(ctx context.Context, spec artifact.Specifier, q matcher.Querier, count int, filter matcher.LanguageFilter) (artifact.Selection, error) {
	matched, err := matcher.Match(ctx, spec, q, filter)
	if err != nil {
		return artifact.Selection{}, err
	}

	version.SortCandidates(matched)
	if len(matched) < count {
		return artifact.Selection{}, &artifact.NoMatchError{Specifier: spec, Found: len(matched), Wanted: count}
	}
	return artifact.Selection{Specifier: spec, Candidates: matched[:count:count]}, nil
}
