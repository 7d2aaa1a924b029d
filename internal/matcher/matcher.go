// Package matcher narrows a resolver's candidates for one specifier down to the
// versions its constraint and language filter accept.
package matcher

import (
	"context"
	"iter"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/acquire/internal/domain/artifact"
	"github.com/zjrosen/acquire/internal/tracing"
	"github.com/zjrosen/acquire/internal/version"
)

var tracer = otel.Tracer("github.com/zjrosen/acquire/internal/matcher")

// Querier is the part of a resolver the matcher needs.
type Querier interface {
	Query(ctx context.Context, spec artifact.Specifier) (iter.Seq[artifact.Candidate], error)
}

// LanguageFilter selects language variants. AllLanguages wins over Language.
type LanguageFilter struct {
	Language     string
	AllLanguages bool
}

// Accepts reports whether c passes the filter. Candidates that declare no
// languages are language-neutral and always pass.
func (f LanguageFilter) Accepts(c artifact.Candidate) bool {
	if f.AllLanguages || strings.TrimSpace(f.Language) == "" {
		return true
	}
	return c.Artifact.HasLanguage(f.Language)
}

// Match returns every candidate for spec that satisfies its constraint and the
// language filter, in resolver order. No surviving candidate is a
// *artifact.NoMatchError; resolver errors are returned unchanged.
func Match(ctx context.Context, spec artifact.Specifier, q Querier, filter LanguageFilter) ([]artifact.Candidate, error) {
	ctx, span := tracing.Start(ctx, tracer, tracing.SpanMatch,
		attribute.String(tracing.AttrSpecifier, spec.QualifiedName()),
		attribute.String(tracing.AttrConstraint, spec.Constraint))

	seq, err := q.Query(ctx, spec)
	if err != nil {
		tracing.Finish(span, err)
		return nil, err
	}

	constraint := version.ParseConstraint(spec.Constraint)
	var matched []artifact.Candidate
	for c := range seq {
		if !constraint.MatchString(c.Version()) {
			continue
		}
		if !filter.Accepts(c) {
			continue
		}
		matched = append(matched, c)
	}

	if len(matched) == 0 {
		err := &artifact.NoMatchError{Specifier: spec, Wanted: 1}
		tracing.Finish(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int(tracing.AttrCandidateCount, len(matched)))
	tracing.Finish(span, nil)
	return matched, nil
}
