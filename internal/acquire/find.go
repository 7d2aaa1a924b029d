package acquire

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/acquire/internal/domain/artifact"
	"github.com/zjrosen/acquire/internal/matcher"
	"github.com/zjrosen/acquire/internal/resolver"
	"github.com/zjrosen/acquire/internal/selector"
	"github.com/zjrosen/acquire/internal/tracing"
	"github.com/zjrosen/acquire/internal/version"
)

// Find lists the artifacts whose name contains query, ignoring case, keeping the
// top count versions of each name that pass filter. An empty query lists every
// artifact. Results are ordered by name, then by descending version.
func Find(ctx context.Context, res *resolver.Resolver, query string, count int, filter matcher.LanguageFilter) (_ []artifact.Candidate, err error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: got %d", selector.ErrInvalidCount, count)
	}
	ctx, span := tracing.Start(ctx, tracer, tracing.SpanFind,
		attribute.String(tracing.AttrSpecifier, query),
		attribute.Int(tracing.AttrSelectCount, count))
	defer func() { tracing.Finish(span, err) }()

	all, err := res.List(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	byName := make(map[string][]artifact.Candidate)
	for _, c := range all {
		if query != "" && !strings.Contains(strings.ToLower(c.Name()), query) {
			continue
		}
		if !filter.Accepts(c) {
			continue
		}
		byName[c.Name()] = append(byName[c.Name()], c)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)

	var out []artifact.Candidate
	for _, name := range names {
		cs := byName[name]
		version.SortCandidates(cs)
		out = append(out, cs[:min(count, len(cs))]...)
	}
	span.SetAttributes(attribute.Int(tracing.AttrCandidateCount, len(out)))
	return out, nil
}
