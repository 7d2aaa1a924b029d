package matcher_test

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/acquire/internal/domain/artifact"
	"github.com/zjrosen/acquire/internal/matcher"
	"github.com/zjrosen/acquire/internal/registry"
	"github.com/zjrosen/acquire/internal/resolver"
)

func newResolver(t *testing.T) *resolver.Resolver {
	t.Helper()
	build := func(name, ver string, langs ...string) *artifact.Artifact {
		a, err := artifact.NewBuilder(name).Version(ver).Languages(langs...).Build()
		require.NoError(t, err)
		return a
	}
	src, err := registry.NewStatic("main",
		build("foo", "1.0.0"),
		build("foo", "1.5.0"),
		build("foo", "2.0.0"),
		build("bar", "1.0.0", "en-us"),
		build("bar", "1.1.0", "de-de"),
		build("bar", "1.2.0"),
		build("nightly", "latest"),
	)
	require.NoError(t, err)
	return resolver.New(time.Second, src)
}

func versions(cands []artifact.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Version()
	}
	return out
}

func specifier(t *testing.T, input, constraint string) artifact.Specifier {
	t.Helper()
	s, err := artifact.ParseSpecifier(0, input, constraint)
	require.NoError(t, err)
	return s
}

func TestMatch_Constraints(t *testing.T) {
	r := newResolver(t)
	tests := []struct {
		name       string
		constraint string
		want       []string
	}{
		{"wildcard", "", []string{"2.0.0", "1.5.0", "1.0.0"}},
		{"star", "*", []string{"2.0.0", "1.5.0", "1.0.0"}},
		{"exact", "1.5.0", []string{"1.5.0"}},
		{"range", ">=1.0 <2", []string{"1.5.0", "1.0.0"}},
		{"caret", "^1.2", []string{"1.5.0"}},
		{"x-range", "2.x", []string{"2.0.0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matcher.Match(context.Background(), specifier(t, "foo", tt.constraint), r, matcher.LanguageFilter{})
			require.NoError(t, err)
			require.Equal(t, tt.want, versions(got))
		})
	}
}

func TestMatch_OpaqueVersionExactOnly(t *testing.T) {
	r := newResolver(t)

	got, err := matcher.Match(context.Background(), specifier(t, "nightly", "latest"), r, matcher.LanguageFilter{})
	require.NoError(t, err)
	require.Equal(t, []string{"latest"}, versions(got))

	_, err = matcher.Match(context.Background(), specifier(t, "nightly", ">=1.0"), r, matcher.LanguageFilter{})
	require.ErrorIs(t, err, artifact.ErrNoMatch)
}

func TestMatch_NoMatch(t *testing.T) {
	r := newResolver(t)

	_, err := matcher.Match(context.Background(), specifier(t, "foo", "3.0"), r, matcher.LanguageFilter{})
	var noMatch *artifact.NoMatchError
	require.ErrorAs(t, err, &noMatch)
	require.Equal(t, "foo", noMatch.Specifier.Name)
	require.Equal(t, "unable to resolve artifact foo (3.0)", err.Error())

	_, err = matcher.Match(context.Background(), specifier(t, "unknown", ""), r, matcher.LanguageFilter{})
	require.ErrorIs(t, err, artifact.ErrNoMatch)
}

func TestMatch_Language(t *testing.T) {
	r := newResolver(t)
	ctx := context.Background()

	all, err := matcher.Match(ctx, specifier(t, "bar", ""), r, matcher.LanguageFilter{Language: "en-us", AllLanguages: true})
	require.NoError(t, err)
	require.Equal(t, []string{"1.2.0", "1.1.0", "1.0.0"}, versions(all), "all languages returns candidates verbatim")

	en, err := matcher.Match(ctx, specifier(t, "bar", ""), r, matcher.LanguageFilter{Language: "EN-US"})
	require.NoError(t, err)
	require.Equal(t, []string{"1.2.0", "1.0.0"}, versions(en), "neutral 1.2.0 is kept")

	fr, err := matcher.Match(ctx, specifier(t, "bar", "1.1.0"), r, matcher.LanguageFilter{Language: "fr-fr"})
	require.ErrorIs(t, err, artifact.ErrNoMatch)
	require.Nil(t, fr)
}

type failingQuerier struct{ err error }

func (f failingQuerier) Query(context.Context, artifact.Specifier) (iter.Seq[artifact.Candidate], error) {
	return nil, f.err
}

func TestMatch_ResolverErrorPropagates(t *testing.T) {
	cause := errors.New("registry unavailable: all down")
	_, err := matcher.Match(context.Background(), specifier(t, "foo", ""), failingQuerier{err: cause}, matcher.LanguageFilter{})
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, artifact.ErrNoMatch)
}
