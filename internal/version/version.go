// Package version parses artifact versions and version constraints.
//
// Semantic versions are handled by Masterminds/semver. Registries also publish
// versions that are not semver (dates, vendor release names); those are kept as
// opaque strings, ordered lexically below every semantic version, and only satisfy
// an exact constraint or the wildcard.
package version

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/zjrosen/acquire/internal/domain/artifact"
)

// Version is a parsed artifact version.
type Version struct {
	raw string
	sv  *semver.Version
}

// Parse parses a version string. It never fails: unparsable input becomes an
// opaque version.
func Parse(s string) Version {
	s = strings.TrimSpace(s)
	sv, err := semver.NewVersion(s)
	if err != nil {
		return Version{raw: s}
	}
	return Version{raw: s, sv: sv}
}

// String returns the version as published.
func (v Version) String() string {
	return v.raw
}

// IsSemver reports whether the version parsed as a semantic version.
func (v Version) IsSemver() bool {
	return v.sv != nil
}

// Compare returns -1 if a < b, 0 if equal, 1 if a > b.
func Compare(a, b Version) int {
	switch {
	case a.sv != nil && b.sv != nil:
		return a.sv.Compare(b.sv)
	case a.sv != nil:
		return 1
	case b.sv != nil:
		return -1
	default:
		return strings.Compare(a.raw, b.raw)
	}
}

// CompareStrings parses and compares two version strings.
func CompareStrings(a, b string) int {
	return Compare(Parse(a), Parse(b))
}

// SortCandidates orders candidates by descending version. The sort is stable, so
// among equal versions the candidate from the higher priority source stays first.
func SortCandidates(candidates []artifact.Candidate) {
	slices.SortStableFunc(candidates, func(a, b artifact.Candidate) int {
		return CompareStrings(b.Version(), a.Version())
	})
}
