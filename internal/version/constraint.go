package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/zjrosen/acquire/internal/domain/artifact"
)

// Constraint is a parsed version constraint.
type Constraint struct {
	raw      string
	wildcard bool
	c        *semver.Constraints
}

// ParseConstraint parses a constraint such as "*", "1.2.3", ">=1.0 <2", "^1.2" or
// "~1.2". Strings that are not valid semver constraints match by exact text.
func ParseConstraint(s string) Constraint {
	s = strings.TrimSpace(s)
	if s == "" || s == artifact.Wildcard {
		return Constraint{raw: artifact.Wildcard, wildcard: true}
	}
	c, err := semver.NewConstraint(s)
	if err != nil {
		return Constraint{raw: s}
	}
	return Constraint{raw: s, c: c}
}

// String returns the constraint text.
func (c Constraint) String() string {
	return c.raw
}

// IsWildcard reports whether every version satisfies the constraint.
func (c Constraint) IsWildcard() bool {
	return c.wildcard
}

// Match reports whether v satisfies the constraint.
func (c Constraint) Match(v Version) bool {
	if c.wildcard {
		return true
	}
	if v.raw == c.raw {
		return true
	}
	if c.c == nil || v.sv == nil {
		return false
	}
	return c.c.Check(v.sv)
}

// MatchString parses v and reports whether it satisfies the constraint.
func (c Constraint) MatchString(v string) bool {
	return c.Match(Parse(v))
}
