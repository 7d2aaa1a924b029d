package artifact

import (
	"fmt"
	"strings"
)

// Wildcard is the version constraint meaning "any version, selector picks best".
const Wildcard = "*"

// registrySeparator splits an optional registry qualifier from the artifact name.
// Example: microsoft:tools/kitware/cmake
const registrySeparator = ":"

// Specifier identifies a requested artifact.
type Specifier struct {
	Index      int    // position in the user's input
	Registry   string // optional registry qualifier, empty means any registry
	Name       string // e.g., "tools/kitware/cmake"
	Constraint string // e.g., "*", "3.27.1", ">=3.20 <4"
}

// ParseSpecifier parses "name" or "registry:name" into a Specifier.
// An empty or blank constraint becomes Wildcard.
func ParseSpecifier(index int, input, constraint string) (Specifier, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Specifier{}, fmt.Errorf("%w: empty name", ErrInvalidSpecifier)
	}

	var registry, name string
	parts := strings.Split(input, registrySeparator)
	switch len(parts) {
	case 1:
		name = parts[0]
	case 2:
		registry, name = parts[0], parts[1]
		if registry == "" || name == "" {
			return Specifier{}, fmt.Errorf("%w: %q", ErrInvalidSpecifier, input)
		}
	default:
		return Specifier{}, fmt.Errorf("%w: %q", ErrInvalidSpecifier, input)
	}

	constraint = strings.TrimSpace(constraint)
	if constraint == "" {
		constraint = Wildcard
	}

	return Specifier{
		Index:      index,
		Registry:   registry,
		Name:       name,
		Constraint: constraint,
	}, nil
}

// IsWildcard reports whether any version satisfies the specifier.
func (s Specifier) IsWildcard() bool {
	return s.Constraint == "" || s.Constraint == Wildcard
}

// QualifiedName returns the name with its registry qualifier, if any.
func (s Specifier) QualifiedName() string {
	if s.Registry == "" {
		return s.Name
	}
	return s.Registry + registrySeparator + s.Name
}

// String formats the specifier for messages, e.g. "main:cmake (>=3.20)".
func (s Specifier) String() string {
	if s.IsWildcard() {
		return s.QualifiedName()
	}
	return fmt.Sprintf("%s (%s)", s.QualifiedName(), s.Constraint)
}
