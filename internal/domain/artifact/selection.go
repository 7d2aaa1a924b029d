package artifact

import "slices"

// Candidate is an artifact version discovered by querying a registry source.
type Candidate struct {
	Artifact *Artifact
	Source   string // registry source name
	Priority int    // source position in the resolver, 0 is highest
}

// Name returns the candidate's artifact name.
func (c Candidate) Name() string {
	return c.Artifact.Name()
}

// Version returns the candidate's artifact version.
func (c Candidate) Version() string {
	return c.Artifact.Version()
}

// Selection pairs a specifier with the candidates chosen for it, best first.
type Selection struct {
	Specifier  Specifier
	Candidates []Candidate
}

// Best returns the highest ranked candidate.
func (s Selection) Best() Candidate {
	return s.Candidates[0]
}

// SelectionSet is an ordered mapping from each specifier occurrence to its selection.
type SelectionSet struct {
	selections []Selection
}

// NewSelectionSet builds a selection set, enforcing that no two selections resolve
// the same artifact name to different versions.
func NewSelectionSet(selections []Selection) (*SelectionSet, error) {
	chosen := make(map[string]string, len(selections))
	for _, sel := range selections {
		if len(sel.Candidates) == 0 {
			return nil, &NoMatchError{Specifier: sel.Specifier, Wanted: 1}
		}
		best := sel.Best()
		prev, ok := chosen[best.Name()]
		if ok && prev != best.Version() {
			return nil, &VersionConflictError{Name: best.Name(), Versions: []string{prev, best.Version()}}
		}
		chosen[best.Name()] = best.Version()
	}

	ordered := slices.Clone(selections)
	slices.SortStableFunc(ordered, func(a, b Selection) int {
		return a.Specifier.Index - b.Specifier.Index
	})
	return &SelectionSet{selections: ordered}, nil
}

// Selections returns the selections in input order.
func (s *SelectionSet) Selections() []Selection {
	return s.selections
}

// Len returns the number of selections.
func (s *SelectionSet) Len() int {
	return len(s.selections)
}

// Artifacts returns the best candidate of each selection, once per name, in input order.
func (s *SelectionSet) Artifacts() []Candidate {
	seen := make(map[string]bool, len(s.selections))
	result := make([]Candidate, 0, len(s.selections))
	for _, sel := range s.selections {
		best := sel.Best()
		if seen[best.Name()] {
			continue
		}
		seen[best.Name()] = true
		result = append(result, best)
	}
	return result
}
