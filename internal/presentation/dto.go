package presentation

import (
	"time"

	"github.com/zjrosen/acquire/internal/activation"
	"github.com/zjrosen/acquire/internal/domain/artifact"
)

// CandidateDTO is an artifact version as offered by a registry.
type CandidateDTO struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Registry  string   `json:"registry"`
	Summary   string   `json:"summary,omitempty"`
	Languages []string `json:"languages,omitempty"`
	Location  string   `json:"location,omitempty"`
}

// SelectionDTO is the outcome of selecting one specifier.
type SelectionDTO struct {
	Specifier  string         `json:"specifier"`
	Constraint string         `json:"constraint"`
	Selected   CandidateDTO   `json:"selected"`
	Alternates []CandidateDTO `json:"alternates,omitempty"`
}

// ActiveDTO is an active artifact of the session.
type ActiveDTO struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Registry    string    `json:"registry,omitempty"`
	ActivatedAt time.Time `json:"activated_at"`
	Changes     int       `json:"changes"`
}

// RegistryDTO is a configured registry and whether it answered.
type RegistryDTO struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Location  string `json:"location"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

// OutcomeDTO is the final activation state of one artifact.
type OutcomeDTO struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	State    string `json:"state"`
	Replaced string `json:"replaced,omitempty"`
	Error    string `json:"error,omitempty"`
}

// FromCandidate converts a candidate.
func FromCandidate(c artifact.Candidate) CandidateDTO {
	return CandidateDTO{
		Name:      c.Name(),
		Version:   c.Version(),
		Registry:  c.Source,
		Summary:   c.Artifact.Summary(),
		Languages: c.Artifact.Languages(),
		Location:  c.Artifact.Location(),
	}
}

// FromCandidates converts candidates, keeping order.
func FromCandidates(cs []artifact.Candidate) []CandidateDTO {
	out := make([]CandidateDTO, len(cs))
	for i, c := range cs {
		out[i] = FromCandidate(c)
	}
	return out
}

// FromSelectionSet converts every selection in input order.
func FromSelectionSet(set *artifact.SelectionSet) []SelectionDTO {
	sels := set.Selections()
	out := make([]SelectionDTO, len(sels))
	for i, s := range sels {
		out[i] = SelectionDTO{
			Specifier:  s.Specifier.QualifiedName(),
			Constraint: s.Specifier.Constraint,
			Selected:   FromCandidate(s.Best()),
		}
		if len(s.Candidates) > 1 {
			out[i].Alternates = FromCandidates(s.Candidates[1:])
		}
	}
	return out
}

// FromActive converts active artifacts.
func FromActive(as []artifact.ActiveArtifact) []ActiveDTO {
	out := make([]ActiveDTO, len(as))
	for i, a := range as {
		out[i] = ActiveDTO{
			Name:        a.Name,
			Version:     a.Version,
			Registry:    a.Source,
			ActivatedAt: a.Handle.ActivatedAt,
			Changes:     len(a.Handle.Changes),
		}
	}
	return out
}

// FromReport converts an activation report.
func FromReport(r *activation.Report) []OutcomeDTO {
	out := make([]OutcomeDTO, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = OutcomeDTO{
			Name:     o.Candidate.Name(),
			Version:  o.Candidate.Version(),
			State:    o.State.String(),
			Replaced: o.Replaced,
		}
		if o.Err != nil {
			out[i].Error = o.Err.Error()
		}
	}
	return out
}
