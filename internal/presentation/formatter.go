package presentation

import (
	"encoding/json"
	"io"
)

// Formatter writes machine-readable JSON output.
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatCandidates formats artifact versions as JSON.
func (f *Formatter) FormatCandidates(cs []CandidateDTO) error {
	return f.encode(nonNil(cs))
}

// FormatSelections formats a selection set as JSON.
func (f *Formatter) FormatSelections(sels []SelectionDTO) error {
	return f.encode(nonNil(sels))
}

// FormatActive formats the session's active artifacts as JSON.
func (f *Formatter) FormatActive(as []ActiveDTO) error {
	return f.encode(nonNil(as))
}

// FormatRegistries formats registries as JSON.
func (f *Formatter) FormatRegistries(rs []RegistryDTO) error {
	return f.encode(nonNil(rs))
}

// FormatOutcomes formats an activation report as JSON.
func (f *Formatter) FormatOutcomes(os []OutcomeDTO) error {
	return f.encode(nonNil(os))
}

// nonNil makes empty results encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
