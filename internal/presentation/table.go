package presentation

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/acquire/internal/activation"
	"github.com/zjrosen/acquire/internal/domain/artifact"
)

// maxCellWidth bounds a column; longer cells are truncated with an ellipsis.
const maxCellWidth = 60

// RenderTable lays rows out in left-aligned columns under a styled header.
// Cells may already carry ANSI styling.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = ansi.StringWidth(h)
	}
	for _, row := range rows {
		for i := range min(len(row), len(widths)) {
			widths[i] = min(max(widths[i], ansi.StringWidth(row[i])), maxCellWidth)
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		parts := make([]string, len(widths))
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = ansi.Truncate(cells[i], w, "…")
			}
			pad := strings.Repeat(" ", w-ansi.StringWidth(cell))
			if style != nil {
				cell = style.Render(cell)
			}
			parts[i] = cell + pad
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		b.WriteByte('\n')
	}

	writeRow(headers, &headerStyle)
	for _, row := range rows {
		writeRow(row, nil)
	}
	return b.String()
}

// ShowSelections prints the artifacts about to be activated.
func ShowSelections(w io.Writer, set *artifact.SelectionSet) error {
	rows := make([][]string, 0, set.Len())
	for _, s := range set.Selections() {
		best := s.Best()
		constraint := s.Specifier.Constraint
		if s.Specifier.IsWildcard() {
			constraint = mutedStyle.Render("latest")
		}
		rows = append(rows, []string{
			best.Name(),
			constraint,
			successStyle.Render(best.Version()),
			best.Source,
			best.Artifact.Summary(),
		})
	}
	_, err := io.WriteString(w, RenderTable([]string{"Artifact", "Requested", "Version", "Registry", "Summary"}, rows))
	return err
}

// ShowCandidates prints a list of artifact versions.
func ShowCandidates(w io.Writer, cs []artifact.Candidate) error {
	if len(cs) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No artifacts found."))
		return err
	}
	rows := make([][]string, len(cs))
	for i, c := range cs {
		rows[i] = []string{c.Name(), c.Version(), c.Source, strings.Join(c.Artifact.Languages(), ","), c.Artifact.Summary()}
	}
	_, err := io.WriteString(w, RenderTable([]string{"Artifact", "Version", "Registry", "Languages", "Summary"}, rows))
	return err
}

// ShowActive prints the session's active artifacts.
func ShowActive(w io.Writer, as []artifact.ActiveArtifact) error {
	if len(as) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No active artifacts."))
		return err
	}
	rows := make([][]string, len(as))
	for i, a := range as {
		rows[i] = []string{
			a.Name,
			a.Version,
			a.Source,
			a.Handle.ActivatedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprint(len(a.Handle.Changes)),
		}
	}
	_, err := io.WriteString(w, RenderTable([]string{"Artifact", "Version", "Registry", "Activated", "Changes"}, rows))
	return err
}

// ShowRegistries prints registries and their reachability.
func ShowRegistries(w io.Writer, rs []RegistryDTO) error {
	if len(rs) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No registries configured."))
		return err
	}
	rows := make([][]string, len(rs))
	for i, r := range rs {
		status := successStyle.Render("ok")
		if !r.Reachable {
			status = errorStyle.Render("unreachable")
			if r.Error != "" {
				status += " " + mutedStyle.Render(r.Error)
			}
		}
		rows[i] = []string{r.Name, r.Kind, r.Location, status}
	}
	_, err := io.WriteString(w, RenderTable([]string{"Registry", "Kind", "Location", "Status"}, rows))
	return err
}

// ShowReport prints one line per activated, skipped or failed artifact.
func ShowReport(w io.Writer, r *activation.Report) error {
	for _, o := range r.Outcomes {
		id := o.Candidate.Artifact.ID()
		var line string
		switch o.State {
		case activation.StateActivated:
			line = successStyle.Render("✓") + " " + id
			if o.Replaced != "" {
				line += mutedStyle.Render(" (replaced " + o.Replaced + ")")
			}
		case activation.StateSkipped:
			line = mutedStyle.Render("- " + id + " (already active)")
		case activation.StateFailed:
			line = errorStyle.Render("✗") + " " + id
			if o.Err != nil {
				line += ": " + causeOf(o.Err)
			}
		default:
			line = "? " + id + " " + o.State.String()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// causeOf drops the "activating name@version:" prefix the line already shows.
func causeOf(err error) string {
	if ae, ok := err.(*artifact.ActivationError); ok && ae.Err != nil {
		return ae.Err.Error()
	}
	return err.Error()
}
