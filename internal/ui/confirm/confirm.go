// Package confirm asks the user whether the selected artifacts should be activated.
package confirm

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/zjrosen/acquire/internal/domain/artifact"
	"github.com/zjrosen/acquire/internal/log"
)

// Confirmer decides whether a selection set may be activated.
type Confirmer interface {
	Confirm(ctx context.Context, set *artifact.SelectionSet) (bool, error)
}

// Static answers every question the same way. Static(true) backs --yes.
type Static bool

// Confirm returns the fixed answer.
func (s Static) Confirm(context.Context, *artifact.SelectionSet) (bool, error) {
	return bool(s), nil
}

// Prompt asks interactively with a bubbletea program.
type Prompt struct {
	In       io.Reader
	Out      io.Writer
	Question string
	Default  bool
}

// Confirm runs the prompt until the user answers or ctx is cancelled.
func (p *Prompt) Confirm(ctx context.Context, set *artifact.SelectionSet) (bool, error) {
	question := p.Question
	if question == "" {
		n := 1
		if set != nil {
			n = set.Len()
		}
		question = DefaultQuestion(n)
	}
	m := New(question, p.Default)

	program := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(p.In),
		tea.WithOutput(p.Out),
	)
	final, err := program.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, err
	}
	answer := final.(Model).Confirmed()
	log.Debug(log.CatUI, "confirmation answered", "confirmed", answer)
	return answer, nil
}

// DefaultQuestion phrases the prompt for n artifacts.
func DefaultQuestion(n int) string {
	if n == 1 {
		return "Activate this artifact?"
	}
	return "Activate these artifacts?"
}

// ForTerminal picks the confirmer for the current process. --yes always accepts.
// Without a terminal on in nothing can be asked, so the answer is no.
func ForTerminal(in *os.File, out io.Writer, yes bool) Confirmer {
	if yes {
		return Static(true)
	}
	if !isTerminal(in) {
		log.Warn(log.CatUI, "stdin is not a terminal, declining without --yes")
		return Static(false)
	}
	return &Prompt{In: in, Out: out, Default: true}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
