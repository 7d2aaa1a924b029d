package confirm

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/acquire/internal/keys"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true)
	choiceStyle   = lipgloss.NewStyle().Padding(0, 1)
	activeStyle   = choiceStyle.
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}).
			Background(lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#3498DB"})
)

// Model is the yes/no prompt. The highlighted choice starts at the default and
// Enter accepts it.
type Model struct {
	question  string
	keys      keys.ConfirmKeyMap
	help      help.Model
	yes       bool // highlighted choice
	done      bool
	confirmed bool
}

// New creates a prompt for question with def highlighted.
func New(question string, def bool) Model {
	return Model{
		question: question,
		keys:     keys.DefaultConfirmKeyMap(),
		help:     help.New(),
		yes:      def,
	}
}

// Confirmed reports the answer; false until the user accepted.
func (m Model) Confirmed() bool { return m.confirmed }

// Done reports whether the user answered.
func (m Model) Done() bool { return m.done }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		return m.answer(true)
	case key.Matches(keyMsg, m.keys.No), key.Matches(keyMsg, m.keys.Cancel):
		return m.answer(false)
	case key.Matches(keyMsg, m.keys.Submit):
		return m.answer(m.yes)
	case key.Matches(keyMsg, m.keys.Toggle):
		m.yes = !m.yes
	}
	return m, nil
}

func (m Model) answer(yes bool) (tea.Model, tea.Cmd) {
	m.done = true
	m.confirmed = yes
	return m, tea.Quit
}

func (m Model) View() string {
	if m.done {
		answer := "no"
		if m.confirmed {
			answer = "yes"
		}
		return questionStyle.Render(m.question) + " " + answer + "\n"
	}

	yes, no := choiceStyle.Render("Yes"), choiceStyle.Render("No")
	if m.yes {
		yes = activeStyle.Render("Yes")
	} else {
		no = activeStyle.Render("No")
	}

	var b strings.Builder
	b.WriteString(questionStyle.Render(m.question))
	b.WriteString(" ")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, yes, " ", no))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}
