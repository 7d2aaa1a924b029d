// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// ConfirmKeyMap defines the keybindings of the activation confirmation prompt.
type ConfirmKeyMap struct {
	Yes    key.Binding
	No     key.Binding
	Toggle key.Binding
	Submit key.Binding
	Cancel key.Binding
}

// DefaultConfirmKeyMap returns the default prompt keybindings.
func DefaultConfirmKeyMap() ConfirmKeyMap {
	return ConfirmKeyMap{
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "activate"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n", "cancel"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("left", "right", "h", "l", "tab"),
			key.WithHelp("←/→", "switch"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k ConfirmKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No, k.Toggle, k.Submit}
}

// FullHelp returns keybindings for the full help view.
func (k ConfirmKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Yes, k.No},                  // Answers
		{k.Toggle, k.Submit, k.Cancel}, // Navigation
	}
}
