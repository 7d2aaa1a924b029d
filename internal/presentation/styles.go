package presentation

import "github.com/charmbracelet/lipgloss"

var (
	textMutedColor     = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#696969"}
	headerColor        = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#89B4FA"}
	statusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	statusWarningColor = lipgloss.AdaptiveColor{Light: "#B7950B", Dark: "#FECA57"}
	statusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(headerColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(textMutedColor)
	successStyle = lipgloss.NewStyle().Foreground(statusSuccessColor)
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(statusWarningColor)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(statusErrorColor)
)
