package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#0EA5E9")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")

	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	subtitleStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	topicStyle       = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
	activeTopicStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Background(lipgloss.Color("#0C2A3A")).Padding(0, 1)
	statusStyle      = lipgloss.NewStyle().Italic(true).Foreground(colorAccent)
	userStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("#0284C7")).Padding(0, 1)
	assistantStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFaint).Padding(0, 1)
	metaStyle        = lipgloss.NewStyle().Foreground(colorFaint)
	typingStyle      = lipgloss.NewStyle().Foreground(colorAccent).Italic(true)
	emptyTitleStyle  = lipgloss.NewStyle().Bold(true)
	inputStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1)
	disabledStyle    = inputStyle.BorderForeground(colorFaint)
	footerStyle      = lipgloss.NewStyle().Foreground(colorFaint)
)
