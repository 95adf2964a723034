package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

	listPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	logPaneStyle = lipgloss.NewStyle().Padding(0, 1)

	convStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	selectedConvStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

	ownMessageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	theirMessageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	emptyStyle   = lipgloss.NewStyle().Faint(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)
