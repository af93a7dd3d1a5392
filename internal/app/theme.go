package app

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	applicationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	shortcutStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	rowStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	dividerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	detailsStyle     = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)
)

// HeaderStyle is shared with the CLI table output.
func HeaderStyle() lipgloss.Style {
	return headerStyle
}
