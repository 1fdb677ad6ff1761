package dashboard

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("39")
	colorSecondary = lipgloss.Color("86")
	colorRepeated  = lipgloss.Color("220")
	colorUnique    = lipgloss.Color("42")
	colorError     = lipgloss.Color("196")
	colorDim       = lipgloss.Color("241")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	metricStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)

	repeatedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRepeated)

	uniqueStyle = lipgloss.NewStyle().
			Foreground(colorUnique)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	descriptionStyle = lipgloss.NewStyle().
				Italic(true)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim)

	focusedPaneStyle = paneStyle.
				BorderForeground(colorPrimary)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)
)
