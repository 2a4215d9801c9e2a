package ui

import "github.com/charmbracelet/lipgloss"

var (
	indigo = lipgloss.Color("#818CF8")

	SplashStyle = lipgloss.NewStyle().
			Foreground(indigo).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	HelpStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(indigo).
			Padding(1, 2)
)
