package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha palette.
var (
	colorSurface1 = lipgloss.Color("#45475A")
	colorOverlay  = lipgloss.Color("#6C7086")
	colorText     = lipgloss.Color("#CDD6F4")

	colorGreen  = lipgloss.Color("#A6E3A1")
	colorYellow = lipgloss.Color("#F9E2AF")
	colorRed    = lipgloss.Color("#F38BA8")
	colorBlue   = lipgloss.Color("#89B4FA")
	colorMauve  = lipgloss.Color("#CBA6F7")
	colorPeach  = lipgloss.Color("#FAB387")
)

var providerColors = map[string]lipgloss.Color{
	"claude":            colorPeach,
	"gemini":            colorBlue,
	"gemini-monitoring": colorMauve,
	"openai":            colorGreen,
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorMauve).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorText)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorOverlay)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)

	connectedStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	disconnectedStyle = lipgloss.NewStyle().
				Foreground(colorOverlay)
)
