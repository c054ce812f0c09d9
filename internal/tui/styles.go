package tui

import "github.com/charmbracelet/lipgloss"

// Newsprint palette, adaptive for light and dark terminals.
var (
	colorInk      = lipgloss.AdaptiveColor{Light: "#1F2933", Dark: "#E4E7EB"}
	colorMasthead = lipgloss.AdaptiveColor{Light: "#B42318", Dark: "#F97066"}
	colorByline   = lipgloss.AdaptiveColor{Light: "#7B8794", Dark: "#7B8794"}
	colorBody     = lipgloss.AdaptiveColor{Light: "#3E4C59", Dark: "#CBD2D9"}
	colorRule     = lipgloss.AdaptiveColor{Light: "#D9E2EC", Dark: "#323F4B"}
	colorSource   = lipgloss.AdaptiveColor{Light: "#0B6E4F", Dark: "#3EBD93"}
	colorNotice   = lipgloss.AdaptiveColor{Light: "#B7791F", Dark: "#F6C177"}
	colorBar      = lipgloss.AdaptiveColor{Light: "#EEF2F6", Dark: "#1F2933"}
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorMasthead).PaddingLeft(1)
	headerQueryStyle = lipgloss.NewStyle().Foreground(colorByline).Align(lipgloss.Right)

	itemTitleStyle    = lipgloss.NewStyle().Foreground(colorInk)
	itemSelectedStyle = lipgloss.NewStyle().Foreground(colorMasthead).Bold(true)
	itemSourceStyle   = lipgloss.NewStyle().Foreground(colorSource)
	itemTimeStyle     = lipgloss.NewStyle().Foreground(colorByline)
	itemSavedStyle    = lipgloss.NewStyle().Foreground(colorSource).Italic(true)

	previewTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorInk).MarginBottom(1)
	previewSourceStyle = lipgloss.NewStyle().Foreground(colorSource).MarginBottom(1)
	previewBodyStyle   = lipgloss.NewStyle().Foreground(colorBody)
	previewLinkStyle   = lipgloss.NewStyle().Foreground(colorByline).Italic(true)

	statusBarStyle = lipgloss.NewStyle().Background(colorBar).Foreground(colorBody)
	toastStyle     = lipgloss.NewStyle().Foreground(colorNotice).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(colorMasthead)
	spinnerStyle   = lipgloss.NewStyle().Foreground(colorMasthead)
)

// paneStyle frames the list and preview columns; the focused one gets the
// masthead color.
func paneStyle(focused bool) lipgloss.Style {
	border := colorRule
	if focused {
		border = colorMasthead
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border)
}
