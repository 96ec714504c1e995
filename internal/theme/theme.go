package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/model"
)

// Theme names accepted by display.theme.
const (
	Dark  = "dark"
	Light = "light"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// Apply selects which side of the adaptive colors is rendered. Anything
// other than Light renders the dark palette.
func Apply(name string) {
	lipgloss.SetHasDarkBackground(name != Light)
}

// Toggle returns the other theme name.
func Toggle(name string) string {
	if name == Light {
		return Dark
	}
	return Light
}

// HeaderStyle is used for the title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// SummaryStyle renders the stats line under the header.
var SummaryStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Padding(0, 1)

var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// ErrorBarStyle replaces StatusBarStyle while an error is shown.
var ErrorBarStyle = StatusBarStyle.
	Background(ColorRed).
	Bold(true)

// PanelStyle wraps modal content such as the alert and the help overlay.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// AlertStyle is the frame of a due-reminder alert.
var AlertStyle = PanelStyle.
	BorderForeground(ColorRed)

var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the focused list row.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle renders disabled reminders.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Faint(true)

var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	MarginBottom(1)

var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// StatusStyle returns the badge style for a reminder status.
func StatusStyle(status model.Status) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.StatusTaken:
		return base.Foreground(ColorGreen)
	case model.StatusOverdue:
		return base.Foreground(ColorRed)
	case model.StatusDueSoon:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorBlue)
	}
}

// StatusLabel is the short badge text for a status.
func StatusLabel(status model.Status) string {
	switch status {
	case model.StatusTaken:
		return "TAKEN"
	case model.StatusOverdue:
		return "OVERDUE"
	case model.StatusDueSoon:
		return "SOON"
	default:
		return "SCHEDULED"
	}
}
