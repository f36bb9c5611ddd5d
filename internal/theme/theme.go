package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorLeaf    = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorBrown   = lipgloss.AdaptiveColor{Dark: "#C4A484", Light: "#7B5E3B"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.AdaptiveColor{Dark: "#1A202C", Light: "#F8F9FA"}).
	Background(ColorLeaf).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// CardStyle frames one figure on the dashboard.
var CardStyle = lipgloss.NewStyle().
	Padding(0, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorLeaf)

// LabelStyle renders field labels in detail views.
var LabelStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Width(18)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle renders inline error messages.
var ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed)

// CareLevelStyle returns a color-coded style for a care level.
func CareLevelStyle(level string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch strings.ToLower(level) {
	case "easy":
		return base.Foreground(ColorLeaf)
	case "moderate":
		return base.Foreground(ColorYellow)
	case "difficult":
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}

// CategoryStyle returns a color-coded style for a plant category label.
func CategoryStyle(category string) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1)

	switch strings.ToLower(category) {
	case "succulent", "fern", "herb":
		return base.Foreground(ColorLeaf)
	case "flowering":
		return base.Foreground(ColorMagenta)
	case "tree", "shrub":
		return base.Foreground(ColorBrown)
	default:
		return base.Foreground(ColorGray)
	}
}

// HealthStyle colors a free-text health status by keyword.
func HealthStyle(status string) lipgloss.Style {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "healthy") || strings.Contains(s, "good") || strings.Contains(s, "thriving"):
		return lipgloss.NewStyle().Foreground(ColorLeaf)
	case strings.Contains(s, "sick") || strings.Contains(s, "dying") || strings.Contains(s, "pest"):
		return lipgloss.NewStyle().Foreground(ColorRed)
	case s == "":
		return lipgloss.NewStyle().Foreground(ColorGray)
	default:
		return lipgloss.NewStyle().Foreground(ColorOrange)
	}
}

// DueStyle colors a next watering date: overdue red, due today orange.
func DueStyle(overdue, today bool) lipgloss.Style {
	switch {
	case overdue:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorRed)
	case today:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorOrange)
	default:
		return lipgloss.NewStyle().Foreground(ColorBlue)
	}
}
