// Package styles holds the lipgloss palette shared by the console report
// and the team browser.
package styles

import "github.com/charmbracelet/lipgloss"

// Team health values accepted by HealthColor and HealthIcon.
const (
	HealthOK      = "ok"
	HealthWarning = "warning" // a soft goal is unmet, e.g. no leader
	HealthProblem = "problem" // a language nobody can translate
)

// Palette. Foregrounds keep WCAG AA contrast on dark terminals.
var (
	PrimaryColor = lipgloss.Color("#A78BFA")
	OKColor      = lipgloss.Color("#10B981")
	WarningColor = lipgloss.Color("#F59E0B")
	ErrorColor   = lipgloss.Color("#F87171")
	MutedColor   = lipgloss.Color("#9CA3AF")
	TextColor    = lipgloss.Color("#F9FAFB")
	BorderColor  = lipgloss.Color("#6B7280")
)

// categoryColors follows cluster.Categories order: by, bo, sy, so.
var categoryColors = map[string]lipgloss.Color{
	"by": lipgloss.Color("#60A5FA"),
	"bo": lipgloss.Color("#A78BFA"),
	"sy": lipgloss.Color("#F472B6"),
	"so": lipgloss.Color("#FB923C"),
}

var healthMarks = map[string]struct {
	color lipgloss.Color
	icon  string
}{
	HealthOK:      {OKColor, "✓"},
	HealthWarning: {WarningColor, "!"},
	HealthProblem: {ErrorColor, "✗"},
}

var (
	Primary = lipgloss.NewStyle().Foreground(PrimaryColor)
	Warning = lipgloss.NewStyle().Foreground(WarningColor)
	Muted   = lipgloss.NewStyle().Foreground(MutedColor)

	Title    = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).MarginBottom(1)
	Subtitle = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)

	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1)

	// Sidebar lists the teams; ContentBox shows the selected one.
	Sidebar    = panel
	ContentBox = panel

	SidebarItem       = lipgloss.NewStyle().Padding(0, 1)
	SidebarItemActive = SidebarItem.Bold(true).Foreground(TextColor).Background(PrimaryColor)

	// FilterBar frames the cluster search input.
	FilterBar = panel.BorderForeground(PrimaryColor)

	HelpBar = lipgloss.NewStyle().Foreground(MutedColor).MarginTop(1)
	HelpKey = lipgloss.NewStyle().Bold(true).Foreground(OKColor)

	ErrorMsg   = lipgloss.NewStyle().Bold(true).Foreground(ErrorColor)
	SuccessMsg = lipgloss.NewStyle().Bold(true).Foreground(OKColor)
	WarningMsg = lipgloss.NewStyle().Bold(true).Foreground(WarningColor)
)

// HealthColor returns the color of a team health value. Unknown values
// are muted.
func HealthColor(health string) lipgloss.Color {
	if m, ok := healthMarks[health]; ok {
		return m.color
	}
	return MutedColor
}

// HealthIcon returns the marker shown next to a team.
func HealthIcon(health string) string {
	if m, ok := healthMarks[health]; ok {
		return m.icon
	}
	return "●"
}

// CategoryColor returns the color of a two-letter category code, or the
// muted color for categoryless clusters.
func CategoryColor(category string) lipgloss.Color {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return MutedColor
}
