package ui

import "github.com/charmbracelet/lipgloss"

// palette is the dark theme used by both the static renderer and the
// browser.
var palette = struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
}{
	Primary:   lipgloss.Color("#7C3AED"),
	Secondary: lipgloss.Color("#06B6D4"),
	Accent:    lipgloss.Color("#10B981"),
	Warning:   lipgloss.Color("#F59E0B"),
	Error:     lipgloss.Color("#EF4444"),
	Muted:     lipgloss.Color("#94A3B8"),
}

var (
	bgDark   = lipgloss.Color("#0F172A")
	bgMedium = lipgloss.Color("#1E293B")
	bgLight  = lipgloss.Color("#334155")

	textPrimary   = lipgloss.Color("#F8FAFC")
	textSecondary = lipgloss.Color("#CBD5E1")
)

var (
	appStyle = lipgloss.NewStyle().Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#8B5CF6")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Background(palette.Secondary).
			Foreground(bgDark).
			Bold(true).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Background(bgMedium).
			Foreground(textSecondary).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(bgMedium).
			Foreground(textSecondary).
			Padding(0, 1)

	headerCellStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(textPrimary).
			Padding(0, 1)

	nullCellStyle = cellStyle.Foreground(palette.Muted).Italic(true)

	borderStyle = lipgloss.NewStyle().Foreground(bgLight)

	successStyle = lipgloss.NewStyle().
			Foreground(palette.Accent).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Error).
			Foreground(palette.Error).
			Padding(0, 1)

	planStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(0, 1)
)
