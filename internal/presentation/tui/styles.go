package tui

import "github.com/charmbracelet/lipgloss"

// Theme names accepted by NewStyles.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Styles holds the lipgloss styles of the console.
type Styles struct {
	Prompt     lipgloss.Style
	Command    lipgloss.Style
	Output     lipgloss.Style
	Error      lipgloss.Style
	System     lipgloss.Style
	Timestamp  lipgloss.Style
	Suggestion lipgloss.Style
	Selected   lipgloss.Style
	Spinner    lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles returns the palette for theme. "auto" follows the terminal background.
func NewStyles(theme string) Styles {
	dark := theme == ThemeDark || (theme != ThemeLight && lipgloss.HasDarkBackground())

	var (
		accent = lipgloss.Color("#2563EB") // blue-600
		fg     = lipgloss.Color("#111827") // gray-900
		muted  = lipgloss.Color("#6B7280") // gray-500
		red    = lipgloss.Color("#DC2626") // red-600
		yellow = lipgloss.Color("#B45309") // amber-700
		selBg  = lipgloss.Color("#DBEAFE") // blue-100
	)
	if dark {
		accent = lipgloss.Color("#22C55E") // green-500
		fg = lipgloss.Color("#E5E7EB")     // gray-200
		muted = lipgloss.Color("#9CA3AF")  // gray-400
		red = lipgloss.Color("#EF4444")    // red-500
		yellow = lipgloss.Color("#F59E0B") // amber-500
		selBg = lipgloss.Color("#374151")  // gray-700
	}

	return Styles{
		Prompt:     lipgloss.NewStyle().Foreground(accent).Bold(true),
		Command:    lipgloss.NewStyle().Foreground(fg),
		Output:     lipgloss.NewStyle().Foreground(fg),
		Error:      lipgloss.NewStyle().Foreground(red),
		System:     lipgloss.NewStyle().Foreground(yellow),
		Timestamp:  lipgloss.NewStyle().Foreground(muted),
		Suggestion: lipgloss.NewStyle().Foreground(muted).PaddingLeft(2),
		Selected:   lipgloss.NewStyle().Foreground(fg).Background(selBg).Bold(true).PaddingLeft(2),
		Spinner:    lipgloss.NewStyle().Foreground(accent),
		Help:       lipgloss.NewStyle().Foreground(muted),
	}
}
