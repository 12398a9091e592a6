package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Tree items
	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("8")).
			Foreground(lipgloss.Color("15")).
			Bold(true)

	groupStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true)

	sessionItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("8"))

	attachedIconStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#22C55E"))

	attachedIconSelectedStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("#22C55E")).
					Background(lipgloss.Color("8"))

	idleIconSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	// Separator
	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	// Help / status
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	// Error
	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))
)

// ErrorText renders msg the way the picker renders errors. The CLI uses it
// for its own error line so both look alike.
func ErrorText(msg string) string {
	return errStyle.Render(msg)
}
