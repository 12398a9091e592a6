package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/leo/txr/internal/launch"
	"github.com/leo/txr/internal/mux"
	"github.com/leo/txr/internal/tui"
)

// runSessions opens the picker over every registered multiplexer and
// attaches to the chosen session once the picker has left the alt screen.
func runSessions(cmd *cobra.Command, l *launch.Launcher) error {
	var muxes []mux.Multiplexer
	for _, name := range mux.Names() {
		m, err := mux.New(name, mux.Options{Runner: l.Runner, LayoutPath: l.Config.Layout, Identity: l.Identity})
		if err != nil {
			return err
		}
		muxes = append(muxes, m)
	}

	final, err := tea.NewProgram(tui.NewModel(muxes...), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("session picker: %w", err)
	}
	s, ok := final.(tui.Model).Chosen()
	if !ok {
		return nil
	}
	m, err := mux.New(s.Multiplexer, mux.Options{Runner: l.Runner})
	if err != nil {
		return err
	}
	return m.Attach(cmd.Context(), s.Name, l.Inside(s.Multiplexer))
}
