package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-filegroups/internal/tui/browser"
	"github.com/mattsolo1/grove-filegroups/pkg/service"
)

// NewTuiCmd launches the interactive group browser.
func NewTuiCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:     "tui",
		Short:   "Browse groups interactively",
		Aliases: []string{"browse"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			s.Start()

			model := browser.New(s)
			p := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run browser: %w", err)
			}
			return nil
		},
	}
}
