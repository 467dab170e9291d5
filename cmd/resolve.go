package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-filegroups/pkg/service"
)

// NewResolveCmd reports which group owns a path.
func NewResolveCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show which group owns a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			id := s.FindOwningGroup(abs)
			if id == "" {
				fmt.Println("No group owns this path.")
				return nil
			}
			g := s.Registry().Get(id)
			fmt.Printf("%s (%s)\n", g.Name, g.ID)
			return nil
		},
	}
}
