package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-filegroups/pkg/service"
)

// NewRevealCmd walks the displayed tree to the node for a path.
func NewRevealCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "reveal <path>",
		Short: "Locate a path in its group's tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			node, groupID := s.Reveal(abs)
			if node == nil {
				fmt.Println("Path is not inside any group.")
				return nil
			}

			g := s.Registry().Get(groupID)
			fmt.Printf("group: %s (%s)\n", g.Name, g.ID)
			fmt.Printf("node:  %s [%s]\n", node.Label, node.Kind)
			fmt.Printf("path:  %s\n", node.AbsPath)
			if node.AbsPath != abs {
				fmt.Println("note:  target not reachable; stopped at the deepest existing ancestor")
			}
			return nil
		},
	}
}
