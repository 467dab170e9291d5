package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-filegroups/pkg/models"
	"github.com/mattsolo1/grove-filegroups/pkg/service"
)

// NewTreeCmd prints the materialized tree for one group or all of them.
func NewTreeCmd(svc **service.Service) *cobra.Command {
	var (
		mode     string
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "tree [group]",
		Short: "Print a group's tree",
		Long: `Print the materialized tree for a group, or for every group.

Examples:
  fg tree                 # all groups, flat mode
  fg tree backend         # one group
  fg tree --mode full     # merged full-path segments`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			if mode != "" {
				settings := s.Settings()
				settings.DisplayMode = models.DisplayMode(mode)
				switch settings.DisplayMode {
				case models.DisplayFlat, models.DisplayFullPaths:
				default:
					return fmt.Errorf("invalid mode: %q", mode)
				}
				s.UpdateSettings(settings)
			}

			groups := s.GetChildren(nil)
			if len(args) == 1 {
				id, err := resolveGroup(s, args[0])
				if err != nil {
					return err
				}
				filtered := groups[:0]
				for _, g := range groups {
					if g.GroupID == id {
						filtered = append(filtered, g)
					}
				}
				groups = filtered
			}

			for _, g := range groups {
				fmt.Println(g.Label)
				printSubtree(s, g, 1, maxDepth)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Display mode: flat or full")
	cmd.Flags().IntVarP(&maxDepth, "depth", "d", 4, "Maximum depth to expand")
	return cmd
}

func printSubtree(s *service.Service, node *models.TreeNode, depth, maxDepth int) {
	if depth > maxDepth {
		return
	}
	for _, child := range s.GetChildren(node) {
		label := child.Label
		if child.IsDir {
			label += "/"
		}
		if child.Kind == models.KindPathSegment && !child.IsTerminal {
			label += " ·"
		}
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth), label)
		if child.HasChildren {
			printSubtree(s, child, depth+1, maxDepth)
		}
	}
}
