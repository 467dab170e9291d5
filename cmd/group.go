package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-filegroups/pkg/service"
)

// NewGroupCmd builds the `group` command family: everything that mutates the
// group list goes through here.
func NewGroupCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "group",
		Short:   "Manage file groups",
		Aliases: []string{"g"},
	}

	cmd.AddCommand(newGroupListCmd(svc))
	cmd.AddCommand(newGroupAddCmd(svc))
	cmd.AddCommand(newGroupRenameCmd(svc))
	cmd.AddCommand(newGroupRemoveCmd(svc))
	cmd.AddCommand(newGroupCopyCmd(svc))
	cmd.AddCommand(newGroupMoveCmd(svc))
	cmd.AddCommand(newGroupAddPathsCmd(svc))
	cmd.AddCommand(newGroupRemovePathCmd(svc))
	cmd.AddCommand(newGroupBindCmd(svc))
	return cmd
}

// resolveGroup accepts a group id or (unique) name.
func resolveGroup(s *service.Service, ref string) (string, error) {
	if g := s.Registry().Get(ref); g != nil {
		return g.ID, nil
	}
	var id string
	for _, g := range s.Registry().Groups() {
		if g.Name == ref {
			if id != "" {
				return "", fmt.Errorf("group name is ambiguous: %s", ref)
			}
			id = g.ID
		}
	}
	if id == "" {
		return "", fmt.Errorf("group not found: %s", ref)
	}
	return id, nil
}

func newGroupListCmd(svc **service.Service) *cobra.Command {
	var listJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List groups and their paths",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			groups := s.Registry().Groups()

			if listJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(groups)
			}

			if len(groups) == 0 {
				fmt.Println("No groups defined. Create one with: fg group add <name>")
				return nil
			}

			branch := s.BranchName()
			active := s.ActiveGroupID()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPATHS\tREF")
			for _, g := range groups {
				name := g.Name
				if g.ID == active {
					name += " *"
				}
				ref := g.BoundRef
				if ref != "" && branch != "" && ref != branch {
					ref += " (off-branch)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.ID, name, strings.Join(g.Roots, ", "), ref)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	return cmd
}

func newGroupAddCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := (*svc).Registry().AddGroup(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Created group %s (%s)\n", g.Name, g.ID)
			return nil
		},
	}
}

func newGroupRenameCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <group> <new-name>",
		Short: "Rename a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveGroup(*svc, args[0])
			if err != nil {
				return err
			}
			return (*svc).Registry().RenameGroup(id, args[1])
		},
	}
}

func newGroupRemoveCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <group>",
		Short:   "Delete a group",
		Aliases: []string{"remove", "delete"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveGroup(*svc, args[0])
			if err != nil {
				return err
			}
			return (*svc).Registry().DeleteGroup(id)
		},
	}
}

func newGroupCopyCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <group> <new-name>",
		Short: "Duplicate a group and its path list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveGroup(*svc, args[0])
			if err != nil {
				return err
			}
			dup, err := (*svc).Registry().CopyGroup(id, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Created group %s (%s)\n", dup.Name, dup.ID)
			return nil
		},
	}
}

func newGroupMoveCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "move <group> <up|down>",
		Short: "Move a group within the display order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveGroup(*svc, args[0])
			if err != nil {
				return err
			}
			switch args[1] {
			case "up":
				return (*svc).Registry().Reorder(id, -1)
			case "down":
				return (*svc).Registry().Reorder(id, 1)
			}
			return fmt.Errorf("direction must be up or down, got %q", args[1])
		},
	}
}

func newGroupAddPathsCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "add-paths <group> <path>...",
		Short: "Add workspace-relative paths to a group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveGroup(*svc, args[0])
			if err != nil {
				return err
			}
			return (*svc).Registry().AddRoots(id, args[1:])
		},
	}
}

func newGroupRemovePathCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-path <group> <path>",
		Short: "Remove one path from a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveGroup(*svc, args[0])
			if err != nil {
				return err
			}
			return (*svc).Registry().RemoveRoot(id, args[1])
		},
	}
}

func newGroupBindCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "bind <group> [ref]",
		Short: "Bind a group to a version-control ref (omit ref to clear)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveGroup(*svc, args[0])
			if err != nil {
				return err
			}
			ref := ""
			if len(args) == 2 {
				ref = args[1]
			}
			return (*svc).Registry().SetBoundRef(id, ref)
		},
	}
}
