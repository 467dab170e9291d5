package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-filegroups/cmd"
	"github.com/mattsolo1/grove-filegroups/cmd/config"
	"github.com/mattsolo1/grove-filegroups/pkg/service"
)

var svc *service.Service

func main() {
	rootCmd := &cobra.Command{
		Use:   "fg",
		Short: "Group project paths and browse them as live trees",
		Long: `fg maintains named groups of workspace paths and presents each group as a
compact tree that stays in sync with the filesystem. Groups live in
.grove/filegroups.json at the workspace root.`,
		SilenceUsage: true,
	}
	config.AddGlobalFlags(rootCmd)

	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// This runs once before any subcommand.
		config.InitConfig()
		var err error
		svc, err = config.InitService()
		return err
	}
	rootCmd.PersistentPostRun = func(c *cobra.Command, args []string) {
		if svc != nil {
			svc.Close()
		}
	}

	rootCmd.AddCommand(cmd.NewGroupCmd(&svc))
	rootCmd.AddCommand(cmd.NewTreeCmd(&svc))
	rootCmd.AddCommand(cmd.NewResolveCmd(&svc))
	rootCmd.AddCommand(cmd.NewRevealCmd(&svc))
	rootCmd.AddCommand(cmd.NewWatchCmd(&svc))
	rootCmd.AddCommand(cmd.NewTuiCmd(&svc))
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
