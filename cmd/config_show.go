package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cmdconfig "github.com/mattsolo1/grove-filegroups/cmd/config"
)

// NewConfigCmd prints the effective settings snapshot.
func NewConfigCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cmdconfig.Settings()
			if err != nil {
				return err
			}

			out := map[string]any{
				"display_mode":      string(settings.DisplayMode),
				"auto_reveal":       settings.AutoReveal,
				"collapse_inactive": settings.CollapseInactive,
				"debug":             settings.Debug,
			}

			if asYAML {
				data, err := yaml.Marshal(out)
				if err != nil {
					return fmt.Errorf("marshal settings: %w", err)
				}
				fmt.Print(string(data))
				return nil
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Output as YAML")
	return cmd
}
