package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-filegroups/pkg/service"
)

// NewWatchCmd runs the change propagator in the foreground and reports
// refresh signals, mostly useful for debugging watch behavior.
func NewWatchCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch group roots and report change signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			s.Start()

			roots := s.Registry().Roots()
			if len(roots) == 0 {
				fmt.Println("No roots declared; watching only the groups document.")
			} else {
				fmt.Printf("Watching %d root(s) under %s\n", len(roots), s.WorkspaceRoot())
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

			for {
				select {
				case <-s.OnChanged():
					fmt.Println("tree changed")
				case <-sig:
					return nil
				}
			}
		},
	}
}
