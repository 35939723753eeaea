package commands

import (
	"github.com/spf13/cobra"

	"github.com/nicodoggie/devctl-plugin-kind/cmd/devctl-kind/handlers"
)

// Doctor returns the command that checks the local setup.
func Doctor() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check required tools and the project configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), cmd.OutOrStdout())
		},
	}
}
