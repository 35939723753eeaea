package commands

import (
	"github.com/spf13/cobra"

	"github.com/nicodoggie/devctl-plugin-kind/cmd/devctl-kind/handlers"
)

// Down returns the command that deletes the cluster.
func Down() *cobra.Command {
	var withNetwork bool

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Delete the kind cluster",
		Long: `Delete the project's kind cluster.

The docker network is kept so the next up reuses its subnet; pass
--network to remove it as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Down(cmd.Context(), withNetwork)
		},
	}

	cmd.Flags().BoolVar(&withNetwork, "network", false, "Also delete the cluster network")

	return cmd
}
