package commands

import (
	"github.com/spf13/cobra"

	"github.com/nicodoggie/devctl-plugin-kind/cmd/devctl-kind/handlers"
	"github.com/nicodoggie/devctl-plugin-kind/internal/deploy"
)

// Deploy returns the command that applies the project's services.
func Deploy() *cobra.Command {
	var opts handlers.DeployOptions

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Render and apply the project's service charts",
		Long: `Render the Helm chart of every service with a deploy.yaml and apply it.

Deployments are adjusted for development from each service's .devconfig.yaml:
the repository claim is mounted, health checks are removed and the configured
volumes, host aliases and container fields are applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "Delete all workloads in the namespace first")
	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "Wait for deployments to become available")
	cmd.Flags().DurationVar(&opts.WaitTimeout, "timeout", deploy.DefaultWaitTimeout, "How long to wait for each deployment")

	return cmd
}
