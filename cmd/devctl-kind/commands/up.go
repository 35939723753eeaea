package commands

import (
	"github.com/spf13/cobra"

	"github.com/nicodoggie/devctl-plugin-kind/cmd/devctl-kind/handlers"
)

// Up returns the command that creates or reuses the cluster.
//
// Optional flags:
//
//	--replace: Delete an existing cluster and create it again
//	--metrics-file: Write Prometheus metrics of the run to a file
func Up() *cobra.Command {
	var opts handlers.UpOptions

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Create or reuse the kind cluster and run the bootstrap plan",
		Long: `Bring the project's kind cluster into the desired state.

The command checks the docker network and the cluster, creates whatever is
missing, runs the bootstrap plan from .devctl-kind.yaml and finally makes
sure the repository volume and its claim exist.

Existing resources are reused as they are unless --replace is given, which
deletes the cluster (and recreates the network) before creating it again.

Exit codes:
  255  network delete failed      254  network create failed
  253  cluster delete failed      252  cluster create failed
  251  bootstrap step failed      250  storage failed
  249  existence check failed     248  configuration invalid

Examples:
  # Create or reuse the cluster
  devctl-kind up

  # Start over from scratch
  devctl-kind up --replace`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Up(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "Delete and recreate an existing cluster")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics of the run to this file")

	return cmd
}
