// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import (
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Root returns the root command for the devctl-kind CLI.
func Root() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "devctl-kind",
		Short:         "Manage the local kind cluster of a devctl project",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(logr.NewContext(cmd.Context(), newLogger(debug)))
		},
	}
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable verbose development logging")

	cmd.AddCommand(Up())
	cmd.AddCommand(Down())
	cmd.AddCommand(Deploy())
	cmd.AddCommand(Doctor())
	cmd.AddCommand(Version())

	return cmd
}

// newLogger builds the CLI logger. Debug mode enables V(1) lines such as
// external tool output.
func newLogger(debug bool) logr.Logger {
	opts := zap.Options{
		Development: debug,
	}
	return zap.New(zap.UseFlagOptions(&opts), zap.ConsoleEncoder(), zap.WriteTo(os.Stderr))
}
