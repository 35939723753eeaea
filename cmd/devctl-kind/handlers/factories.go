// Package handlers implements the business logic for CLI commands.
package handlers

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
	"github.com/nicodoggie/devctl-plugin-kind/internal/k8s"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/docker"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/shell"
	"github.com/nicodoggie/devctl-plugin-kind/internal/ui/tui"
	"github.com/nicodoggie/devctl-plugin-kind/internal/util/prerequisites"
)

// Factory function variables - can be replaced in tests.
var (
	// getwd returns the directory the project is discovered from.
	getwd = os.Getwd

	// loadConfig reads the project configuration. Validation runs as the
	// first phase so invalid input maps to the config exit code.
	loadConfig = config.LoadWithoutValidation

	// loadValidConfig reads and validates the project configuration.
	loadValidConfig = config.Load

	// newExecutor creates the executor for kind and bootstrap steps.
	newExecutor = func() shell.Executor {
		return shell.NewExecutor()
	}

	// newNetworks connects to the docker daemon managing cluster networks.
	newNetworks = func() (*docker.Client, error) {
		return docker.NewFromEnv()
	}

	// newKubeClient connects to the cluster's kubeconfig context.
	newKubeClient = func(cfg *config.Config) (k8s.Client, error) {
		return k8s.NewForContext("", cfg.Context())
	}

	// checkRequiredTools checks the tools up and down need.
	checkRequiredTools = func(ctx context.Context) *prerequisites.CheckResults {
		return prerequisites.NewChecker().CheckForUp(ctx)
	}

	// checkAllTools checks required and optional tools.
	checkAllTools = func(ctx context.Context) *prerequisites.CheckResults {
		return prerequisites.NewChecker().CheckAll(ctx)
	}

	// isInteractive reports whether the dashboard can be shown.
	isInteractive = isInteractiveTTY

	// runDashboard runs an up under the terminal dashboard.
	runDashboard = tui.RunUpTUI
)

// loadProject finds the project containing the working directory and loads
// its configuration with load.
func loadProject(load func(root string) (*config.Config, error)) (*config.Config, error) {
	cwd, err := getwd()
	if err != nil {
		return nil, err
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		return nil, err
	}
	return load(root)
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
