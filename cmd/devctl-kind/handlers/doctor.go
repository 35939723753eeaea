package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
	"github.com/nicodoggie/devctl-plugin-kind/internal/util/prerequisites"
)

// Doctor handles the doctor command.
//
// It reports every tool devctl-kind uses and, when run inside a project,
// the configuration issues and topology. Only missing required tools and
// configuration errors fail the command.
func Doctor(ctx context.Context, out io.Writer) error {
	results := checkAllTools(ctx)
	printTools(out, results)

	fmt.Fprintln(out)
	cfgErr := printProject(out)

	if err := results.Error(); err != nil {
		return err
	}
	return cfgErr
}

func printTools(out io.Writer, results *prerequisites.CheckResults) {
	fmt.Fprintln(out, "Tools")
	for _, r := range results.Results {
		switch {
		case r.Found:
			version := r.Version
			if version == "" {
				version = "version unknown"
			}
			fmt.Fprintf(out, "  %s %-8s %s\n", checkIndicator, r.Tool.Name, version)
		case r.Tool.Required:
			fmt.Fprintf(out, "  %s %-8s missing, install from %s\n", failIndicator, r.Tool.Name, r.Tool.InstallURL)
		default:
			fmt.Fprintf(out, "  %s %-8s not installed (optional: %s)\n", warnIndicator, r.Tool.Name, r.Tool.Description)
		}
	}
}

func printProject(out io.Writer) error {
	fmt.Fprintln(out, "Project")

	cfg, err := loadProject(loadConfig)
	if err != nil {
		fmt.Fprintf(out, "  %s %v\n", failIndicator, err)
		return err
	}
	fmt.Fprintf(out, "  %s root      %s\n", checkIndicator, cfg.ProjectRoot)
	fmt.Fprintf(out, "  %s cluster   %s (context %s)\n", checkIndicator, cfg.ClusterName, cfg.Context())
	fmt.Fprintf(out, "  %s network   %s %s\n", checkIndicator, cfg.NetworkName(), cfg.Network.Subnet)

	if topology, err := config.LoadTopology(cfg.ProjectRoot); err != nil {
		fmt.Fprintf(out, "  %s topology  %v\n", failIndicator, err)
	} else {
		fmt.Fprintf(out, "  %s topology  %s\n", checkIndicator, topology)
	}

	issues := cfg.Check()
	for _, issue := range issues {
		indicator := warnIndicator
		if issue.IsError() {
			indicator = failIndicator
		}
		fmt.Fprintf(out, "  %s %s: %s\n", indicator, issue.Field, issue.Message)
	}
	return cfg.Validate()
}

const (
	checkIndicator = "[OK]"
	failIndicator  = "[!!]"
	warnIndicator  = "[--]"
)
