// Package main is the entry point for the devctl-kind CLI.
//
// devctl-kind brings a project's local kind cluster into the desired state:
// the docker network, the cluster itself, the bootstrap plan and the
// repository volume. The process exit status identifies the stage that
// failed.
//
// Commands: up, down, deploy, doctor, version.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nicodoggie/devctl-plugin-kind/cmd/devctl-kind/commands"
	"github.com/nicodoggie/devctl-plugin-kind/internal/orchestration"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(orchestration.ExitCode(err))
}
