package handlers

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/nicodoggie/devctl-plugin-kind/internal/orchestration"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/kind"
	"github.com/nicodoggie/devctl-plugin-kind/internal/provisioning"
)

// Down handles the down command.
func Down(ctx context.Context, withNetwork bool) error {
	log := logr.FromContextOrDiscard(ctx)

	cfg, err := loadProject(loadConfig)
	if err != nil {
		return &orchestration.Error{Stage: orchestration.StageConfig, Err: err}
	}
	if res := checkRequiredTools(ctx); res.HasErrors() {
		return &orchestration.Error{Stage: orchestration.StageConfig, Err: res.Error()}
	}

	networks, err := newNetworks()
	if err != nil {
		return &orchestration.Error{Stage: orchestration.StageConfig, Err: err}
	}
	defer func() { _ = networks.Close() }()

	exec := newExecutor()
	o := orchestration.New(cfg, networks, kind.NewClient(exec), exec, newKubeClient,
		orchestration.WithObserver(provisioning.NewConsoleObserver(log)))

	if err := o.Teardown(ctx, withNetwork); err != nil {
		return err
	}
	log.Info("Cluster removed", "cluster", cfg.ClusterName, "network", withNetwork)
	return nil
}
