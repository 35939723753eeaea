package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/nicodoggie/devctl-plugin-kind/internal/deploy"
	"github.com/nicodoggie/devctl-plugin-kind/internal/provisioning"
)

// DeployOptions holds the flags of the deploy command.
type DeployOptions struct {
	Clean       bool
	Wait        bool
	WaitTimeout time.Duration
}

// Deploy handles the deploy command.
//
// It renders every visible service chart of the project and applies the
// result to the cluster's namespace.
func Deploy(ctx context.Context, opts DeployOptions) error {
	log := logr.FromContextOrDiscard(ctx)

	cfg, err := loadProject(loadValidConfig)
	if err != nil {
		return err
	}

	client, err := newKubeClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to cluster %s: %w", cfg.ClusterName, err)
	}

	d := deploy.NewDeployer(cfg, client, provisioning.NewConsoleObserver(log))
	applied, err := d.Run(ctx, deploy.Options{
		Clean:       opts.Clean,
		Wait:        opts.Wait,
		WaitTimeout: opts.WaitTimeout,
	})
	if err != nil {
		return fmt.Errorf("deploy failed: %w", err)
	}

	log.Info("Deploy complete", "objects", len(applied), "namespace", cfg.Storage.Namespace)
	return nil
}
