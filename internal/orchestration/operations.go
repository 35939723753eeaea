package orchestration

import (
	"context"

	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/docker"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/kind"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/shell"
	"github.com/nicodoggie/devctl-plugin-kind/internal/provisioning"
	"github.com/nicodoggie/devctl-plugin-kind/internal/reconcile"
	"github.com/nicodoggie/devctl-plugin-kind/internal/util/labels"
)

// networkOperation reconciles the docker network of the cluster.
func networkOperation(ctx *provisioning.Context) *reconcile.Operation[*docker.Network] {
	cfg := ctx.Config
	name := cfg.NetworkName()

	return &reconcile.Operation[*docker.Network]{
		Kind: reconcile.KindNetwork,
		Name: name,
		Probe: func(c context.Context) (*docker.Network, bool, error) {
			n, err := ctx.Networks.FindNetwork(c, name)
			return n, n != nil, err
		},
		Create: func(c context.Context) (*docker.Network, error) {
			return ctx.Networks.CreateNetwork(c, docker.NetworkSpec{
				Name:   name,
				Subnet: cfg.Network.Subnet,
				Labels: labels.NewLabelBuilder(cfg.ClusterName).WithNetwork(name).Build(),
			})
		},
		Delete: func(c context.Context, n *docker.Network) error {
			return ctx.Networks.DeleteNetwork(c, n)
		},
	}
}

// clusterOperation reconciles the kind cluster. Creation streams kind's
// output to the observer and is bounded by the cluster create timeout.
func clusterOperation(ctx *provisioning.Context, phase string) *reconcile.Operation[string] {
	cfg := ctx.Config
	name := cfg.ClusterName

	return &reconcile.Operation[string]{
		Kind: reconcile.KindCluster,
		Name: name,
		Probe: func(c context.Context) (string, bool, error) {
			exists, err := ctx.Clusters.ClusterExists(c, name)
			return name, exists, err
		},
		Create: func(c context.Context) (string, error) {
			c, cancel := context.WithTimeout(c, ctx.Timeouts.ClusterCreate)
			defer cancel()

			opts := kind.CreateOptions{
				Name:    name,
				Network: cfg.NetworkName(),
				Dir:     cfg.ProjectRoot,
			}
			if ctx.Topology != nil {
				opts.ConfigPath = ctx.Topology.Path
			}
			if ctx.State.Network != nil {
				opts.Network = ctx.State.Network.Name
			}

			err := ctx.Clusters.CreateCluster(c, opts, func(line shell.Line) {
				provisioning.LogOutput(ctx.Observer, phase, string(line.Stream), line.Text)
			})
			return name, err
		},
		Delete: func(c context.Context, name string) error {
			c, cancel := context.WithTimeout(c, ctx.Timeouts.Delete)
			defer cancel()
			return ctx.Clusters.DeleteCluster(c, name)
		},
	}
}
