package provisioning

import (
	"context"

	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/shell"
)

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Config   *config.Config
	Topology *config.Topology
	State    *State
	Observer Observer
	Timeouts *config.Timeouts

	// Replace forces existing network and cluster to be recreated.
	Replace bool

	Networks   NetworkManager
	Clusters   ClusterManager
	Exec       shell.Executor
	KubeClient KubeClientFactory
}

// NewContext creates a new provisioning context with a console observer
// writing to a discarding logger. Callers replace Observer as needed.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	networks NetworkManager,
	clusters ClusterManager,
	exec shell.Executor,
	kube KubeClientFactory,
) *Context {
	return &Context{
		Context:    ctx,
		Config:     cfg,
		State:      NewState(),
		Observer:   NewConsoleObserver(discardLogger()),
		Timeouts:   config.LoadTimeouts(),
		Networks:   networks,
		Clusters:   clusters,
		Exec:       exec,
		KubeClient: kube,
	}
}
