package provisioning

import (
	"context"

	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
	"github.com/nicodoggie/devctl-plugin-kind/internal/k8s"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/docker"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/kind"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/shell"
)

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the provisioning logic for this phase.
	Provision(ctx *Context) error
}

// Logger is the minimal printf-style logging interface.
type Logger interface {
	Printf(format string, v ...any)
}

// NetworkManager manages the docker network of the cluster.
// Implemented by docker.Client.
type NetworkManager interface {
	// FindNetwork returns nil and no error when the network does not exist.
	FindNetwork(ctx context.Context, name string) (*docker.Network, error)
	CreateNetwork(ctx context.Context, spec docker.NetworkSpec) (*docker.Network, error)
	DeleteNetwork(ctx context.Context, n *docker.Network) error
}

// ClusterManager manages kind clusters.
// Implemented by kind.Client.
type ClusterManager interface {
	ListClusters(ctx context.Context) ([]string, error)
	ClusterExists(ctx context.Context, name string) (bool, error)
	// CreateCluster forwards output lines to onLine while kind runs.
	CreateCluster(ctx context.Context, opts kind.CreateOptions, onLine func(shell.Line)) error
	DeleteCluster(ctx context.Context, name string) error
}

// KubeClientFactory builds a control-plane client for a configured cluster.
// It is called after the cluster exists, never earlier.
type KubeClientFactory func(cfg *config.Config) (k8s.Client, error)

// Compile-time checks.
var (
	_ NetworkManager = (*docker.Client)(nil)
	_ ClusterManager = (*kind.Client)(nil)
)
