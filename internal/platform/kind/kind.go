package kind

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/shell"
)

const binary = "kind"

// NetworkEnv selects the docker network kind attaches nodes to.
const NetworkEnv = "KIND_EXPERIMENTAL_DOCKER_NETWORK"

// noClusters is what kind prints when there is nothing to list. Older
// releases print it on stdout.
const noClusters = "No kind clusters found."

// CreateOptions configures kind create cluster.
type CreateOptions struct {
	Name string
	// ConfigPath is the cluster definition file.
	ConfigPath string
	// Network is the docker network for the nodes. Empty leaves kind's default.
	Network string
	// Dir is the working directory kind runs in.
	Dir string
}

// Client manages kind clusters.
type Client struct {
	exec shell.Executor
}

// NewClient returns a Client running kind through exec.
func NewClient(exec shell.Executor) *Client {
	return &Client{exec: exec}
}

// ListClusters returns the names of all kind clusters.
func (c *Client) ListClusters(ctx context.Context) ([]string, error) {
	res, err := c.exec.Run(ctx, shell.Command{Name: binary, Args: []string{"get", "clusters"}})
	if err != nil {
		return nil, fmt.Errorf("failed to list kind clusters: %w", err)
	}

	var names []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == noClusters {
			continue
		}
		names = append(names, line)
	}
	return names, nil
}

// ClusterExists reports whether a cluster with the given name exists.
func (c *Client) ClusterExists(ctx context.Context, name string) (bool, error) {
	names, err := c.ListClusters(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, name), nil
}

// CreateCluster runs kind create cluster and forwards every output line to
// onLine while kind is running. It is never retried.
func (c *Client) CreateCluster(ctx context.Context, opts CreateOptions, onLine func(shell.Line)) error {
	args := []string{"create", "cluster", "--name", opts.Name}
	if opts.ConfigPath != "" {
		args = append(args, "--config", opts.ConfigPath)
	}

	cmd := shell.Command{Name: binary, Args: args, Dir: opts.Dir}
	if opts.Network != "" {
		cmd.Env = []string{NetworkEnv + "=" + opts.Network}
	}

	if err := c.exec.Stream(ctx, cmd, onLine); err != nil {
		return fmt.Errorf("failed to create kind cluster %s: %w", opts.Name, err)
	}
	return nil
}

// DeleteCluster removes a cluster and its kubeconfig context.
func (c *Client) DeleteCluster(ctx context.Context, name string) error {
	if _, err := c.exec.Run(ctx, shell.Command{Name: binary, Args: []string{"delete", "cluster", "--name", name}}); err != nil {
		return fmt.Errorf("failed to delete kind cluster %s: %w", name, err)
	}
	return nil
}
