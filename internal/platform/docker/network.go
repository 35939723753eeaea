package docker

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"

	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
)

// Driver is the network driver used for cluster networks.
const Driver = "bridge"

// API is the subset of the Engine API client used to manage networks.
// *client.Client satisfies it.
type API interface {
	NetworkList(ctx context.Context, options network.ListOptions) ([]network.Summary, error)
	NetworkInspect(ctx context.Context, networkID string, options network.InspectOptions) (network.Inspect, error)
	NetworkCreate(ctx context.Context, name string, options network.CreateOptions) (network.CreateResponse, error)
	NetworkRemove(ctx context.Context, networkID string) error
}

// Network is a docker network as reported by the daemon.
type Network struct {
	ID      string
	Name    string
	Driver  string
	Subnet  string
	Gateway string
	Labels  map[string]string
}

// NetworkSpec describes a network to create.
type NetworkSpec struct {
	Name   string
	Subnet string
	Labels map[string]string
}

// Client manages docker networks.
type Client struct {
	api API
}

// NewClient returns a Client backed by api.
func NewClient(api API) *Client {
	return &Client{api: api}
}

// NewFromEnv connects to the daemon named by DOCKER_HOST and related
// variables, negotiating the API version on first use.
func NewFromEnv() (*Client, error) {
	api, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return NewClient(api), nil
}

// Close releases the underlying API client when it holds connections.
func (c *Client) Close() error {
	if closer, ok := c.api.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// FindNetwork returns the network with exactly the given name, or nil when
// no such network exists.
func (c *Client) FindNetwork(ctx context.Context, name string) (*Network, error) {
	list, err := c.api.NetworkList(ctx, network.ListOptions{
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list docker networks: %w", err)
	}

	// The name filter matches substrings, so pick the exact match.
	var id string
	for _, n := range list {
		if n.Name == name {
			id = n.ID
			break
		}
	}
	if id == "" {
		return nil, nil
	}

	inspected, err := c.api.NetworkInspect(ctx, id, network.InspectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to inspect docker network %s: %w", name, err)
	}
	return fromInspect(inspected), nil
}

func fromInspect(in network.Inspect) *Network {
	n := &Network{ID: in.ID, Name: in.Name, Driver: in.Driver, Labels: in.Labels}
	if len(in.IPAM.Config) > 0 {
		n.Subnet = in.IPAM.Config[0].Subnet
		n.Gateway = in.IPAM.Config[0].Gateway
	}
	return n
}

// CreateNetwork creates a bridge network whose subnet and IP range both
// equal spec.Subnet, with the gateway on the first host address. The
// subnet is validated before the daemon is called.
func (c *Client) CreateNetwork(ctx context.Context, spec NetworkSpec) (*Network, error) {
	gateway, err := config.Gateway(spec.Subnet)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.NetworkCreate(ctx, spec.Name, network.CreateOptions{
		Driver: Driver,
		IPAM: &network.IPAM{
			Config: []network.IPAMConfig{{
				Subnet:  spec.Subnet,
				IPRange: spec.Subnet,
				Gateway: gateway,
			}},
		},
		Labels: spec.Labels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create docker network %s: %w", spec.Name, err)
	}

	return &Network{
		ID:      resp.ID,
		Name:    spec.Name,
		Driver:  Driver,
		Subnet:  spec.Subnet,
		Gateway: gateway,
		Labels:  spec.Labels,
	}, nil
}

// DeleteNetwork removes a network.
func (c *Client) DeleteNetwork(ctx context.Context, n *Network) error {
	ref := n.ID
	if ref == "" {
		ref = n.Name
	}
	if err := c.api.NetworkRemove(ctx, ref); err != nil {
		return fmt.Errorf("failed to delete docker network %s: %w", n.Name, err)
	}
	return nil
}
