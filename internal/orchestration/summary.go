package orchestration

import (
	"fmt"

	"github.com/nicodoggie/devctl-plugin-kind/internal/provisioning"
)

// Summary describes what exists before anything is changed.
type Summary struct {
	Cluster       string
	ClusterExists bool
	Network       string
	Subnet        string
	NetworkExists bool
	// Topology is the node role breakdown, empty when unknown.
	Topology string
	Replace  bool
}

// Summarize captures the probe results held in the context.
func Summarize(ctx *provisioning.Context) Summary {
	s := Summary{
		Cluster:       ctx.Config.ClusterName,
		ClusterExists: ctx.State.ClusterExists,
		Network:       ctx.Config.NetworkName(),
		Subnet:        ctx.Config.Network.Subnet,
		NetworkExists: ctx.State.NetworkExists,
		Replace:       ctx.Replace,
	}
	if n := ctx.State.Network; n != nil && n.Subnet != "" {
		s.Subnet = n.Subnet
	}
	if ctx.Topology != nil {
		s.Topology = ctx.Topology.String()
	}
	return s
}

// Lines renders the summary for display.
func (s Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("Cluster %s: %s", s.Cluster, s.action(s.ClusterExists)),
		fmt.Sprintf("Network %s (%s): %s", s.Network, s.Subnet, s.action(s.NetworkExists)),
	}
	if s.Topology != "" {
		lines = append(lines, "Nodes: "+s.Topology)
	}
	return lines
}

func (s Summary) action(exists bool) string {
	switch {
	case !exists:
		return "not found, will be created"
	case s.Replace:
		return "exists, will be replaced"
	default:
		return "exists, will be reused"
	}
}
