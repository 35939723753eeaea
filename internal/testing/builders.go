package testing

import (
	"maps"
	"slices"

	"github.com/nicodoggie/devctl-plugin-kind/internal/bootstrap"
	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a new ConfigBuilder with sensible defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			ClusterName: "test-cluster",
			Network: config.NetworkConfig{
				Subnet: config.DefaultSubnet,
			},
		},
	}
}

// WithClusterName sets the cluster name.
func (b *ConfigBuilder) WithClusterName(name string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.ClusterName = name
	return newBuilder
}

// WithProjectRoot sets the project root directory.
func (b *ConfigBuilder) WithProjectRoot(root string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.ProjectRoot = root
	return newBuilder
}

// WithSubnet sets the network subnet.
func (b *ConfigBuilder) WithSubnet(subnet string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Network.Subnet = subnet
	return newBuilder
}

// WithNetworkName overrides the docker network name.
func (b *ConfigBuilder) WithNetworkName(name string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Network.Name = name
	return newBuilder
}

// WithGroup appends a bootstrap group with one step per command.
func (b *ConfigBuilder) WithGroup(groupType string, commands ...string) *ConfigBuilder {
	newBuilder := b.clone()
	group := bootstrap.ActionGroup{Type: groupType}
	for _, c := range commands {
		group.Steps = append(group.Steps, bootstrap.Step{Run: c})
	}
	newBuilder.cfg.Bootstrap = append(newBuilder.cfg.Bootstrap, group)
	return newBuilder
}

// WithoutStorage disables the storage stage.
func (b *ConfigBuilder) WithoutStorage() *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Storage.Disabled = true
	return newBuilder
}

// WithStorageNamespace sets the namespace of the volume claim.
func (b *ConfigBuilder) WithStorageNamespace(ns string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Storage.Namespace = ns
	return newBuilder
}

// Build returns the config with defaults applied.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.clone().cfg
	cfg.ApplyDefaults()
	return &cfg
}

// clone creates a deep copy of the builder.
func (b *ConfigBuilder) clone() *ConfigBuilder {
	cfg := b.cfg
	cfg.Storage.NodeSelector = maps.Clone(b.cfg.Storage.NodeSelector)
	cfg.Bootstrap = make(bootstrap.Plan, 0, len(b.cfg.Bootstrap))
	for _, g := range b.cfg.Bootstrap {
		g.Steps = slices.Clone(g.Steps)
		cfg.Bootstrap = append(cfg.Bootstrap, g)
	}
	return &ConfigBuilder{cfg: cfg}
}

// MinimalConfig returns a valid config without bootstrap steps.
func MinimalConfig() *config.Config {
	return NewConfigBuilder().Build()
}

// FullConfig returns a config with a two-group bootstrap plan.
func FullConfig() *config.Config {
	return NewConfigBuilder().
		WithGroup("pre", "echo a", "echo b").
		WithGroup("post", "echo c").
		Build()
}
