package config

import (
	"github.com/nicodoggie/devctl-plugin-kind/internal/bootstrap"
	"github.com/nicodoggie/devctl-plugin-kind/internal/util/naming"
)

// Config is the cluster configuration of a project.
type Config struct {
	// ProjectRoot is the directory holding the .devctl.yaml marker. Relative
	// step directories and the topology file are resolved against it.
	ProjectRoot string `yaml:"-"`

	ClusterName string `yaml:"clusterName"`
	// KubeContext overrides the kubeconfig context, kind-<cluster> otherwise.
	KubeContext string         `yaml:"kubeContext,omitempty"`
	Network     NetworkConfig  `yaml:"network"`
	Storage     StorageConfig  `yaml:"storage"`
	Bootstrap   bootstrap.Plan `yaml:"bootstrap"`
}

// NetworkConfig describes the docker bridge network the kind nodes join.
type NetworkConfig struct {
	// Name defaults to kind-net-<cluster>.
	Name   string `yaml:"name,omitempty"`
	Subnet string `yaml:"subnet"`
}

// StorageConfig describes the repository volume and its claim.
type StorageConfig struct {
	// Disabled skips the storage stage entirely.
	Disabled     bool              `yaml:"disabled,omitempty"`
	VolumeName   string            `yaml:"volumeName,omitempty"`
	ClaimName    string            `yaml:"claimName,omitempty"`
	Namespace    string            `yaml:"namespace,omitempty"`
	Capacity     string            `yaml:"capacity,omitempty"`
	AccessMode   string            `yaml:"accessMode,omitempty"`
	HostPath     string            `yaml:"hostPath,omitempty"`
	StorageClass string            `yaml:"storageClass,omitempty"`
	NodeSelector map[string]string `yaml:"nodeSelector,omitempty"`
}

// NetworkName returns the docker network name for the cluster.
func (c *Config) NetworkName() string {
	if c.Network.Name != "" {
		return c.Network.Name
	}
	return naming.Network(c.ClusterName)
}

// Context returns the kubeconfig context used to reach the cluster.
func (c *Config) Context() string {
	if c.KubeContext != "" {
		return c.KubeContext
	}
	return naming.KubeContext(c.ClusterName)
}

// ApplyDefaults fills every unset field with its default.
func (c *Config) ApplyDefaults() {
	if c.Network.Subnet == "" {
		c.Network.Subnet = DefaultSubnet
	}

	s := &c.Storage
	if s.VolumeName == "" {
		s.VolumeName = naming.DefaultVolume
	}
	if s.ClaimName == "" {
		s.ClaimName = naming.DefaultVolumeClaim
	}
	if s.Namespace == "" {
		s.Namespace = DefaultNamespace
	}
	if s.Capacity == "" {
		s.Capacity = DefaultCapacity
	}
	if s.AccessMode == "" {
		s.AccessMode = DefaultAccessMode
	}
	if s.HostPath == "" {
		s.HostPath = DefaultHostPath
	}
	if s.StorageClass == "" {
		s.StorageClass = DefaultStorageClass
	}
	if s.NodeSelector == nil {
		s.NodeSelector = DefaultNodeSelector()
	}
}
