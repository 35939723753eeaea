package config

// Project files, all relative to the project root.
const (
	MarkerFilename   = ".devctl.yaml"
	ClusterFilename  = ".devctl-kind.yaml"
	TopologyFilename = ".devctl-kind.config.yaml"
	// DevconfigFilename holds per-service deployment overrides.
	DevconfigFilename = ".devconfig.yaml"
)

// Defaults applied to an unset field.
const (
	DefaultSubnet       = "10.100.0.0/16"
	DefaultNamespace    = "default"
	DefaultCapacity     = "10Gi"
	DefaultAccessMode   = "ReadWriteMany"
	DefaultHostPath     = "/repo"
	DefaultStorageClass = "standard"
)

// DefaultNodeSelector pins the repository volume to the nodes that run
// web workloads.
func DefaultNodeSelector() map[string]string {
	return map[string]string{"web": "1"}
}
