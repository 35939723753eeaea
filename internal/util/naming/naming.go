package naming

import "fmt"

// Naming functions for resources owned by a local cluster.
// Every name is derived from the cluster name so a second run finds
// the resources created by the first one.

const (
	// DefaultVolume is the PersistentVolume exposing the project repository.
	DefaultVolume = "repo-pv"
	// DefaultVolumeClaim is the claim workloads mount to reach the repository.
	DefaultVolumeClaim = "repo-pvc"
)

// Network returns the docker network the cluster nodes are attached to.
func Network(cluster string) string {
	return fmt.Sprintf("kind-net-%s", cluster)
}

// KubeContext returns the kubeconfig context kind writes for a cluster.
func KubeContext(cluster string) string {
	return fmt.Sprintf("kind-%s", cluster)
}
