package labels

// Standard label keys for resources created by devctl-kind.
const (
	// KeyCluster identifies which cluster a resource belongs to
	KeyCluster = "devctl-kind.io/cluster"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "app.kubernetes.io/managed-by"

	// KeyNetwork marks docker networks created for a cluster; its value is
	// the network name.
	KeyNetwork = "com.splitmedialabs.devctl-kind-network"
)

// ManagedBy values
const (
	ManagedByDevctlKind = "devctl-kind"
)

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the cluster name pre-set.
func NewLabelBuilder(clusterName string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyCluster:   clusterName,
			KeyManagedBy: ManagedByDevctlKind,
		},
	}
}

// WithNetwork adds the docker network marker label.
func (lb *LabelBuilder) WithNetwork(network string) *LabelBuilder {
	lb.labels[KeyNetwork] = network
	return lb
}

// WithManagedBy sets who manages this resource.
func (lb *LabelBuilder) WithManagedBy(manager string) *LabelBuilder {
	lb.labels[KeyManagedBy] = manager
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}
