// Package naming provides consistent naming functions for local cluster resources.
//
// The docker network is named kind-net-{cluster} and the kubeconfig context
// kind-{cluster}, matching what kind itself writes.
package naming
