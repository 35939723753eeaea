// Package labels provides consistent labeling for docker networks and
// Kubernetes objects created for a local cluster.
package labels
