// Package k8s talks to the control plane of the local cluster.
//
// A [Client] is built per run from the user's kubeconfig and a context
// name; nothing in this package holds a process-wide connection. It covers
// the storage objects the cluster needs, server-side apply of rendered
// manifests and cleanup of workload objects.
package k8s
