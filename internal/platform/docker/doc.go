// Package docker manages the bridge network kind nodes are attached to.
//
// The package talks to the daemon through the Engine API client. A network
// is looked up by exact name; absence is reported as a nil network, never
// as an error.
package docker
