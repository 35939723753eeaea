// Package provisioning provides the shared types the cluster lifecycle runs
// on.
//
// # Core Types
//
// Context carries configuration, state, platform clients, and the observer.
// Phase defines a provisioning step with Name() and Provision() methods.
// State accumulates results from each phase (what existed, what was
// created, bootstrap outcomes, storage results).
// Observer receives structured events; ConsoleObserver renders them through
// a logr.Logger.
package provisioning
