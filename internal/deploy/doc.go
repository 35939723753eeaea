// Package deploy renders the project's local Helm charts and applies them
// to the kind cluster.
//
// Every deploy.yaml below the project root with a chart section describes
// one service. The chart is rendered with the Helm engine, Deployments get
// the development overrides from the service's .devconfig.yaml, and the
// result is applied with server-side apply.
package deploy
