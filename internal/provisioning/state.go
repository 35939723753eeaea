package provisioning

import (
	"github.com/nicodoggie/devctl-plugin-kind/internal/bootstrap"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/docker"
	"github.com/nicodoggie/devctl-plugin-kind/internal/reconcile"
	"github.com/nicodoggie/devctl-plugin-kind/internal/storage"
)

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Probe results (populated before anything is changed)
	ClusterExists bool
	NetworkExists bool
	Network       *docker.Network

	// Reconcile results
	ClusterDeleted  bool
	NetworkDecision reconcile.Decision
	ClusterDecision reconcile.Decision

	// Bootstrap and storage results
	Steps   []bootstrap.StepOutcome
	Storage []storage.Result
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{}
}

// FailedStep returns the failed bootstrap outcome, if any.
func (s *State) FailedStep() (bootstrap.StepOutcome, bool) {
	for _, o := range s.Steps {
		if !o.Succeeded {
			return o, true
		}
	}
	return bootstrap.StepOutcome{}, false
}
