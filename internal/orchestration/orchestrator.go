package orchestration

import (
	"context"

	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/shell"
	"github.com/nicodoggie/devctl-plugin-kind/internal/provisioning"
)

// Orchestrator brings the network, cluster, bootstrap plan and storage of
// one project into the desired state.
type Orchestrator struct {
	cfg      *config.Config
	topology *config.Topology
	networks provisioning.NetworkManager
	clusters provisioning.ClusterManager
	exec     shell.Executor
	kube     provisioning.KubeClientFactory
	observer provisioning.Observer
	timeouts *config.Timeouts
	state    *provisioning.State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver sets the observer receiving progress events.
func WithObserver(obs provisioning.Observer) Option {
	return func(o *Orchestrator) {
		o.observer = obs
	}
}

// WithTimeouts overrides the timeouts loaded from the environment.
func WithTimeouts(t *config.Timeouts) Option {
	return func(o *Orchestrator) {
		o.timeouts = t
	}
}

// WithTopology sets the node topology instead of loading it from the
// project.
func WithTopology(t *config.Topology) Option {
	return func(o *Orchestrator) {
		o.topology = t
	}
}

// New creates an Orchestrator.
func New(
	cfg *config.Config,
	networks provisioning.NetworkManager,
	clusters provisioning.ClusterManager,
	exec shell.Executor,
	kube provisioning.KubeClientFactory,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		networks: networks,
		clusters: clusters,
		exec:     exec,
		kube:     kube,
		state:    provisioning.NewState(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run reconciles everything. Each call starts from a fresh State.
func (o *Orchestrator) Run(ctx context.Context, replace bool) error {
	pctx := o.newContext(ctx)
	pctx.Replace = replace
	return provisioning.RunPhases(pctx, o.phases())
}

// Teardown deletes the cluster and, when withNetwork is set, the network.
func (o *Orchestrator) Teardown(ctx context.Context, withNetwork bool) error {
	phases := []provisioning.Phase{&teardownClusterPhase{}}
	if withNetwork {
		phases = append(phases, &teardownNetworkPhase{})
	}
	return provisioning.RunPhases(o.newContext(ctx), phases)
}

// State returns the results of the last Run or Teardown.
func (o *Orchestrator) State() *provisioning.State {
	return o.state
}

// PhaseNames lists the phases Run executes, in order.
func (o *Orchestrator) PhaseNames() []string {
	phases := o.phases()
	names := make([]string, 0, len(phases))
	for _, p := range phases {
		names = append(names, p.Name())
	}
	return names
}

func (o *Orchestrator) phases() []provisioning.Phase {
	return []provisioning.Phase{
		staged(StageConfig, provisioning.NewValidationPhase()),
		&clusterProbePhase{},
		&networkProbePhase{},
		&replaceClusterPhase{},
		&networkPhase{},
		&clusterPhase{},
		&bootstrapPhase{},
		&storagePhase{},
	}
}

func (o *Orchestrator) newContext(ctx context.Context) *provisioning.Context {
	o.state = provisioning.NewState()

	pctx := provisioning.NewContext(ctx, o.cfg, o.networks, o.clusters, o.exec, o.kube)
	pctx.State = o.state
	pctx.Topology = o.topology
	if o.observer != nil {
		pctx.Observer = o.observer
	}
	if o.timeouts != nil {
		pctx.Timeouts = o.timeouts
	}
	return pctx
}

// stagedPhase tags errors from a phase that does not classify them itself.
type stagedPhase struct {
	provisioning.Phase
	stage Stage
}

func staged(stage Stage, p provisioning.Phase) provisioning.Phase {
	return &stagedPhase{Phase: p, stage: stage}
}

func (s *stagedPhase) Provision(ctx *provisioning.Context) error {
	return stageError(s.stage, s.Phase.Provision(ctx))
}
