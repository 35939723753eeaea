package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/nicodoggie/devctl-plugin-kind/internal/bootstrap"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/docker"
	"github.com/nicodoggie/devctl-plugin-kind/internal/provisioning"
	"github.com/nicodoggie/devctl-plugin-kind/internal/reconcile"
	"github.com/nicodoggie/devctl-plugin-kind/internal/storage"
	"github.com/nicodoggie/devctl-plugin-kind/internal/util/retry"
)

const (
	phaseCheckCluster   = "check-cluster"
	phaseCheckNetwork   = "check-network"
	phaseReplaceCluster = "replace-cluster"
	phaseNetwork        = "network"
	phaseCluster        = "cluster"
	phaseBootstrap      = "bootstrap"
	phaseStorage        = "storage"
)

// maxStepDelay caps the wait between bootstrap step attempts.
const maxStepDelay = 10 * time.Second

type clusterProbePhase struct{}

func (p *clusterProbePhase) Name() string { return phaseCheckCluster }

func (p *clusterProbePhase) Provision(ctx *provisioning.Context) error {
	obs, err := clusterOperation(ctx, phaseCluster).Observe(ctx)
	if err != nil {
		return &Error{Stage: StageProbe, Err: err}
	}
	ctx.State.ClusterExists = obs.Exists
	return nil
}

type networkProbePhase struct{}

func (p *networkProbePhase) Name() string { return phaseCheckNetwork }

// Provision records whether the network exists, then reports what was
// found. Nothing has been changed at this point.
func (p *networkProbePhase) Provision(ctx *provisioning.Context) error {
	obs, err := networkOperation(ctx).Observe(ctx)
	if err != nil {
		return &Error{Stage: StageProbe, Err: err}
	}
	ctx.State.NetworkExists = obs.Exists
	ctx.State.Network = obs.Handle

	for _, line := range Summarize(ctx).Lines() {
		ctx.Observer.Printf("%s", line)
	}
	return nil
}

type replaceClusterPhase struct{}

func (p *replaceClusterPhase) Name() string { return phaseReplaceCluster }

// Provision deletes an existing cluster when replacing. The network is not
// touched until the cluster is gone.
func (p *replaceClusterPhase) Provision(ctx *provisioning.Context) error {
	if !ctx.Replace || !ctx.State.ClusterExists {
		return nil
	}

	name := ctx.Config.ClusterName
	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), string(reconcile.KindCluster), name)
	op := clusterOperation(ctx, phaseCluster)
	if err := op.Delete(ctx, name); err != nil {
		err = &reconcile.ReconcileError{Kind: reconcile.KindCluster, Name: name, Stage: reconcile.StageDelete, Err: err}
		provisioning.LogResourceFailed(ctx.Observer, p.Name(), string(reconcile.KindCluster), name, err)
		return &Error{Stage: StageClusterDelete, Err: err}
	}
	ctx.State.ClusterDeleted = true
	provisioning.LogResourceDeleted(ctx.Observer, p.Name(), string(reconcile.KindCluster), name)
	return nil
}

type networkPhase struct{}

func (p *networkPhase) Name() string { return phaseNetwork }

func (p *networkPhase) Provision(ctx *provisioning.Context) error {
	op := networkOperation(ctx)
	obs := reconcile.Observation[*docker.Network]{Handle: ctx.State.Network, Exists: ctx.State.NetworkExists}

	decision := reconcile.Decide(obs.Exists, ctx.Replace)
	announce(ctx, p.Name(), reconcile.KindNetwork, op.Name, decision)

	out, err := op.Apply(ctx, obs, ctx.Replace)
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, p.Name(), string(reconcile.KindNetwork), op.Name, err)
		return &Error{Stage: networkStage(err), Err: err}
	}

	ctx.State.Network = out.Handle
	ctx.State.NetworkDecision = out.Decision
	settle(ctx, p.Name(), reconcile.KindNetwork, op.Name, out.Decision)
	return nil
}

type clusterPhase struct{}

func (p *clusterPhase) Name() string { return phaseCluster }

// Provision creates the cluster unless it exists and is reused. kind is
// run once; a failed create is not retried.
func (p *clusterPhase) Provision(ctx *provisioning.Context) error {
	op := clusterOperation(ctx, p.Name())
	exists := ctx.State.ClusterExists && !ctx.State.ClusterDeleted
	obs := reconcile.Observation[string]{Handle: op.Name, Exists: exists}

	decision := reconcile.Decide(exists, false)
	announce(ctx, p.Name(), reconcile.KindCluster, op.Name, decision)

	out, err := op.Apply(ctx, obs, false)
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, p.Name(), string(reconcile.KindCluster), op.Name, err)
		return &Error{Stage: StageClusterCreate, Err: err}
	}

	ctx.State.ClusterDecision = out.Decision
	if ctx.State.ClusterDeleted {
		ctx.State.ClusterDecision = reconcile.Recreate
	}
	settle(ctx, p.Name(), reconcile.KindCluster, op.Name, out.Decision)
	return nil
}

type bootstrapPhase struct{}

func (p *bootstrapPhase) Name() string { return phaseBootstrap }

// Provision runs the bootstrap plan and reports every step as it
// finishes. The first failed step ends the phase.
func (p *bootstrapPhase) Provision(ctx *provisioning.Context) error {
	plan := ctx.Config.Bootstrap
	if plan.StepCount() == 0 {
		ctx.Observer.Printf("No bootstrap actions configured")
		return nil
	}

	t := ctx.Timeouts
	seq := bootstrap.NewSequencer(ctx.Exec, ctx.Config.ProjectRoot,
		bootstrap.WithAttempts(t.StepAttempts),
		bootstrap.WithBackoff(t.StepDelay, max(t.StepDelay, maxStepDelay)),
		bootstrap.WithStepTimeout(t.Step),
		bootstrap.WithRetryHook(func(step bootstrap.Step, attempt int, err error) {
			provisioning.LogStepRetrying(ctx.Observer, p.Name(), step.Run, attempt, err)
		}),
	)

	var sections bootstrap.SectionTracker
	total := plan.StepCount()
	for outcome := range seq.Run(ctx, plan) {
		if sections.Enter(outcome.Type) {
			provisioning.LogSection(ctx.Observer, p.Name(), outcome.Type)
		}
		ctx.State.Steps = append(ctx.State.Steps, outcome)

		if !outcome.Succeeded {
			provisioning.LogStepFailed(ctx.Observer, p.Name(), outcome.Step.Run, outcome.Attempts, outcome.Err)
			return &Error{Stage: StageBootstrap, Err: outcome.Err}
		}
		provisioning.LogStepSucceeded(ctx.Observer, p.Name(), outcome.Step.Run, outcome.Attempts, outcome.Duration)
		ctx.Observer.Progress(p.Name(), len(ctx.State.Steps), total)
	}

	// The sequence also ends early on cancellation.
	if err := ctx.Err(); err != nil {
		return &Error{Stage: StageBootstrap, Err: err}
	}
	return nil
}

type storagePhase struct{}

func (p *storagePhase) Name() string { return phaseStorage }

func (p *storagePhase) Provision(ctx *provisioning.Context) error {
	cfg := ctx.Config
	if cfg.Storage.Disabled {
		ctx.Observer.Printf("Storage is disabled")
		return nil
	}

	client, err := ctx.KubeClient(cfg)
	if err != nil {
		return &Error{Stage: StageStorage, Err: fmt.Errorf("failed to connect to cluster %s: %w", cfg.ClusterName, err)}
	}

	t := ctx.Timeouts
	prov := storage.NewProvisioner(client, cfg.ClusterName, cfg.Storage,
		retry.WithMaxAttempts(t.StorageAttempts),
		retry.WithInitialDelay(t.StorageMinDelay),
		retry.WithMaxDelay(t.StorageMaxDelay),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			ctx.Observer.Printf("storage not ready (attempt %d): %v, retrying in %v", attempt, err, delay)
		}),
	)
	ctx.Observer.Printf("Ensuring %s", prov)

	err = prov.Ensure(ctx, func(r storage.Result) {
		ctx.State.Storage = append(ctx.State.Storage, r)
		settle(ctx, p.Name(), r.Kind, r.Name, r.Decision)
	})
	if err != nil {
		return &Error{Stage: StageStorage, Err: err}
	}
	return nil
}

type teardownClusterPhase struct{}

func (p *teardownClusterPhase) Name() string { return "delete-cluster" }

func (p *teardownClusterPhase) Provision(ctx *provisioning.Context) error {
	op := clusterOperation(ctx, p.Name())
	obs, err := op.Observe(ctx)
	if err != nil {
		return &Error{Stage: StageProbe, Err: err}
	}
	ctx.State.ClusterExists = obs.Exists
	if !obs.Exists {
		ctx.Observer.Printf("Cluster %s does not exist", op.Name)
		return nil
	}

	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), string(op.Kind), op.Name)
	if err := op.Delete(ctx, obs.Handle); err != nil {
		provisioning.LogResourceFailed(ctx.Observer, p.Name(), string(op.Kind), op.Name, err)
		return &Error{Stage: StageClusterDelete, Err: err}
	}
	ctx.State.ClusterDeleted = true
	provisioning.LogResourceDeleted(ctx.Observer, p.Name(), string(op.Kind), op.Name)
	return nil
}

type teardownNetworkPhase struct{}

func (p *teardownNetworkPhase) Name() string { return "delete-network" }

func (p *teardownNetworkPhase) Provision(ctx *provisioning.Context) error {
	op := networkOperation(ctx)
	obs, err := op.Observe(ctx)
	if err != nil {
		return &Error{Stage: StageProbe, Err: err}
	}
	ctx.State.NetworkExists = obs.Exists
	if !obs.Exists {
		ctx.Observer.Printf("Network %s does not exist", op.Name)
		return nil
	}

	c, cancel := context.WithTimeout(ctx, ctx.Timeouts.Delete)
	defer cancel()

	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), string(op.Kind), op.Name)
	if err := op.Delete(c, obs.Handle); err != nil {
		provisioning.LogResourceFailed(ctx.Observer, p.Name(), string(op.Kind), op.Name, err)
		return &Error{Stage: StageNetworkDelete, Err: err}
	}
	provisioning.LogResourceDeleted(ctx.Observer, p.Name(), string(op.Kind), op.Name)
	return nil
}

// announce reports what is about to happen to a resource.
func announce(ctx *provisioning.Context, phase string, kind reconcile.Kind, name string, d reconcile.Decision) {
	switch d {
	case reconcile.Create:
		provisioning.LogResourceCreating(ctx.Observer, phase, string(kind), name)
	case reconcile.Recreate:
		provisioning.LogResourceDeleting(ctx.Observer, phase, string(kind), name)
	}
}

// settle reports the result of a successful reconcile.
func settle(ctx *provisioning.Context, phase string, kind reconcile.Kind, name string, d reconcile.Decision) {
	if d == reconcile.Skip {
		provisioning.LogResourceExists(ctx.Observer, phase, string(kind), name)
		return
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, string(kind), name)
}
