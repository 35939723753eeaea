package reconcile

import (
	"context"
	"fmt"
)

// Kind identifies the class of resource being reconciled.
type Kind string

const (
	KindNetwork     Kind = "network"
	KindCluster     Kind = "cluster"
	KindVolume      Kind = "volume"
	KindVolumeClaim Kind = "volume-claim"
)

// Decision is what the reconciler does about a resource.
type Decision int

const (
	// Create means the resource is absent and will be created.
	Create Decision = iota
	// Skip means the resource exists and is reused without changes.
	Skip
	// Recreate means the resource exists and will be deleted then created.
	Recreate
)

func (d Decision) String() string {
	switch d {
	case Create:
		return "create"
	case Skip:
		return "skip"
	case Recreate:
		return "recreate"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Decide derives the decision from existence and the replace flag.
func Decide(exists, replace bool) Decision {
	switch {
	case !exists:
		return Create
	case replace:
		return Recreate
	default:
		return Skip
	}
}

// Observation is the result of probing a resource.
type Observation[H any] struct {
	Handle H
	Exists bool
}

// Outcome reports what a reconcile pass did.
type Outcome[H any] struct {
	Decision Decision
	// Handle is the resource after the pass: the reused one for Skip, the
	// new one for Create and Recreate.
	Handle H
}

// Operation reconciles one named resource. H is the handle type returned by
// the probe and by create, and passed to delete.
type Operation[H any] struct {
	Kind Kind
	Name string

	// Probe reports whether the resource exists. Absence is not an error.
	Probe func(ctx context.Context) (H, bool, error)
	// Create creates the resource from its desired specification.
	Create func(ctx context.Context) (H, error)
	// Delete removes an existing resource.
	Delete func(ctx context.Context, existing H) error
}

// Observe probes the resource without changing anything. Probe failures are
// returned as *ProbeError.
func (op *Operation[H]) Observe(ctx context.Context) (Observation[H], error) {
	handle, exists, err := op.Probe(ctx)
	if err != nil {
		return Observation[H]{}, &ProbeError{Kind: op.Kind, Name: op.Name, Err: err}
	}
	return Observation[H]{Handle: handle, Exists: exists}, nil
}

// Apply acts on a previous observation. It never probes again.
func (op *Operation[H]) Apply(ctx context.Context, obs Observation[H], replace bool) (Outcome[H], error) {
	decision := Decide(obs.Exists, replace)
	out := Outcome[H]{Decision: decision}

	switch decision {
	case Skip:
		out.Handle = obs.Handle
		return out, nil

	case Recreate:
		if err := op.Delete(ctx, obs.Handle); err != nil {
			return out, op.fail(StageDelete, err)
		}
		handle, err := op.Create(ctx)
		if err != nil {
			return out, op.fail(StageCreateAfterDelete, err)
		}
		out.Handle = handle
		return out, nil

	default:
		handle, err := op.Create(ctx)
		if err != nil {
			return out, op.fail(StageCreate, err)
		}
		out.Handle = handle
		return out, nil
	}
}

// Execute probes the resource and applies the resulting decision.
func (op *Operation[H]) Execute(ctx context.Context, replace bool) (Outcome[H], error) {
	obs, err := op.Observe(ctx)
	if err != nil {
		return Outcome[H]{}, err
	}
	return op.Apply(ctx, obs, replace)
}

func (op *Operation[H]) fail(stage Stage, err error) error {
	return &ReconcileError{Kind: op.Kind, Name: op.Name, Stage: stage, Err: err}
}
