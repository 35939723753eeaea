package storage

import (
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
	"github.com/nicodoggie/devctl-plugin-kind/internal/k8s"
	"github.com/nicodoggie/devctl-plugin-kind/internal/reconcile"
	"github.com/nicodoggie/devctl-plugin-kind/internal/util/retry"
)

// errNotVisible is returned while a created object cannot be read back yet.
var errNotVisible = errors.New("not visible yet")

// Result reports what happened to one storage object.
type Result struct {
	Kind     reconcile.Kind
	Name     string
	Decision reconcile.Decision
}

// Provisioner ensures the repository volume and claim exist.
type Provisioner struct {
	client  k8s.Client
	cluster string
	cfg     config.StorageConfig
	retry   []retry.Option
}

// NewProvisioner returns a Provisioner. retryOpts tune the existence checks.
func NewProvisioner(client k8s.Client, cluster string, cfg config.StorageConfig, retryOpts ...retry.Option) *Provisioner {
	return &Provisioner{client: client, cluster: cluster, cfg: cfg, retry: retryOpts}
}

// Ensure reconciles the volume, then the claim. Existing objects are
// reused as they are. onResult, if set, is called after each object.
func (p *Provisioner) Ensure(ctx context.Context, onResult func(Result)) error {
	pvOp, err := p.VolumeOperation()
	if err != nil {
		return err
	}
	pvOut, err := pvOp.Execute(ctx, false)
	if err != nil {
		return err
	}
	if onResult != nil {
		onResult(Result{Kind: reconcile.KindVolume, Name: pvOp.Name, Decision: pvOut.Decision})
	}

	pvcOp, err := p.ClaimOperation()
	if err != nil {
		return err
	}
	pvcOut, err := pvcOp.Execute(ctx, false)
	if err != nil {
		return err
	}
	if onResult != nil {
		onResult(Result{Kind: reconcile.KindVolumeClaim, Name: pvcOp.Name, Decision: pvcOut.Decision})
	}
	return nil
}

// VolumeOperation returns the reconcile operation for the volume.
func (p *Provisioner) VolumeOperation() (*reconcile.Operation[*corev1.PersistentVolume], error) {
	desired, err := Volume(p.cluster, p.cfg)
	if err != nil {
		return nil, err
	}
	name := desired.Name
	get := func(ctx context.Context) (*corev1.PersistentVolume, bool, error) {
		return p.client.GetPersistentVolume(ctx, name)
	}

	return &reconcile.Operation[*corev1.PersistentVolume]{
		Kind:  reconcile.KindVolume,
		Name:  name,
		Probe: probeWithRetry(p, get),
		Create: createVisible(p, get, func(ctx context.Context) (*corev1.PersistentVolume, error) {
			return p.client.CreatePersistentVolume(ctx, desired.DeepCopy())
		}),
		Delete: func(ctx context.Context, _ *corev1.PersistentVolume) error {
			return p.client.DeletePersistentVolume(ctx, name)
		},
	}, nil
}

// ClaimOperation returns the reconcile operation for the claim.
func (p *Provisioner) ClaimOperation() (*reconcile.Operation[*corev1.PersistentVolumeClaim], error) {
	desired, err := Claim(p.cluster, p.cfg)
	if err != nil {
		return nil, err
	}
	ns, name := desired.Namespace, desired.Name
	get := func(ctx context.Context) (*corev1.PersistentVolumeClaim, bool, error) {
		return p.client.GetPersistentVolumeClaim(ctx, ns, name)
	}

	return &reconcile.Operation[*corev1.PersistentVolumeClaim]{
		Kind:  reconcile.KindVolumeClaim,
		Name:  ns + "/" + name,
		Probe: probeWithRetry(p, get),
		Create: createVisible(p, get, func(ctx context.Context) (*corev1.PersistentVolumeClaim, error) {
			return p.client.CreatePersistentVolumeClaim(ctx, desired.DeepCopy())
		}),
		Delete: func(ctx context.Context, _ *corev1.PersistentVolumeClaim) error {
			return p.client.DeletePersistentVolumeClaim(ctx, ns, name)
		},
	}, nil
}

type found[T any] struct {
	obj    T
	exists bool
}

// probeWithRetry retries failed reads. A successful read reporting absence
// is final.
func probeWithRetry[T any](p *Provisioner, get func(context.Context) (T, bool, error)) func(context.Context) (T, bool, error) {
	return func(ctx context.Context) (T, bool, error) {
		res, err := retry.Do(ctx, func() (found[T], error) {
			obj, exists, err := get(ctx)
			return found[T]{obj: obj, exists: exists}, err
		}, p.retry...)
		return res.obj, res.exists, err
	}
}

// createVisible creates the object, then waits until it can be read back.
// An object that appeared since the probe counts as created.
func createVisible[T any](p *Provisioner, get func(context.Context) (T, bool, error), create func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		var zero T
		if _, err := create(ctx); err != nil && !apierrors.IsAlreadyExists(err) {
			return zero, err
		}

		return retry.Do(ctx, func() (T, error) {
			obj, exists, err := get(ctx)
			if err != nil {
				return zero, err
			}
			if !exists {
				return zero, errNotVisible
			}
			return obj, nil
		}, p.retry...)
	}
}

// String describes the storage objects for progress output.
func (p *Provisioner) String() string {
	return fmt.Sprintf("volume %s, claim %s/%s", p.cfg.VolumeName, p.cfg.Namespace, p.cfg.ClaimName)
}
