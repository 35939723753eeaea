package storage

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
	"github.com/nicodoggie/devctl-plugin-kind/internal/k8s"
	"github.com/nicodoggie/devctl-plugin-kind/internal/reconcile"
	"github.com/nicodoggie/devctl-plugin-kind/internal/util/retry"
)

func storageConfig() config.StorageConfig {
	cfg := config.Config{ClusterName: "shop"}
	cfg.ApplyDefaults()
	return cfg.Storage
}

func fastRetry() []retry.Option {
	return []retry.Option{retry.WithMaxAttempts(5), retry.WithInitialDelay(time.Millisecond), retry.WithMaxDelay(time.Millisecond)}
}

func newProvisioner(t *testing.T, objects ...runtime.Object) (*Provisioner, *fake.Clientset) {
	t.Helper()
	//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
	clientset := fake.NewSimpleClientset(objects...)
	client := k8s.NewFromClients(clientset, dynamicfake.NewSimpleDynamicClient(runtime.NewScheme()), nil)
	return NewProvisioner(client, "shop", storageConfig(), fastRetry()...), clientset
}

func TestVolume(t *testing.T) {
	t.Parallel()
	pv, err := Volume("shop", storageConfig())
	require.NoError(t, err)

	assert.Equal(t, "repo-pv", pv.Name)
	assert.Equal(t, "shop", pv.Labels["devctl-kind.io/cluster"])
	assert.Equal(t, []corev1.PersistentVolumeAccessMode{corev1.ReadWriteMany}, pv.Spec.AccessModes)
	assert.True(t, resource.MustParse("10Gi").Equal(pv.Spec.Capacity[corev1.ResourceStorage]))
	assert.Equal(t, "/repo", pv.Spec.Local.Path)
	assert.Equal(t, "standard", pv.Spec.StorageClassName)
	assert.Equal(t, []corev1.NodeSelectorRequirement{
		{Key: "web", Operator: corev1.NodeSelectorOpIn, Values: []string{"1"}},
	}, pv.Spec.NodeAffinity.Required.NodeSelectorTerms[0].MatchExpressions)
}

func TestVolume_NoSelector(t *testing.T) {
	t.Parallel()
	cfg := storageConfig()
	cfg.NodeSelector = map[string]string{}

	pv, err := Volume("shop", cfg)
	require.NoError(t, err)
	assert.Nil(t, pv.Spec.NodeAffinity)
}

func TestClaim(t *testing.T) {
	t.Parallel()
	pvc, err := Claim("shop", storageConfig())
	require.NoError(t, err)

	assert.Equal(t, "repo-pvc", pvc.Name)
	assert.Equal(t, "default", pvc.Namespace)
	assert.Equal(t, "repo-pv", pvc.Spec.VolumeName)
	assert.Equal(t, "standard", *pvc.Spec.StorageClassName)
	assert.True(t, resource.MustParse("10Gi").Equal(pvc.Spec.Resources.Requests[corev1.ResourceStorage]))
}

func TestObjects_InvalidCapacity(t *testing.T) {
	t.Parallel()
	cfg := storageConfig()
	cfg.Capacity = "lots"

	_, err := Volume("shop", cfg)
	assert.Error(t, err)
	_, err = Claim("shop", cfg)
	assert.Error(t, err)
}

func TestEnsure_CreatesVolumeThenClaim(t *testing.T) {
	t.Parallel()
	p, clientset := newProvisioner(t)

	var results []Result
	require.NoError(t, p.Ensure(context.Background(), func(r Result) { results = append(results, r) }))

	assert.Equal(t, []Result{
		{Kind: reconcile.KindVolume, Name: "repo-pv", Decision: reconcile.Create},
		{Kind: reconcile.KindVolumeClaim, Name: "default/repo-pvc", Decision: reconcile.Create},
	}, results)

	var creates []string
	for _, a := range clientset.Actions() {
		if a.GetVerb() == "create" {
			creates = append(creates, a.GetResource().Resource)
		}
	}
	assert.Equal(t, []string{"persistentvolumes", "persistentvolumeclaims"}, creates)

	pvc, err := clientset.CoreV1().PersistentVolumeClaims("default").Get(context.Background(), "repo-pvc", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "repo-pv", pvc.Spec.VolumeName)
}

func TestEnsure_ReusesExistingObjects(t *testing.T) {
	t.Parallel()
	p, clientset := newProvisioner(t,
		&corev1.PersistentVolume{ObjectMeta: metav1.ObjectMeta{Name: "repo-pv"}},
		&corev1.PersistentVolumeClaim{ObjectMeta: metav1.ObjectMeta{Name: "repo-pvc", Namespace: "default"}},
	)

	var results []Result
	require.NoError(t, p.Ensure(context.Background(), func(r Result) { results = append(results, r) }))

	require.Len(t, results, 2)
	assert.Equal(t, reconcile.Skip, results[0].Decision)
	assert.Equal(t, reconcile.Skip, results[1].Decision)
	for _, a := range clientset.Actions() {
		assert.Equal(t, "get", a.GetVerb())
	}
}

func TestEnsure_RetriesTransientProbeFailures(t *testing.T) {
	t.Parallel()
	p, clientset := newProvisioner(t)
	var failures atomic.Int32
	clientset.PrependReactor("get", "persistentvolumes", func(k8stesting.Action) (bool, runtime.Object, error) {
		if failures.Add(1) <= 2 {
			return true, nil, errors.New("etcdserver: leader changed")
		}
		return false, nil, nil
	})

	require.NoError(t, p.Ensure(context.Background(), nil))
}

func TestEnsure_WaitsForCreatedObjectToBecomeVisible(t *testing.T) {
	t.Parallel()
	p, clientset := newProvisioner(t)
	var gets atomic.Int32
	clientset.PrependReactor("get", "persistentvolumeclaims", func(k8stesting.Action) (bool, runtime.Object, error) {
		// probe, then two reads that lag behind the create
		if gets.Add(1) <= 3 {
			return true, nil, apierrors.NewNotFound(schema.GroupResource{Resource: "persistentvolumeclaims"}, "repo-pvc")
		}
		return false, nil, nil
	})

	require.NoError(t, p.Ensure(context.Background(), nil))
	assert.Equal(t, int32(4), gets.Load())
}

func TestEnsure_CreateFailure(t *testing.T) {
	t.Parallel()
	p, clientset := newProvisioner(t)
	clientset.PrependReactor("create", "persistentvolumes", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("admission webhook denied")
	})

	err := p.Ensure(context.Background(), nil)

	var recErr *reconcile.ReconcileError
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, reconcile.KindVolume, recErr.Kind)
	assert.Equal(t, reconcile.StageCreate, recErr.Stage)

	for _, a := range clientset.Actions() {
		assert.NotEqual(t, "persistentvolumeclaims", a.GetResource().Resource, "claim is not attempted")
	}
}

func TestEnsure_ProbeKeepsFailing(t *testing.T) {
	t.Parallel()
	p, clientset := newProvisioner(t)
	clientset.PrependReactor("get", "persistentvolumes", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("connection refused")
	})

	err := p.Ensure(context.Background(), nil)

	var probeErr *reconcile.ProbeError
	require.True(t, errors.As(err, &probeErr))
	assert.Len(t, clientset.Actions(), 5)
}

func TestEnsure_AlreadyExistsRaceCountsAsCreated(t *testing.T) {
	t.Parallel()
	p, clientset := newProvisioner(t)
	clientset.PrependReactor("create", "persistentvolumes", func(action k8stesting.Action) (bool, runtime.Object, error) {
		obj := action.(k8stesting.CreateAction).GetObject()
		require.NoError(t, clientset.Tracker().Add(obj))
		return true, nil, apierrors.NewAlreadyExists(schema.GroupResource{Resource: "persistentvolumes"}, "repo-pv")
	})

	require.NoError(t, p.Ensure(context.Background(), nil))
}

func TestProvisionerString(t *testing.T) {
	t.Parallel()
	p, _ := newProvisioner(t)
	assert.Equal(t, "volume repo-pv, claim default/repo-pvc", p.String())
}
