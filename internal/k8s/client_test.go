package k8s

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/restmapper"
	k8stesting "k8s.io/client-go/testing"

	"github.com/nicodoggie/devctl-plugin-kind/internal/util/ptr"
)

func newTestClient(t *testing.T, objects ...runtime.Object) (Client, *fake.Clientset, *dynamicfake.FakeDynamicClient) {
	t.Helper()

	//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
	clientset := fake.NewSimpleClientset(objects...)
	scheme := runtime.NewScheme()
	_ = corev1.AddToScheme(scheme)
	_ = appsv1.AddToScheme(scheme)
	dynamicClient := dynamicfake.NewSimpleDynamicClient(scheme)

	return NewFromClients(clientset, dynamicClient, testMapper()), clientset, dynamicClient
}

// testMapper creates a REST mapper for the kinds devctl-kind applies.
func testMapper() meta.RESTMapper {
	resources := []*restmapper.APIGroupResources{
		{
			Group: metav1.APIGroup{
				Name:             "",
				Versions:         []metav1.GroupVersionForDiscovery{{GroupVersion: "v1", Version: "v1"}},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "v1", Version: "v1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {
					{Name: "configmaps", Namespaced: true, Kind: "ConfigMap"},
					{Name: "secrets", Namespaced: true, Kind: "Secret"},
					{Name: "services", Namespaced: true, Kind: "Service"},
					{Name: "namespaces", Namespaced: false, Kind: "Namespace"},
				},
			},
		},
		{
			Group: metav1.APIGroup{
				Name:             "apps",
				Versions:         []metav1.GroupVersionForDiscovery{{GroupVersion: "apps/v1", Version: "v1"}},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "apps/v1", Version: "v1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {{Name: "deployments", Namespaced: true, Kind: "Deployment"}},
			},
		},
	}
	return restmapper.NewDiscoveryRESTMapper(resources)
}

func TestPersistentVolumeLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, _, _ := newTestClient(t)

	_, found, err := c.GetPersistentVolume(ctx, "repo-pv")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = c.CreatePersistentVolume(ctx, &corev1.PersistentVolume{ObjectMeta: metav1.ObjectMeta{Name: "repo-pv"}})
	require.NoError(t, err)

	pv, found, err := c.GetPersistentVolume(ctx, "repo-pv")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "repo-pv", pv.Name)

	require.NoError(t, c.DeletePersistentVolume(ctx, "repo-pv"))
	require.NoError(t, c.DeletePersistentVolume(ctx, "repo-pv"), "deleting a missing volume is not an error")
}

func TestPersistentVolumeClaimLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, _, _ := newTestClient(t)

	_, found, err := c.GetPersistentVolumeClaim(ctx, "default", "repo-pvc")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = c.CreatePersistentVolumeClaim(ctx, &corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{Name: "repo-pvc", Namespace: "default"},
		Spec:       corev1.PersistentVolumeClaimSpec{VolumeName: "repo-pv"},
	})
	require.NoError(t, err)

	pvc, found, err := c.GetPersistentVolumeClaim(ctx, "default", "repo-pvc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "repo-pv", pvc.Spec.VolumeName)

	_, err = c.CreatePersistentVolumeClaim(ctx, pvc.DeepCopy())
	assert.Error(t, err, "creating twice fails")

	require.NoError(t, c.DeletePersistentVolumeClaim(ctx, "default", "repo-pvc"))
	require.NoError(t, c.DeletePersistentVolumeClaim(ctx, "default", "repo-pvc"))
}

func TestGetPersistentVolume_TransportError(t *testing.T) {
	t.Parallel()
	c, clientset, _ := newTestClient(t)
	clientset.PrependReactor("get", "persistentvolumes", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("connection refused")
	})

	_, found, err := c.GetPersistentVolume(context.Background(), "repo-pv")
	assert.False(t, found)
	assert.ErrorContains(t, err, "connection refused")
}

func TestDeleteWorkloads(t *testing.T) {
	t.Parallel()
	ns := "default"
	om := func(name string) metav1.ObjectMeta { return metav1.ObjectMeta{Name: name, Namespace: ns} }

	c, clientset, _ := newTestClient(t,
		&appsv1.Deployment{ObjectMeta: om("web")},
		&corev1.ConfigMap{ObjectMeta: om("web-config")},
		&corev1.ConfigMap{ObjectMeta: om("kube-root-ca.crt")},
		&corev1.Service{ObjectMeta: om("web")},
		&corev1.Service{ObjectMeta: om("kubernetes")},
		&networkingv1.Ingress{ObjectMeta: om("web")},
		&corev1.Secret{ObjectMeta: om("web-secret")},
		&corev1.Secret{ObjectMeta: metav1.ObjectMeta{Name: "other", Namespace: "kube-system"}},
	)

	require.NoError(t, c.DeleteWorkloads(context.Background(), ns))

	ctx := context.Background()
	deps, _ := clientset.AppsV1().Deployments(ns).List(ctx, metav1.ListOptions{})
	assert.Empty(t, deps.Items)
	cms, _ := clientset.CoreV1().ConfigMaps(ns).List(ctx, metav1.ListOptions{})
	require.Len(t, cms.Items, 1)
	assert.Equal(t, "kube-root-ca.crt", cms.Items[0].Name)
	svcs, _ := clientset.CoreV1().Services(ns).List(ctx, metav1.ListOptions{})
	require.Len(t, svcs.Items, 1)
	assert.Equal(t, "kubernetes", svcs.Items[0].Name)
	ings, _ := clientset.NetworkingV1().Ingresses(ns).List(ctx, metav1.ListOptions{})
	assert.Empty(t, ings.Items)
	secrets, _ := clientset.CoreV1().Secrets(ns).List(ctx, metav1.ListOptions{})
	assert.Empty(t, secrets.Items)

	_, err := clientset.CoreV1().Secrets("kube-system").Get(ctx, "other", metav1.GetOptions{})
	assert.NoError(t, err, "other namespaces are untouched")
}

func TestDeleteWorkloads_ReportsEveryFailure(t *testing.T) {
	t.Parallel()
	c, clientset, _ := newTestClient(t,
		&corev1.Secret{ObjectMeta: metav1.ObjectMeta{Name: "web-secret", Namespace: "default"}},
	)
	clientset.PrependReactor("list", "services", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("services unavailable")
	})
	clientset.PrependReactor("list", "ingresses", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("ingresses unavailable")
	})

	err := c.DeleteWorkloads(context.Background(), "default")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "services: failed to list: services unavailable")
	assert.Contains(t, err.Error(), "ingresses: failed to list: ingresses unavailable")

	_, err = clientset.CoreV1().Secrets("default").Get(context.Background(), "web-secret", metav1.GetOptions{})
	assert.Error(t, err, "secrets were still deleted")
}

func TestApplyManifests(t *testing.T) {
	t.Parallel()
	c, _, dynamicClient := newTestClient(t)

	var patched []string
	dynamicClient.PrependReactor("patch", "*", func(action k8stesting.Action) (bool, runtime.Object, error) {
		pa := action.(k8stesting.PatchAction)
		patched = append(patched, pa.GetResource().Resource+"/"+pa.GetNamespace()+"/"+pa.GetName())
		return true, &unstructured.Unstructured{}, nil
	})

	refs, err := c.ApplyManifests(context.Background(), []byte(`---
apiVersion: v1
kind: ConfigMap
metadata:
  name: web-config
data:
  a: b
---
---
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
  namespace: shop
`), "devctl-kind")

	require.NoError(t, err)
	assert.Equal(t, []ObjectRef{
		{Kind: "ConfigMap", Namespace: "default", Name: "web-config"},
		{Kind: "Deployment", Namespace: "shop", Name: "web"},
	}, refs)
	assert.Equal(t, []string{"configmaps/default/web-config", "deployments/shop/web"}, patched)
}

func TestApplyManifests_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		manifests string
		wantErr   string
	}{
		{name: "invalid yaml", manifests: `{invalid yaml: [`, wantErr: "failed to decode manifest"},
		{name: "missing kind", manifests: "apiVersion: v1\nmetadata:\n  name: x\n", wantErr: "Kind"},
		{name: "unknown kind", manifests: "apiVersion: example.com/v1\nkind: Widget\nmetadata:\n  name: x\n", wantErr: "failed to get REST mapping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _, _ := newTestClient(t)
			_, err := c.ApplyManifests(context.Background(), []byte(tt.manifests), "devctl-kind")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyManifests_Empty(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestClient(t)
	refs, err := c.ApplyManifests(context.Background(), []byte("---\n---\n"), "devctl-kind")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestWaitForDeployment(t *testing.T) {
	t.Parallel()
	ready := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "default", Generation: 2},
		Spec:       appsv1.DeploymentSpec{Replicas: ptr.To(int32(2))},
		Status:     appsv1.DeploymentStatus{ObservedGeneration: 2, UpdatedReplicas: 2, AvailableReplicas: 2},
	}
	c, _, _ := newTestClient(t, ready)

	require.NoError(t, c.WaitForDeployment(context.Background(), "default", "web", time.Second))
}

func TestWaitForDeployment_Timeout(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestClient(t)

	err := c.WaitForDeployment(context.Background(), "default", "missing", 10*time.Millisecond)
	assert.ErrorContains(t, err, "did not become ready")
}

func TestIsDeploymentReady(t *testing.T) {
	t.Parallel()
	d := &appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{Generation: 1}}
	assert.False(t, isDeploymentReady(d))

	d.Status = appsv1.DeploymentStatus{ObservedGeneration: 1, UpdatedReplicas: 1, AvailableReplicas: 1}
	assert.True(t, isDeploymentReady(d))

	d.Spec.Replicas = ptr.To(int32(3))
	assert.False(t, isDeploymentReady(d))
}

func TestNewForContext(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(`apiVersion: v1
kind: Config
clusters:
- name: kind-shop
  cluster:
    server: https://127.0.0.1:6443
contexts:
- name: kind-shop
  context:
    cluster: kind-shop
    user: kind-shop
users:
- name: kind-shop
  user:
    token: abc
current-context: other
`), 0o600))

	c, err := NewForContext(path, "kind-shop")
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = NewForContext(path, "kind-missing")
	assert.ErrorContains(t, err, "kind-missing")
}

func TestObjectRefString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Deployment default/web", ObjectRef{Kind: "Deployment", Namespace: "default", Name: "web"}.String())
	assert.Equal(t, "Namespace/shop", ObjectRef{Kind: "Namespace", Name: "shop"}.String())
}
