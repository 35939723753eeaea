package k8s

import (
	"context"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// Client provides the control-plane operations used by devctl-kind.
type Client interface {
	// GetPersistentVolume returns the volume and true, or nil and false when
	// it does not exist.
	GetPersistentVolume(ctx context.Context, name string) (*corev1.PersistentVolume, bool, error)
	CreatePersistentVolume(ctx context.Context, pv *corev1.PersistentVolume) (*corev1.PersistentVolume, error)
	// DeletePersistentVolume returns nil if the volume does not exist.
	DeletePersistentVolume(ctx context.Context, name string) error

	// GetPersistentVolumeClaim returns the claim and true, or nil and false
	// when it does not exist.
	GetPersistentVolumeClaim(ctx context.Context, namespace, name string) (*corev1.PersistentVolumeClaim, bool, error)
	CreatePersistentVolumeClaim(ctx context.Context, pvc *corev1.PersistentVolumeClaim) (*corev1.PersistentVolumeClaim, error)
	// DeletePersistentVolumeClaim returns nil if the claim does not exist.
	DeletePersistentVolumeClaim(ctx context.Context, namespace, name string) error

	// ApplyManifests applies multi-document YAML using Server-Side Apply.
	// The fieldManager identifies the actor applying the configuration.
	ApplyManifests(ctx context.Context, manifests []byte, fieldManager string) ([]ObjectRef, error)

	// DeleteWorkloads deletes every deployment, config map, service, ingress
	// and secret in the namespace. All kinds are attempted even when one
	// fails, and every failure is reported.
	DeleteWorkloads(ctx context.Context, namespace string) error

	// WaitForDeployment blocks until the deployment has all replicas updated
	// and available, or the timeout elapses.
	WaitForDeployment(ctx context.Context, namespace, name string, timeout time.Duration) error

	// GetDeployment returns the deployment and true, or nil and false.
	GetDeployment(ctx context.Context, namespace, name string) (*appsv1.Deployment, bool, error)
}

// ObjectRef identifies an applied object.
type ObjectRef struct {
	Kind      string
	Namespace string
	Name      string
}

func (r ObjectRef) String() string {
	if r.Namespace == "" {
		return fmt.Sprintf("%s/%s", r.Kind, r.Name)
	}
	return fmt.Sprintf("%s %s/%s", r.Kind, r.Namespace, r.Name)
}

// client implements the Client interface using k8s.io/client-go.
type client struct {
	clientset     kubernetes.Interface
	dynamicClient dynamic.Interface
	mapper        meta.RESTMapper
}

// NewForContext creates a Client for a kubeconfig context. An empty
// kubeconfigPath uses the standard loading rules: $KUBECONFIG, then
// ~/.kube/config.
func NewForContext(kubeconfigPath, contextName string) (Client, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		rules.ExplicitPath = kubeconfigPath
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: contextName}

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig context %q: %w", contextName, err)
	}
	return NewFromRESTConfig(restConfig)
}

// NewFromRESTConfig creates a Client from a REST config.
func NewFromRESTConfig(restConfig *rest.Config) (Client, error) {
	// Create typed clientset for storage and workload objects
	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	// Create dynamic client for applying arbitrary manifests
	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	// Discovery happens on the first apply.
	mapper := restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(discoveryClient))

	return &client{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		mapper:        mapper,
	}, nil
}

// NewFromClients creates a Client from pre-configured clients.
// This is useful for testing with fake clients.
func NewFromClients(
	clientset kubernetes.Interface,
	dynamicClient dynamic.Interface,
	mapper meta.RESTMapper,
) Client {
	return &client{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		mapper:        mapper,
	}
}
