package deploy

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"

	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
	"github.com/nicodoggie/devctl-plugin-kind/internal/k8s"
	"github.com/nicodoggie/devctl-plugin-kind/internal/provisioning"
	"github.com/nicodoggie/devctl-plugin-kind/internal/util/labels"
)

// FieldManager identifies devctl-kind as the server-side apply actor.
const FieldManager = "devctl-kind"

// Phase is the observer phase of deploy events.
const Phase = "deploy"

// DefaultWaitTimeout bounds waiting for one Deployment to become available.
const DefaultWaitTimeout = 5 * time.Minute

// Only these kinds are applied; anything else a chart renders is skipped.
var applyKinds = map[string]bool{
	"ConfigMap":  true,
	"Service":    true,
	"Secret":     true,
	"Ingress":    true,
	"Deployment": true,
}

// Client is the part of the control-plane client deploy needs.
type Client interface {
	ApplyManifests(ctx context.Context, manifests []byte, fieldManager string) ([]k8s.ObjectRef, error)
	DeleteWorkloads(ctx context.Context, namespace string) error
	WaitForDeployment(ctx context.Context, namespace, name string, timeout time.Duration) error
}

// Options controls a deploy run.
type Options struct {
	// Clean deletes every workload in the namespace first.
	Clean bool
	// Wait blocks until applied Deployments are available.
	Wait        bool
	WaitTimeout time.Duration
}

// Deployer applies the project's services to the cluster.
type Deployer struct {
	cfg      *config.Config
	client   Client
	observer provisioning.Observer
}

// NewDeployer creates a Deployer. A nil observer discards events.
func NewDeployer(cfg *config.Config, client Client, observer provisioning.Observer) *Deployer {
	if observer == nil {
		observer = provisioning.NewConsoleObserver(logr.Discard())
	}
	return &Deployer{cfg: cfg, client: client, observer: observer}
}

// Run deploys every discovered service. A failing service does not stop
// the others; all failures are returned together.
func (d *Deployer) Run(ctx context.Context, opts Options) ([]k8s.ObjectRef, error) {
	start := time.Now()
	provisioning.LogPhaseStart(d.observer, Phase)

	applied, err := d.run(ctx, opts)
	if err != nil {
		provisioning.LogPhaseFailed(d.observer, Phase, err)
		return applied, err
	}
	provisioning.LogPhaseComplete(d.observer, Phase, time.Since(start))
	return applied, nil
}

func (d *Deployer) run(ctx context.Context, opts Options) ([]k8s.ObjectRef, error) {
	ns := d.cfg.Storage.Namespace

	if opts.Clean {
		provisioning.LogResourceDeleting(d.observer, Phase, "namespace", ns)
		if err := d.client.DeleteWorkloads(ctx, ns); err != nil {
			return nil, fmt.Errorf("failed to clean namespace %s: %w", ns, err)
		}
		provisioning.LogResourceDeleted(d.observer, Phase, "namespace", ns)
	}

	services, err := Discover(d.cfg.ProjectRoot)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		d.observer.Printf("No deployable services found under %s", d.cfg.ProjectRoot)
		return nil, nil
	}

	renderer := &Renderer{Root: d.cfg.ProjectRoot, Namespace: ns}
	if topo, err := config.LoadTopology(d.cfg.ProjectRoot); err != nil {
		d.observer.Printf("Rendering for Kubernetes %s: %v", DefaultKubeVersion, err)
	} else {
		renderer.KubeVersion = topo.KubeVersion()
	}

	var applied []k8s.ObjectRef
	var errs []error
	for _, svc := range services {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		refs, err := d.deployService(ctx, renderer, svc)
		applied = append(applied, refs...)
		if err != nil {
			provisioning.LogResourceFailed(d.observer, Phase, "service", svc.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", svc.Name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return applied, err
	}

	if opts.Wait {
		if err := d.wait(ctx, applied, opts.WaitTimeout); err != nil {
			return applied, err
		}
	}
	return applied, nil
}

func (d *Deployer) deployService(ctx context.Context, r *Renderer, svc Service) ([]k8s.ObjectRef, error) {
	provisioning.LogResourceCreating(d.observer, Phase, "service", svc.Name)

	rendered, err := r.Render(svc)
	if err != nil {
		return nil, err
	}
	overrides, err := LoadOverrides(svc.Dir)
	if err != nil {
		return nil, err
	}

	manifests, warnings, err := Prepare(rendered, overrides, Target{
		Cluster:   d.cfg.ClusterName,
		Namespace: d.cfg.Storage.Namespace,
		Claim:     d.cfg.Storage.ClaimName,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		d.observer.Event(provisioning.Event{
			Type:     provisioning.EventValidationWarning,
			Phase:    Phase,
			Resource: svc.Name,
			Message:  w,
		})
	}
	if len(manifests) == 0 {
		d.observer.Printf("Service %s renders nothing to apply", svc.Name)
		return nil, nil
	}

	refs, err := d.client.ApplyManifests(ctx, manifests, FieldManager)
	for _, ref := range refs {
		provisioning.LogResourceCreated(d.observer, Phase, ref.Kind, ref.Namespace+"/"+ref.Name)
	}
	if err != nil {
		return refs, err
	}
	provisioning.LogResourceCreated(d.observer, Phase, "service", svc.Name)
	return refs, nil
}

func (d *Deployer) wait(ctx context.Context, refs []k8s.ObjectRef, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	for _, ref := range refs {
		if ref.Kind != "Deployment" {
			continue
		}
		d.observer.Printf("Waiting for deployment %s/%s", ref.Namespace, ref.Name)
		if err := d.client.WaitForDeployment(ctx, ref.Namespace, ref.Name, timeout); err != nil {
			return fmt.Errorf("deployment %s/%s: %w", ref.Namespace, ref.Name, err)
		}
	}
	return nil
}

// Target is where prepared manifests land.
type Target struct {
	Cluster   string
	Namespace string
	// Claim is the repository PersistentVolumeClaim mounted into Deployments.
	Claim string
}

// Prepare filters rendered manifests to the applied kinds, sets the
// namespace on objects that lack one, labels them for the cluster and
// applies overrides to Deployments. It returns the documents to apply and
// any override warnings.
func Prepare(rendered []byte, overrides map[string]ContainerOverride, target Target) ([]byte, []string, error) {
	reader := utilyaml.NewYAMLReader(bufio.NewReader(bytes.NewReader(rendered)))

	var out bytes.Buffer
	var warnings []string
	for {
		doc, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, warnings, fmt.Errorf("failed to split manifests: %w", err)
		}

		// Integral numbers decode as int64, which the typed converter needs.
		obj := map[string]any{}
		if err := utilyaml.Unmarshal(doc, &obj); err != nil {
			return nil, warnings, fmt.Errorf("failed to parse manifest: %w", err)
		}
		if len(obj) == 0 {
			continue
		}

		u := &unstructured.Unstructured{Object: obj}
		if !applyKinds[u.GetKind()] {
			continue
		}
		if u.GetNamespace() == "" {
			u.SetNamespace(target.Namespace)
		}
		u.SetLabels(labels.NewLabelBuilder(target.Cluster).
			Merge(u.GetLabels()).
			WithManagedBy(labels.ManagedByDevctlKind).
			Build())

		if u.GetKind() == "Deployment" {
			w, err := overrideDeployment(u, overrides, target.Claim)
			warnings = append(warnings, w...)
			if err != nil {
				return nil, warnings, fmt.Errorf("deployment %s: %w", u.GetName(), err)
			}
		}

		data, err := yaml.Marshal(u.Object)
		if err != nil {
			return nil, warnings, fmt.Errorf("failed to encode %s %s: %w", u.GetKind(), u.GetName(), err)
		}
		if out.Len() > 0 {
			out.WriteString("---\n")
		}
		out.Write(data)
	}
	return out.Bytes(), warnings, nil
}

func overrideDeployment(u *unstructured.Unstructured, overrides map[string]ContainerOverride, claim string) ([]string, error) {
	var d appsv1.Deployment
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(u.Object, &d); err != nil {
		return nil, err
	}

	warnings, err := ApplyOverrides(&d, overrides, claim)
	if err != nil {
		return warnings, err
	}

	obj, err := runtime.DefaultUnstructuredConverter.ToUnstructured(&d)
	if err != nil {
		return warnings, err
	}
	// Typed round trips add empty status and timestamps the server owns.
	delete(obj, "status")
	unstructured.RemoveNestedField(obj, "metadata", "creationTimestamp")
	unstructured.RemoveNestedField(obj, "spec", "template", "metadata", "creationTimestamp")
	u.Object = obj
	return warnings, nil
}
