package k8s

import (
	"context"
	"errors"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/nicodoggie/devctl-plugin-kind/internal/util/async"
	"github.com/nicodoggie/devctl-plugin-kind/internal/util/ptr"
)

// Objects the control plane maintains itself in every namespace.
var protected = map[string]map[string]bool{
	"configmaps": {"kube-root-ca.crt": true},
	"services":   {"kubernetes": true},
}

// namedDeleter lists object names of one kind and deletes them by name.
type namedDeleter struct {
	resource string
	list     func(ctx context.Context) ([]string, error)
	delete   func(ctx context.Context, name string) error
}

// DeleteWorkloads implements Client.
func (c *client) DeleteWorkloads(ctx context.Context, namespace string) error {
	deleters := c.workloadDeleters(namespace)

	tasks := make([]async.Task, 0, len(deleters))
	for _, d := range deleters {
		tasks = append(tasks, async.Task{
			Name: d.resource,
			Func: func(ctx context.Context) error { return deleteAll(ctx, d) },
		})
	}
	return async.RunParallel(ctx, tasks)
}

func deleteAll(ctx context.Context, d namedDeleter) error {
	names, err := d.list(ctx)
	if err != nil {
		return fmt.Errorf("failed to list: %w", err)
	}

	var errs []error
	for _, name := range names {
		if protected[d.resource][name] {
			continue
		}
		if err := d.delete(ctx, name); err != nil && !apierrors.IsNotFound(err) {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (c *client) workloadDeleters(ns string) []namedDeleter {
	opts := metav1.ListOptions{}
	del := metav1.DeleteOptions{}
	apps := c.clientset.AppsV1()
	core := c.clientset.CoreV1()
	networking := c.clientset.NetworkingV1()

	return []namedDeleter{
		{
			resource: "deployments",
			list: func(ctx context.Context) ([]string, error) {
				l, err := apps.Deployments(ns).List(ctx, opts)
				if err != nil {
					return nil, err
				}
				return names(l.Items, func(o appsv1.Deployment) string { return o.Name }), nil
			},
			delete: func(ctx context.Context, name string) error { return apps.Deployments(ns).Delete(ctx, name, del) },
		},
		{
			resource: "configmaps",
			list: func(ctx context.Context) ([]string, error) {
				l, err := core.ConfigMaps(ns).List(ctx, opts)
				if err != nil {
					return nil, err
				}
				return names(l.Items, func(o corev1.ConfigMap) string { return o.Name }), nil
			},
			delete: func(ctx context.Context, name string) error { return core.ConfigMaps(ns).Delete(ctx, name, del) },
		},
		{
			resource: "services",
			list: func(ctx context.Context) ([]string, error) {
				l, err := core.Services(ns).List(ctx, opts)
				if err != nil {
					return nil, err
				}
				return names(l.Items, func(o corev1.Service) string { return o.Name }), nil
			},
			delete: func(ctx context.Context, name string) error { return core.Services(ns).Delete(ctx, name, del) },
		},
		{
			resource: "ingresses",
			list: func(ctx context.Context) ([]string, error) {
				l, err := networking.Ingresses(ns).List(ctx, opts)
				if err != nil {
					return nil, err
				}
				return names(l.Items, func(o networkingv1.Ingress) string { return o.Name }), nil
			},
			delete: func(ctx context.Context, name string) error { return networking.Ingresses(ns).Delete(ctx, name, del) },
		},
		{
			resource: "secrets",
			list: func(ctx context.Context) ([]string, error) {
				l, err := core.Secrets(ns).List(ctx, opts)
				if err != nil {
					return nil, err
				}
				return names(l.Items, func(o corev1.Secret) string { return o.Name }), nil
			},
			delete: func(ctx context.Context, name string) error { return core.Secrets(ns).Delete(ctx, name, del) },
		},
	}
}

// GetDeployment implements Client.
func (c *client) GetDeployment(ctx context.Context, namespace, name string) (*appsv1.Deployment, bool, error) {
	d, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get deployment %s/%s: %w", namespace, name, err)
	}
	return d, true, nil
}

// WaitForDeployment implements Client.
func (c *client) WaitForDeployment(ctx context.Context, namespace, name string, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, 2*time.Second, timeout, true, func(ctx context.Context) (bool, error) {
		d, found, err := c.GetDeployment(ctx, namespace, name)
		if err != nil || !found {
			return false, nil
		}
		return isDeploymentReady(d), nil
	})
	if err != nil {
		return fmt.Errorf("deployment %s/%s did not become ready: %w", namespace, name, err)
	}
	return nil
}

func isDeploymentReady(d *appsv1.Deployment) bool {
	want := ptr.Deref(d.Spec.Replicas, 1)
	return d.Status.ObservedGeneration >= d.Generation &&
		d.Status.UpdatedReplicas == want &&
		d.Status.AvailableReplicas == want
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, name(it))
	}
	return out
}
