package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// GetPersistentVolume implements Client.
func (c *client) GetPersistentVolume(ctx context.Context, name string) (*corev1.PersistentVolume, bool, error) {
	pv, err := c.clientset.CoreV1().PersistentVolumes().Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get persistent volume %s: %w", name, err)
	}
	return pv, true, nil
}

// CreatePersistentVolume implements Client.
func (c *client) CreatePersistentVolume(ctx context.Context, pv *corev1.PersistentVolume) (*corev1.PersistentVolume, error) {
	created, err := c.clientset.CoreV1().PersistentVolumes().Create(ctx, pv, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create persistent volume %s: %w", pv.Name, err)
	}
	return created, nil
}

// DeletePersistentVolume implements Client.
func (c *client) DeletePersistentVolume(ctx context.Context, name string) error {
	err := c.clientset.CoreV1().PersistentVolumes().Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete persistent volume %s: %w", name, err)
	}
	return nil
}

// GetPersistentVolumeClaim implements Client.
func (c *client) GetPersistentVolumeClaim(ctx context.Context, namespace, name string) (*corev1.PersistentVolumeClaim, bool, error) {
	pvc, err := c.clientset.CoreV1().PersistentVolumeClaims(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get persistent volume claim %s/%s: %w", namespace, name, err)
	}
	return pvc, true, nil
}

// CreatePersistentVolumeClaim implements Client.
func (c *client) CreatePersistentVolumeClaim(ctx context.Context, pvc *corev1.PersistentVolumeClaim) (*corev1.PersistentVolumeClaim, error) {
	created, err := c.clientset.CoreV1().PersistentVolumeClaims(pvc.Namespace).Create(ctx, pvc, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create persistent volume claim %s/%s: %w", pvc.Namespace, pvc.Name, err)
	}
	return created, nil
}

// DeletePersistentVolumeClaim implements Client.
func (c *client) DeletePersistentVolumeClaim(ctx context.Context, namespace, name string) error {
	err := c.clientset.CoreV1().PersistentVolumeClaims(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete persistent volume claim %s/%s: %w", namespace, name, err)
	}
	return nil
}
