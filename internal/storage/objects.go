package storage

import (
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
	"github.com/nicodoggie/devctl-plugin-kind/internal/util/labels"
)

// Volume builds the PersistentVolume exposing the repository.
func Volume(cluster string, cfg config.StorageConfig) (*corev1.PersistentVolume, error) {
	capacity, err := resource.ParseQuantity(cfg.Capacity)
	if err != nil {
		return nil, fmt.Errorf("invalid capacity %q: %w", cfg.Capacity, err)
	}

	pv := &corev1.PersistentVolume{
		ObjectMeta: metav1.ObjectMeta{
			Name:   cfg.VolumeName,
			Labels: labels.NewLabelBuilder(cluster).Build(),
		},
		Spec: corev1.PersistentVolumeSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{corev1.PersistentVolumeAccessMode(cfg.AccessMode)},
			Capacity:    corev1.ResourceList{corev1.ResourceStorage: capacity},
			PersistentVolumeSource: corev1.PersistentVolumeSource{
				Local: &corev1.LocalVolumeSource{Path: cfg.HostPath},
			},
			StorageClassName: cfg.StorageClass,
		},
	}

	if len(cfg.NodeSelector) > 0 {
		pv.Spec.NodeAffinity = &corev1.VolumeNodeAffinity{
			Required: &corev1.NodeSelector{
				NodeSelectorTerms: []corev1.NodeSelectorTerm{{MatchExpressions: matchExpressions(cfg.NodeSelector)}},
			},
		}
	}
	return pv, nil
}

// Claim builds the PersistentVolumeClaim bound to the repository volume.
func Claim(cluster string, cfg config.StorageConfig) (*corev1.PersistentVolumeClaim, error) {
	capacity, err := resource.ParseQuantity(cfg.Capacity)
	if err != nil {
		return nil, fmt.Errorf("invalid capacity %q: %w", cfg.Capacity, err)
	}

	storageClass := cfg.StorageClass
	return &corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cfg.ClaimName,
			Namespace: cfg.Namespace,
			Labels:    labels.NewLabelBuilder(cluster).Build(),
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{corev1.PersistentVolumeAccessMode(cfg.AccessMode)},
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{corev1.ResourceStorage: capacity},
			},
			StorageClassName: &storageClass,
			VolumeName:       cfg.VolumeName,
		},
	}, nil
}

func matchExpressions(selector map[string]string) []corev1.NodeSelectorRequirement {
	keys := make([]string, 0, len(selector))
	for k := range selector {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	reqs := make([]corev1.NodeSelectorRequirement, 0, len(keys))
	for _, k := range keys {
		reqs = append(reqs, corev1.NodeSelectorRequirement{
			Key:      k,
			Operator: corev1.NodeSelectorOpIn,
			Values:   []string{selector[k]},
		})
	}
	return reqs
}
