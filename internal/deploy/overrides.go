package deploy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	k8syaml "sigs.k8s.io/yaml"

	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
)

var volumePattern = regexp.MustCompile(`^[0-9a-z/._-]+:[0-9a-z/._-]+(:[0-9a-z/._-]+)?$`)

// ContainerOverride adjusts one container of a Deployment.
type ContainerOverride struct {
	// Volumes are "[name:]subPath:mountPath" mounts. The name defaults to the
	// repository claim.
	Volumes []string
	// RepoMountPath mounts the whole repository volume.
	RepoMountPath string
	HostAliases   []corev1.HostAlias
	// Fields replace container fields of the same name.
	Fields map[string]any
}

type devConfig struct {
	Kind struct {
		Deployment map[string]map[string]any `yaml:"deployment"`
	} `yaml:"kind"`
}

// LoadOverrides reads the kind.deployment section of dir's .devconfig.yaml,
// keyed by container name. A missing file has no overrides.
func LoadOverrides(dir string) (map[string]ContainerOverride, error) {
	path := filepath.Join(dir, config.DevconfigFilename)
	data, err := os.ReadFile(path) // #nosec G304 -- path is inside the project
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg devConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	overrides := make(map[string]ContainerOverride, len(cfg.Kind.Deployment))
	for container, raw := range cfg.Kind.Deployment {
		o, err := parseOverride(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: container %s: %w", path, container, err)
		}
		overrides[container] = o
	}
	return overrides, nil
}

func parseOverride(raw map[string]any) (ContainerOverride, error) {
	o := ContainerOverride{Fields: map[string]any{}}
	for key, value := range raw {
		switch key {
		case "volumes":
			items, ok := value.([]any)
			if !ok {
				return o, fmt.Errorf("volumes must be a list")
			}
			for _, item := range items {
				o.Volumes = append(o.Volumes, fmt.Sprint(item))
			}
		case "repoMountPath":
			o.RepoMountPath = fmt.Sprint(value)
		case "hostAliases":
			data, err := k8syaml.Marshal(value)
			if err != nil {
				return o, fmt.Errorf("invalid hostAliases: %w", err)
			}
			if err := k8syaml.Unmarshal(data, &o.HostAliases); err != nil {
				return o, fmt.Errorf("invalid hostAliases: %w", err)
			}
		default:
			o.Fields[key] = value
		}
	}
	return o, nil
}

// ParseVolume parses a "[name:]subPath:mountPath" entry.
func ParseVolume(spec, defaultName string) (corev1.VolumeMount, error) {
	if !volumePattern.MatchString(spec) {
		return corev1.VolumeMount{}, fmt.Errorf("invalid volume %q, expected [name:]subPath:mountPath", spec)
	}
	parts := strings.Split(spec, ":")
	name := defaultName
	if len(parts) == 3 {
		name, parts = parts[0], parts[1:]
	}
	return corev1.VolumeMount{Name: name, SubPath: parts[0], MountPath: parts[1]}, nil
}

// ApplyOverrides mounts the repository claim into d and applies the
// container overrides. Probes are removed from overridden containers.
// Invalid volume entries are skipped and returned as warnings.
func ApplyOverrides(d *appsv1.Deployment, overrides map[string]ContainerOverride, claim string) ([]string, error) {
	pod := &d.Spec.Template.Spec
	addRepoVolume(pod, claim)

	var warnings []string
	for i := range pod.Containers {
		c := &pod.Containers[i]
		o, ok := overrides[c.Name]
		if !ok {
			continue
		}

		c.ReadinessProbe = nil
		c.LivenessProbe = nil

		if len(o.Fields) > 0 {
			data, err := k8syaml.Marshal(o.Fields)
			if err != nil {
				return warnings, fmt.Errorf("container %s: %w", c.Name, err)
			}
			if err := k8syaml.Unmarshal(data, c); err != nil {
				return warnings, fmt.Errorf("container %s: %w", c.Name, err)
			}
		}

		if o.RepoMountPath != "" {
			c.VolumeMounts = append(c.VolumeMounts, corev1.VolumeMount{Name: claim, MountPath: o.RepoMountPath})
		}
		for _, v := range o.Volumes {
			mount, err := ParseVolume(v, claim)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("container %s: %v", c.Name, err))
				continue
			}
			c.VolumeMounts = append(c.VolumeMounts, mount)
		}

		pod.HostAliases = append(pod.HostAliases, o.HostAliases...)
	}
	return warnings, nil
}

func addRepoVolume(pod *corev1.PodSpec, claim string) {
	for _, v := range pod.Volumes {
		if v.Name == claim {
			return
		}
	}
	pod.Volumes = append(pod.Volumes, corev1.Volume{
		Name: claim,
		VolumeSource: corev1.VolumeSource{
			PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{ClaimName: claim},
		},
	})
}
