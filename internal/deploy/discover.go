package deploy

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFilename marks a deployable service directory.
const ManifestFilename = "deploy.yaml"

// skipDirs are never searched for services.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// Chart is the chart section of a deploy.yaml.
type Chart struct {
	// Path is the chart directory relative to the deploy.yaml. Defaults to
	// the deploy.yaml directory itself.
	Path string `yaml:"path,omitempty"`
	// Release names the rendered release. Defaults to the directory name.
	Release string `yaml:"release,omitempty"`
	// Hide excludes the service from deploy.
	Hide   bool           `yaml:"hide,omitempty"`
	Values map[string]any `yaml:"values,omitempty"`
	// ValuesFiles are resolved against the project root and applied in
	// order before Values.
	ValuesFiles []string `yaml:"valuesFiles,omitempty"`
}

// Service is a deployable directory.
type Service struct {
	Name  string
	Dir   string
	Chart Chart
}

// ChartDir returns the absolute chart directory.
func (s Service) ChartDir() string {
	if s.Chart.Path == "" {
		return s.Dir
	}
	return filepath.Join(s.Dir, s.Chart.Path)
}

type manifest struct {
	Chart *Chart `yaml:"chart"`
}

// Discover returns every visible service below root in lexical order.
func Discover(root string) ([]Service, error) {
	var services []Service

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != ManifestFilename {
			return nil
		}

		svc, ok, err := readService(path)
		if err != nil {
			return err
		}
		if ok {
			services = append(services, svc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover services under %s: %w", root, err)
	}
	return services, nil
}

func readService(path string) (Service, bool, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is inside the project
	if err != nil {
		return Service{}, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Service{}, false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if m.Chart == nil || m.Chart.Hide {
		return Service{}, false, nil
	}

	dir := filepath.Dir(path)
	name := m.Chart.Release
	if name == "" {
		name = filepath.Base(dir)
	}
	return Service{Name: name, Dir: dir, Chart: *m.Chart}, true, nil
}
