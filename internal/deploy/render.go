package deploy

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/engine"
	"sigs.k8s.io/yaml"
)

// errNoChart reports a chart directory without Chart.yaml.
var errNoChart = errors.New("no Chart.yaml found")

// DefaultKubeVersion is reported to charts when the topology pins no node
// image.
const DefaultKubeVersion = "v1.31.0"

// Renderer renders local charts with Helm's template engine.
type Renderer struct {
	// Root resolves relative values files.
	Root      string
	Namespace string
	// KubeVersion is exposed as .Capabilities.KubeVersion. Empty means
	// DefaultKubeVersion.
	KubeVersion string
}

// Render loads the service's chart and returns its manifests as
// multi-document YAML.
func (r *Renderer) Render(svc Service) ([]byte, error) {
	dir := svc.ChartDir()
	if _, err := os.Stat(filepath.Join(dir, chartutil.ChartfileName)); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, errNoChart)
	}

	ch, err := loader.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}

	values, err := r.values(svc.Chart)
	if err != nil {
		return nil, err
	}

	manifests, err := r.renderChart(ch, svc.Name, values)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return manifests, nil
}

// values merges the values files in order, then the inline values. Chart
// defaults are coalesced underneath by the engine.
func (r *Renderer) values(c Chart) (map[string]any, error) {
	merged := map[string]any{}
	for _, f := range c.ValuesFiles {
		path := f
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.Root, path)
		}
		data, err := os.ReadFile(path) // #nosec G304 -- path is inside the project
		if err != nil {
			return nil, fmt.Errorf("failed to read values file: %w", err)
		}
		vals := map[string]any{}
		if err := yaml.Unmarshal(data, &vals); err != nil {
			return nil, fmt.Errorf("failed to parse values file %s: %w", f, err)
		}
		merged = chartutil.CoalesceTables(vals, merged)
	}
	if len(c.Values) > 0 {
		// CoalesceTables mutates its destination.
		inline, err := copyValues(c.Values)
		if err != nil {
			return nil, err
		}
		merged = chartutil.CoalesceTables(inline, merged)
	}
	return merged, nil
}

func (r *Renderer) renderChart(ch *chart.Chart, release string, values map[string]any) ([]byte, error) {
	releaseOptions := chartutil.ReleaseOptions{
		Name:      release,
		Namespace: r.Namespace,
		IsInstall: true,
	}

	version := r.KubeVersion
	if version == "" {
		version = DefaultKubeVersion
	}
	kubeVersion, err := chartutil.ParseKubeVersion(version)
	if err != nil {
		return nil, fmt.Errorf("invalid kubernetes version %q: %w", version, err)
	}
	capabilities := chartutil.DefaultCapabilities.Copy()
	capabilities.KubeVersion = *kubeVersion

	valuesToRender, err := chartutil.ToRenderValues(ch, values, releaseOptions, capabilities)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare values: %w", err)
	}

	rendered, err := engine.Render(ch, valuesToRender)
	if err != nil {
		return nil, fmt.Errorf("failed to render templates: %w", err)
	}

	names := make([]string, 0, len(rendered))
	for name := range rendered {
		names = append(names, name)
	}
	sort.Strings(names)

	var combined bytes.Buffer
	for _, name := range names {
		if filepath.Base(name) == "NOTES.txt" {
			continue
		}
		trimmed := strings.TrimSpace(rendered[name])
		if trimmed == "" {
			continue
		}
		if combined.Len() > 0 {
			combined.WriteString("\n---\n")
		}
		combined.WriteString(trimmed)
		combined.WriteString("\n")
	}
	return combined.Bytes(), nil
}

func copyValues(v map[string]any) (map[string]any, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode values: %w", err)
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode values: %w", err)
	}
	return out, nil
}
