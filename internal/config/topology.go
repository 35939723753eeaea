package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Topology summarises the kind cluster definition. The file itself is
// passed to kind as is.
type Topology struct {
	Path  string
	Nodes []TopologyNode `yaml:"nodes"`
}

// TopologyNode is one node entry of the kind cluster definition.
type TopologyNode struct {
	Role  string `yaml:"role"`
	Image string `yaml:"image,omitempty"`
}

// LoadTopology reads the kind cluster definition of the project at root.
func LoadTopology(root string) (*Topology, error) {
	path := filepath.Join(root, TopologyFilename)
	data, err := os.ReadFile(path) // #nosec G304 -- path is inside the discovered project
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("cluster topology %s is missing", path)
		}
		return nil, fmt.Errorf("failed to read topology: %w", err)
	}

	var t Topology
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	t.Path = path

	// kind creates a single control-plane node when none are listed.
	if len(t.Nodes) == 0 {
		t.Nodes = []TopologyNode{{Role: "control-plane"}}
	}
	for i := range t.Nodes {
		if t.Nodes[i].Role == "" {
			t.Nodes[i].Role = "control-plane"
		}
	}
	return &t, nil
}

// KubeVersion returns the Kubernetes version of the node image, taken from
// the tag of the first control-plane node that sets one, such as "v1.30.2"
// for "kindest/node:v1.30.2@sha256:...". It is empty when no node pins an
// image.
func (t *Topology) KubeVersion() string {
	for _, n := range t.Nodes {
		if n.Role != "control-plane" || n.Image == "" {
			continue
		}
		ref, _, _ := strings.Cut(n.Image, "@")
		i := strings.LastIndex(ref, ":")
		if i < 0 || strings.Contains(ref[i:], "/") {
			return ""
		}
		return ref[i+1:]
	}
	return ""
}

// Roles counts nodes per role.
func (t *Topology) Roles() map[string]int {
	roles := make(map[string]int)
	for _, n := range t.Nodes {
		roles[n.Role]++
	}
	return roles
}

// String renders the role counts, e.g. "1 control-plane, 2 worker".
func (t *Topology) String() string {
	roles := t.Roles()
	names := make([]string, 0, len(roles))
	for r := range roles {
		names = append(names, r)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, r := range names {
		parts = append(parts, fmt.Sprintf("%d %s", roles[r], r))
	}
	return strings.Join(parts, ", ")
}
