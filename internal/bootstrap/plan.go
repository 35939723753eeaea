package bootstrap

import (
	"fmt"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Plan is the ordered list of action groups run after the cluster is up.
type Plan []ActionGroup

// ActionGroup is a labelled, ordered list of shell steps.
type ActionGroup struct {
	Type  string `yaml:"type"`
	Steps []Step `yaml:"scripts"`
}

// Step is a single shell command line.
//
// In YAML a step is either a plain string or a mapping:
//
//	scripts:
//	  - kubectl apply -f manifests/
//	  - run: ./seed.sh
//	    cwd: tools
//	  - linux: xdg-open http://localhost
//	    darwin: open http://localhost
//
// The command is taken from the key for the current GOOS when set, then
// from run, then from default.
type Step struct {
	Run string `yaml:"run"`
	// Dir is relative to the project root. Empty means the root itself.
	Dir string `yaml:"cwd,omitempty"`
}

// stepDocument is the mapping form of a step.
type stepDocument struct {
	Run     string `yaml:"run,omitempty"`
	Cwd     string `yaml:"cwd,omitempty"`
	Linux   string `yaml:"linux,omitempty"`
	Darwin  string `yaml:"darwin,omitempty"`
	Windows string `yaml:"windows,omitempty"`
	Default string `yaml:"default,omitempty"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&s.Run)
	case yaml.MappingNode:
		var doc stepDocument
		if err := node.Decode(&doc); err != nil {
			return err
		}
		s.Run = doc.resolve(runtime.GOOS)
		s.Dir = doc.Cwd
		return nil
	default:
		return fmt.Errorf("line %d: step must be a string or a mapping", node.Line)
	}
}

// MarshalYAML writes the scalar form whenever no directory is set.
func (s Step) MarshalYAML() (any, error) {
	if s.Dir == "" {
		return s.Run, nil
	}
	return stepDocument{Run: s.Run, Cwd: s.Dir}, nil
}

func (d stepDocument) resolve(goos string) string {
	byOS := map[string]string{
		"linux":   d.Linux,
		"darwin":  d.Darwin,
		"windows": d.Windows,
	}
	if cmd := byOS[goos]; cmd != "" {
		return cmd
	}
	if d.Run != "" {
		return d.Run
	}
	return d.Default
}

// StepCount returns the total number of steps in the plan.
func (p Plan) StepCount() int {
	n := 0
	for _, g := range p {
		n += len(g.Steps)
	}
	return n
}
