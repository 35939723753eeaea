package bootstrap

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStepUnmarshalYAML(t *testing.T) {
	t.Parallel()
	doc := `
- type: pre
  scripts:
    - kubectl create namespace web
    - run: ./seed.sh
      cwd: tools
- type: post
  scripts:
    - default: echo other
      ` + runtime.GOOS + `: echo native
`
	var plan Plan
	require.NoError(t, yaml.Unmarshal([]byte(doc), &plan))

	assert.Equal(t, Plan{
		{Type: "pre", Steps: []Step{{Run: "kubectl create namespace web"}, {Run: "./seed.sh", Dir: "tools"}}},
		{Type: "post", Steps: []Step{{Run: "echo native"}}},
	}, plan)
	assert.Equal(t, 3, plan.StepCount())
}

func TestStepUnmarshalYAML_RejectsSequence(t *testing.T) {
	t.Parallel()
	var s Step
	err := yaml.Unmarshal([]byte("[a, b]"), &s)
	assert.ErrorContains(t, err, "step must be a string or a mapping")
}

func TestStepDocumentResolve(t *testing.T) {
	t.Parallel()
	d := stepDocument{Run: "make", Darwin: "gmake", Default: "true"}

	assert.Equal(t, "gmake", d.resolve("darwin"))
	assert.Equal(t, "make", d.resolve("linux"))
	assert.Equal(t, "true", stepDocument{Default: "true"}.resolve("windows"))
}

func TestStepMarshalYAML(t *testing.T) {
	t.Parallel()
	out, err := yaml.Marshal([]Step{{Run: "make"}, {Run: "./seed.sh", Dir: "tools"}})
	require.NoError(t, err)
	assert.Equal(t, "- make\n- run: ./seed.sh\n  cwd: tools\n", string(out))
}
