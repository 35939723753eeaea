package prerequisites

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/shell"
)

func fakePath(found ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, f := range found {
			if f == name {
				return "/usr/local/bin/" + name, nil
			}
		}
		return "", errors.New("executable file not found in $PATH")
	}
}

func TestCheck_Found(t *testing.T) {
	t.Parallel()

	exec := &shell.FakeExecutor{
		RunFunc: func(_ context.Context, cmd shell.Command) (*shell.Result, error) {
			return &shell.Result{Stdout: cmd.Name + " v1.2.3\nextra line\n"}, nil
		},
	}
	c := &Checker{LookPath: fakePath("kind", "docker"), Exec: exec}

	results := c.CheckForUp(context.Background())

	require.Len(t, results.Results, 2)
	assert.Empty(t, results.Missing)
	assert.False(t, results.HasErrors())
	require.NoError(t, results.Error())

	kind := results.Results[0]
	assert.True(t, kind.Found)
	assert.Equal(t, "/usr/local/bin/kind", kind.Path)
	assert.Equal(t, "kind v1.2.3", kind.Version)
	assert.Equal(t, []string{"kind version", "docker version --format {{.Client.Version}}"}, exec.CommandLines())
}

func TestCheck_MissingRequired(t *testing.T) {
	t.Parallel()

	c := &Checker{LookPath: fakePath("kind")}
	results := c.CheckForUp(context.Background())

	require.Len(t, results.Missing, 1)
	assert.Equal(t, "docker", results.Missing[0].Name)
	assert.True(t, results.HasErrors())
	err := results.Error()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docker (https://docs.docker.com/get-docker/)")
}

func TestCheck_MissingOptionalIsNotAnError(t *testing.T) {
	t.Parallel()

	c := &Checker{LookPath: fakePath("kind", "docker")}
	results := c.CheckAll(context.Background())

	assert.Len(t, results.Results, 4)
	assert.Len(t, results.Missing, 2)
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
}

func TestCheck_VersionFailureLeavesVersionEmpty(t *testing.T) {
	t.Parallel()

	exec := &shell.FakeExecutor{
		RunFunc: func(context.Context, shell.Command) (*shell.Result, error) {
			return &shell.Result{ExitCode: 1}, &shell.ExitError{Command: "kind version", ExitCode: 1}
		},
	}
	c := &Checker{LookPath: fakePath("kind"), Exec: exec}

	results := c.Check(context.Background(), RequiredTools()[:1])

	require.Len(t, results.Results, 1)
	assert.True(t, results.Results[0].Found)
	assert.Empty(t, results.Results[0].Version)
}

func TestToolSets(t *testing.T) {
	t.Parallel()

	for _, tool := range RequiredTools() {
		assert.True(t, tool.Required, tool.Name)
		assert.NotEmpty(t, tool.InstallURL, tool.Name)
	}
	for _, tool := range OptionalTools() {
		assert.False(t, tool.Required, tool.Name)
	}

	var names []string
	for _, tool := range append(RequiredTools(), OptionalTools()...) {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"kind", "docker", "kubectl", "helm"}, names)
}
