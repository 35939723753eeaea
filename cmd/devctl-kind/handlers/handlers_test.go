package handlers

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
	"github.com/nicodoggie/devctl-plugin-kind/internal/k8s"
	"github.com/nicodoggie/devctl-plugin-kind/internal/orchestration"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/docker"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/shell"
	"github.com/nicodoggie/devctl-plugin-kind/internal/provisioning"
	testutil "github.com/nicodoggie/devctl-plugin-kind/internal/testing"
	"github.com/nicodoggie/devctl-plugin-kind/internal/util/prerequisites"
)

const clusterConfig = `clusterName: dev
network:
  subnet: 10.100.0.0/16
bootstrap:
  - type: setup
    scripts:
      - echo hello
`

const topologyConfig = `kind: Cluster
apiVersion: kind.x-k8s.io/v1alpha4
nodes:
  - role: control-plane
  - role: worker
`

// saveAndRestoreFactories restores every factory variable after the test.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origGetwd := getwd
	origLoadConfig := loadConfig
	origLoadValidConfig := loadValidConfig
	origNewExecutor := newExecutor
	origNewNetworks := newNetworks
	origNewKubeClient := newKubeClient
	origCheckRequiredTools := checkRequiredTools
	origCheckAllTools := checkAllTools
	origIsInteractive := isInteractive
	origRunDashboard := runDashboard

	t.Cleanup(func() {
		getwd = origGetwd
		loadConfig = origLoadConfig
		loadValidConfig = origLoadValidConfig
		newExecutor = origNewExecutor
		newNetworks = origNewNetworks
		newKubeClient = origNewKubeClient
		checkRequiredTools = origCheckRequiredTools
		checkAllTools = origCheckAllTools
		isInteractive = origIsInteractive
		runDashboard = origRunDashboard
	})
}

// setupProject writes a project and points every factory at fakes.
func setupProject(t *testing.T, clusterYAML string) (string, *testutil.World) {
	t.Helper()
	saveAndRestoreFactories(t)

	root := t.TempDir()
	for name, content := range map[string]string{
		config.MarkerFilename:   "name: shop\n",
		config.ClusterFilename:  clusterYAML,
		config.TopologyFilename: topologyConfig,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o600))
	}

	world := testutil.NewWorld()
	clientset := fake.NewSimpleClientset() //nolint:staticcheck // NewClientset requires apply configurations

	getwd = func() (string, error) { return root, nil }
	newExecutor = func() shell.Executor { return world.Executor() }
	newNetworks = func() (*docker.Client, error) { return docker.NewClient(world.Docker()), nil }
	newKubeClient = func(*config.Config) (k8s.Client, error) {
		return k8s.NewFromClients(clientset, nil, nil), nil
	}
	checkRequiredTools = func(context.Context) *prerequisites.CheckResults {
		return &prerequisites.CheckResults{}
	}
	isInteractive = func() bool { return false }
	return root, world
}

func TestUp_FreshProject(t *testing.T) {
	root, world := setupProject(t, clusterConfig)
	metricsFile := filepath.Join(root, "metrics.prom")

	err := Up(testutil.TestContext(t), UpOptions{MetricsFile: metricsFile})

	require.NoError(t, err)
	assert.True(t, world.HasCluster("dev"))
	assert.NotEmpty(t, world.Network("kind-net-dev"))
	assert.Equal(t, 1, world.StepRuns("echo hello"))

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `devctl_kind_runs_total{cluster="dev",result="success"} 1`)
	assert.Contains(t, string(data), "devctl_kind_last_exit_code")
}

func TestUp_NoProject(t *testing.T) {
	_, world := setupProject(t, clusterConfig)
	getwd = func() (string, error) { return t.TempDir(), nil }

	err := Up(testutil.TestContext(t), UpOptions{})

	assert.Equal(t, -8, orchestration.ExitCode(err))
	assert.ErrorIs(t, err, config.ErrNoProject)
	assert.Empty(t, world.Calls())
}

func TestUp_MissingTools(t *testing.T) {
	_, world := setupProject(t, clusterConfig)
	checkRequiredTools = func(context.Context) *prerequisites.CheckResults {
		return &prerequisites.CheckResults{Missing: []prerequisites.Tool{{Name: "kind", Required: true}}}
	}

	err := Up(testutil.TestContext(t), UpOptions{})

	assert.Equal(t, -8, orchestration.ExitCode(err))
	assert.ErrorContains(t, err, "missing required tools: kind")
	assert.Empty(t, world.Calls())
}

func TestUp_InvalidSubnet(t *testing.T) {
	_, world := setupProject(t, "clusterName: dev\nnetwork:\n  subnet: not-a-cidr\n")

	err := Up(testutil.TestContext(t), UpOptions{})

	assert.Equal(t, -8, orchestration.ExitCode(err))
	assert.Empty(t, world.Calls())
}

func TestUp_DockerUnavailable(t *testing.T) {
	_, world := setupProject(t, clusterConfig)
	newNetworks = func() (*docker.Client, error) {
		return nil, errors.New("unable to parse docker host")
	}

	err := Up(testutil.TestContext(t), UpOptions{})

	assert.Equal(t, -8, orchestration.ExitCode(err))
	assert.ErrorContains(t, err, "docker host")
	assert.Empty(t, world.Calls())
}

func TestUp_StageFailureWritesMetrics(t *testing.T) {
	root, world := setupProject(t, clusterConfig)
	world.FailOn("kind create", errors.New("no space left on device"))
	metricsFile := filepath.Join(root, "metrics.prom")

	err := Up(testutil.TestContext(t), UpOptions{MetricsFile: metricsFile})

	assert.Equal(t, -4, orchestration.ExitCode(err))
	data, readErr := os.ReadFile(metricsFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), `devctl_kind_last_exit_code{cluster="dev"} -4`)
}

func TestUp_Dashboard(t *testing.T) {
	_, world := setupProject(t, clusterConfig)
	isInteractive = func() bool { return true }

	obs := testutil.NewRecordingObserver()
	var phases []string
	runDashboard = func(ctx context.Context, cluster string, names []string, fn func(context.Context, provisioning.Observer) error) error {
		assert.Equal(t, "dev", cluster)
		phases = names
		return fn(ctx, obs)
	}

	require.NoError(t, Up(testutil.TestContext(t), UpOptions{}))
	assert.Equal(t, "validation", phases[0])
	assert.Equal(t, "storage", phases[len(phases)-1])
	assert.NotEmpty(t, obs.Events(provisioning.EventPhaseCompleted))
	assert.True(t, world.HasCluster("dev"))
}

func TestDown(t *testing.T) {
	_, world := setupProject(t, clusterConfig)
	world.AddCluster("dev").AddNetwork("kind-net-dev", "10.100.0.0/16")

	require.NoError(t, Down(testutil.TestContext(t), false))
	assert.False(t, world.HasCluster("dev"))
	assert.NotEmpty(t, world.Network("kind-net-dev"))

	require.NoError(t, Down(testutil.TestContext(t), true))
	assert.Empty(t, world.Network("kind-net-dev"))
}

func TestDown_DeleteFailure(t *testing.T) {
	_, world := setupProject(t, clusterConfig)
	world.AddCluster("dev").FailOn("kind delete", errors.New("busy"))

	err := Down(testutil.TestContext(t), false)
	assert.Equal(t, -3, orchestration.ExitCode(err))
}

func TestDeploy_KubeClientFailure(t *testing.T) {
	setupProject(t, clusterConfig)
	newKubeClient = func(*config.Config) (k8s.Client, error) {
		return nil, errors.New("context kind-dev not found")
	}

	err := Deploy(testutil.TestContext(t), DeployOptions{})
	assert.ErrorContains(t, err, "failed to connect to cluster dev")
	assert.Equal(t, 1, orchestration.ExitCode(err))
}

func TestDeploy_InvalidConfig(t *testing.T) {
	setupProject(t, "clusterName: dev\nnetwork:\n  subnet: not-a-cidr\n")
	newKubeClient = func(*config.Config) (k8s.Client, error) {
		t.Fatal("kube client must not be created for an invalid config")
		return nil, nil
	}

	err := Deploy(testutil.TestContext(t), DeployOptions{})
	assert.ErrorContains(t, err, "configuration validation failed")
}

func TestDeploy_NoServices(t *testing.T) {
	setupProject(t, clusterConfig)
	require.NoError(t, Deploy(testutil.TestContext(t), DeployOptions{}))
}

func TestDoctor(t *testing.T) {
	root, _ := setupProject(t, clusterConfig)
	checkAllTools = func(context.Context) *prerequisites.CheckResults {
		return &prerequisites.CheckResults{
			Results: []prerequisites.CheckResult{
				{Tool: prerequisites.Tool{Name: "kind", Required: true}, Found: true, Version: "kind v0.27.0"},
				{Tool: prerequisites.Tool{Name: "helm", Description: "charts"}},
			},
			Missing: []prerequisites.Tool{{Name: "helm"}},
		}
	}

	var out bytes.Buffer
	require.NoError(t, Doctor(testutil.TestContext(t), &out))

	s := out.String()
	assert.Contains(t, s, "kind v0.27.0")
	assert.Contains(t, s, "not installed (optional: charts)")
	assert.Contains(t, s, root)
	assert.Contains(t, s, "1 control-plane, 1 worker")
}

func TestDoctor_MissingRequiredTool(t *testing.T) {
	setupProject(t, clusterConfig)
	checkAllTools = func(context.Context) *prerequisites.CheckResults {
		return &prerequisites.CheckResults{
			Results: []prerequisites.CheckResult{{Tool: prerequisites.Tool{Name: "docker", Required: true, InstallURL: "https://docs.docker.com"}}},
			Missing: []prerequisites.Tool{{Name: "docker", Required: true, InstallURL: "https://docs.docker.com"}},
		}
	}

	var out bytes.Buffer
	err := Doctor(testutil.TestContext(t), &out)
	assert.ErrorContains(t, err, "docker")
	assert.Contains(t, out.String(), "missing, install from https://docs.docker.com")
}
