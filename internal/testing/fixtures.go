package testing

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/docker/docker/api/types/network"

	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/docker"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/shell"
)

// World is an in-memory host with kind clusters and docker networks. Its
// executor understands the kind commands the platform clients issue and
// runs "sh -c" steps; its docker API serves network calls. Both record into
// one call log, with API calls rendered like the equivalent docker CLI
// command ("docker network create kind-net-dev").
type World struct {
	mu       sync.Mutex
	clusters []string
	networks map[string]worldNetwork
	nextID   int
	failures map[string]error
	stepRuns map[string]int
	calls    []string

	exec *shell.FakeExecutor
}

type worldNetwork struct {
	ID     string
	Subnet string
	Labels map[string]string
}

// NewWorld creates an empty world.
func NewWorld() *World {
	w := &World{
		networks: make(map[string]worldNetwork),
		failures: make(map[string]error),
		stepRuns: make(map[string]int),
	}
	w.exec = &shell.FakeExecutor{RunFunc: w.run, StreamFunc: w.stream}
	return w
}

// Executor returns the executor backed by this world.
func (w *World) Executor() *shell.FakeExecutor {
	return w.exec
}

// AddCluster makes a cluster exist.
func (w *World) AddCluster(name string) *World {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clusters = append(w.clusters, name)
	return w
}

// AddNetwork makes a network exist.
func (w *World) AddNetwork(name, subnet string) *World {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.addNetwork(name, subnet, nil)
	return w
}

// FailOn makes every call whose log line starts with prefix fail with err.
// Use prefixes such as "kind delete", "docker network create" or a
// bootstrap step's command text.
func (w *World) FailOn(prefix string, err error) *World {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures[prefix] = err
	return w
}

// HasCluster reports whether the cluster exists.
func (w *World) HasCluster(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Contains(w.clusters, name)
}

// Network returns the ID of a network, or "" when absent.
func (w *World) Network(name string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.networks[name].ID
}

// Calls returns every recorded call in order.
func (w *World) Calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.calls)
}

// CountPrefix returns how many recorded calls start with prefix.
func (w *World) CountPrefix(prefix string) int {
	n := 0
	for _, line := range w.Calls() {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

// StepRuns returns how many times a bootstrap command was executed.
func (w *World) StepRuns(script string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stepRuns[script]
}

func (w *World) addNetwork(name, subnet string, labels map[string]string) string {
	w.nextID++
	id := fmt.Sprintf("net%04d", w.nextID)
	w.networks[name] = worldNetwork{ID: id, Subnet: subnet, Labels: labels}
	return id
}

// call records line in the call log and returns the failure configured for
// it, if any. The caller holds w.mu.
func (w *World) call(line string) error {
	w.calls = append(w.calls, line)
	for prefix, err := range w.failures {
		if strings.HasPrefix(line, prefix) {
			return &shell.ExitError{Command: line, ExitCode: 1, Stderr: err.Error(), Err: err}
		}
	}
	return nil
}

func (w *World) run(_ context.Context, cmd shell.Command) (*shell.Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if cmd.Name == "sh" && len(cmd.Args) == 2 {
		w.stepRuns[cmd.Args[1]]++
	}
	if err := w.call(cmd.String()); err != nil {
		return &shell.Result{ExitCode: 1, Stderr: err.Error()}, err
	}

	switch cmd.Name {
	case "kind":
		return w.runKind(cmd.Args)
	case "sh":
		return &shell.Result{Stdout: "ok\n"}, nil
	}
	return nil, fmt.Errorf("unexpected command %s", cmd)
}

func (w *World) runKind(args []string) (*shell.Result, error) {
	switch {
	case slices.Equal(args, []string{"get", "clusters"}):
		if len(w.clusters) == 0 {
			return &shell.Result{Stderr: "No kind clusters found.\n"}, nil
		}
		return &shell.Result{Stdout: strings.Join(w.clusters, "\n") + "\n"}, nil
	case len(args) == 4 && args[0] == "delete" && args[1] == "cluster":
		name := args[3]
		w.clusters = slices.DeleteFunc(w.clusters, func(c string) bool { return c == name })
		return &shell.Result{}, nil
	}
	return nil, fmt.Errorf("unexpected kind args %v", args)
}

// Docker returns a docker Engine API backed by this world.
func (w *World) Docker() docker.API {
	return worldDocker{w: w}
}

type worldDocker struct {
	w *World
}

func (d worldDocker) NetworkList(_ context.Context, options network.ListOptions) ([]network.Summary, error) {
	w := d.w
	w.mu.Lock()
	defer w.mu.Unlock()

	filter := ""
	if names := options.Filters.Get("name"); len(names) > 0 {
		filter = names[0]
	}
	if err := w.call("docker network ls " + filter); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(w.networks))
	for name := range w.networks {
		if strings.Contains(name, filter) {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	list := make([]network.Summary, 0, len(names))
	for _, name := range names {
		var s network.Summary
		s.ID = w.networks[name].ID
		s.Name = name
		list = append(list, s)
	}
	return list, nil
}

func (d worldDocker) NetworkInspect(_ context.Context, id string, _ network.InspectOptions) (network.Inspect, error) {
	w := d.w
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.call("docker network inspect " + id); err != nil {
		return network.Inspect{}, err
	}
	for name, n := range w.networks {
		if n.ID != id {
			continue
		}
		var in network.Inspect
		in.ID = n.ID
		in.Name = name
		in.Driver = docker.Driver
		in.IPAM = network.IPAM{Config: []network.IPAMConfig{{Subnet: n.Subnet}}}
		in.Labels = n.Labels
		return in, nil
	}
	return network.Inspect{}, fmt.Errorf("no such network %s", id)
}

func (d worldDocker) NetworkCreate(_ context.Context, name string, options network.CreateOptions) (network.CreateResponse, error) {
	w := d.w
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.call("docker network create " + name); err != nil {
		return network.CreateResponse{}, err
	}
	if _, ok := w.networks[name]; ok {
		return network.CreateResponse{}, fmt.Errorf("network with name %s already exists", name)
	}
	var subnet string
	if options.IPAM != nil && len(options.IPAM.Config) > 0 {
		subnet = options.IPAM.Config[0].Subnet
	}
	return network.CreateResponse{ID: w.addNetwork(name, subnet, options.Labels)}, nil
}

func (d worldDocker) NetworkRemove(_ context.Context, ref string) error {
	w := d.w
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.call("docker network rm " + ref); err != nil {
		return err
	}
	for name, n := range w.networks {
		if n.ID == ref || name == ref {
			delete(w.networks, name)
			return nil
		}
	}
	return fmt.Errorf("network %s not found", ref)
}

// stream handles kind create cluster, emitting a few lines of output.
func (w *World) stream(_ context.Context, cmd shell.Command, onLine func(shell.Line)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.call(cmd.String()); err != nil {
		onLine(shell.Line{Stream: shell.Stderr, Text: "ERROR: failed to create cluster"})
		return err
	}
	if cmd.Name != "kind" || len(cmd.Args) < 4 || cmd.Args[0] != "create" {
		return fmt.Errorf("unexpected streamed command %s", cmd)
	}

	name := cmd.Args[3]
	if slices.Contains(w.clusters, name) {
		return &shell.ExitError{Command: cmd.String(), ExitCode: 1, Stderr: "node(s) already exist for a cluster with the name " + name}
	}
	onLine(shell.Line{Stream: shell.Stderr, Text: fmt.Sprintf("Creating cluster %q ...", name)})
	onLine(shell.Line{Stream: shell.Stderr, Text: " ✓ Starting control-plane"})
	w.clusters = append(w.clusters, name)
	return nil
}
