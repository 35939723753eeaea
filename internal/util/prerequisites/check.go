// Package prerequisites checks that the external tools devctl-kind drives
// are installed.
package prerequisites

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/shell"
)

// versionTimeout bounds each version check.
const versionTimeout = 5 * time.Second

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string

	// VersionArgs are passed to the binary to print its version.
	VersionArgs []string
}

// RequiredTools returns the tools up and down cannot run without.
func RequiredTools() []Tool {
	return []Tool{
		{
			Name:        "kind",
			Required:    true,
			Description: "Creates and deletes the local cluster",
			InstallURL:  "https://kind.sigs.k8s.io/docs/user/quick-start/#installation",
			VersionArgs: []string{"version"},
		},
		{
			Name:        "docker",
			Required:    true,
			Description: "Hosts the cluster nodes and the cluster network",
			InstallURL:  "https://docs.docker.com/get-docker/",
			VersionArgs: []string{"version", "--format", "{{.Client.Version}}"},
		},
	}
}

// OptionalTools returns tools that are useful but not required.
func OptionalTools() []Tool {
	return []Tool{
		{
			Name:        "kubectl",
			Required:    false,
			Description: "Useful for inspecting the cluster and bootstrap steps",
			InstallURL:  "https://kubernetes.io/docs/tasks/tools/",
			VersionArgs: []string{"version", "--client"},
		},
		{
			Name:        "helm",
			Required:    false,
			Description: "Useful for managing charts outside of deploy",
			InstallURL:  "https://helm.sh/docs/intro/install/",
			VersionArgs: []string{"version", "--short"},
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Checker looks tools up in PATH and asks them for their version.
type Checker struct {
	// LookPath resolves a binary name. Defaults to exec.LookPath.
	LookPath func(name string) (string, error)
	// Exec runs version checks. A nil Exec skips them.
	Exec shell.Executor
}

// NewChecker returns a Checker using PATH and real processes.
func NewChecker() *Checker {
	return &Checker{LookPath: exec.LookPath, Exec: shell.NewExecutor()}
}

// Check verifies that the specified tools are available.
func (c *Checker) Check(ctx context.Context, tools []Tool) *CheckResults {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	results := &CheckResults{}
	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := lookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
			result.Version = c.version(ctx, tool)
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}
	return results
}

// CheckForUp checks the tools up and down need.
func (c *Checker) CheckForUp(ctx context.Context) *CheckResults {
	return c.Check(ctx, RequiredTools())
}

// CheckAll checks required and optional tools.
func (c *Checker) CheckAll(ctx context.Context) *CheckResults {
	return c.Check(ctx, append(RequiredTools(), OptionalTools()...))
}

// version returns the first line the tool prints for its version
// arguments, or an empty string.
func (c *Checker) version(ctx context.Context, tool Tool) string {
	if c.Exec == nil || len(tool.VersionArgs) == 0 {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	res, err := c.Exec.Run(ctx, shell.Command{Name: tool.Name, Args: tool.VersionArgs})
	if err != nil || res == nil {
		return ""
	}
	first, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\n")
	return strings.TrimSpace(first)
}
