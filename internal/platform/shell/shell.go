package shell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Stream identifies which output stream a line came from.
type Stream string

const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// stderrTail bounds how many stderr lines a streaming failure keeps.
const stderrTail = 20

// WaitDelay bounds how long a cancelled process may keep its output pipes
// open before they are closed and Wait returns.
const WaitDelay = 2 * time.Second

// Command describes a process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds KEY=VALUE pairs added on top of the parent environment.
	Env []string
}

// Script returns a command running line through the POSIX shell.
func Script(line, dir string) Command {
	return Command{Name: "sh", Args: []string{"-c", line}, Dir: dir}
}

// String renders the command the way a user would type it.
func (c Command) String() string {
	if c.Name == "sh" && len(c.Args) == 2 && c.Args[0] == "-c" {
		return c.Args[1]
	}
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds the captured output of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Line is one line of live process output.
type Line struct {
	Stream Stream
	Text   string
}

// ExitError reports a process that could not start or exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%q exited with code %d", e.Command, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Executor runs external processes.
type Executor interface {
	// Run executes the command and captures its output. The returned result
	// is non-nil whenever the process started, even if it failed.
	Run(ctx context.Context, cmd Command) (*Result, error)

	// Stream executes the command and calls onLine for every output line as
	// soon as it is read. onLine is never called concurrently.
	Stream(ctx context.Context, cmd Command, onLine func(Line)) error
}

// ExecExecutor implements Executor with os/exec.
type ExecExecutor struct{}

// NewExecutor returns an Executor backed by os/exec.
func NewExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

func (e *ExecExecutor) command(ctx context.Context, c Command) *exec.Cmd {
	// #nosec G204 -- commands come from the project configuration the user controls
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.WaitDelay = WaitDelay
	killGroup(cmd)
	return cmd
}

// Run implements Executor.
func (e *ExecExecutor) Run(ctx context.Context, c Command) (*Result, error) {
	cmd := e.command(ctx, c)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return result, nil
	}

	result.ExitCode = exitCode(err)
	return result, &ExitError{
		Command:  c.String(),
		ExitCode: result.ExitCode,
		Stderr:   result.Stderr,
		Err:      err,
	}
}

// Stream implements Executor.
func (e *ExecExecutor) Stream(ctx context.Context, c Command, onLine func(Line)) error {
	cmd := e.command(ctx, c)

	// Pipes owned here rather than by exec, so WaitDelay applies to them and
	// the readers see EOF once Wait returns.
	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		return &ExitError{Command: c.String(), ExitCode: -1, Err: err}
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		_ = stdoutW.Close()
		_ = stderrW.Close()
		waitErr <- err
	}()

	lines := make(chan Line)
	var wg sync.WaitGroup
	wg.Add(2)
	go scanLines(stdoutR, Stdout, lines, &wg)
	go scanLines(stderrR, Stderr, lines, &wg)
	go func() {
		wg.Wait()
		close(lines)
	}()

	var tail []string
	for line := range lines {
		if line.Stream == Stderr {
			tail = append(tail, line.Text)
			if len(tail) > stderrTail {
				tail = tail[1:]
			}
		}
		if onLine != nil {
			onLine(line)
		}
	}

	if err := <-waitErr; err != nil {
		return &ExitError{
			Command:  c.String(),
			ExitCode: exitCode(err),
			Stderr:   strings.Join(tail, "\n"),
			Err:      err,
		}
	}
	return nil
}

func scanLines(r io.Reader, stream Stream, out chan<- Line, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		out <- Line{Stream: stream, Text: scanner.Text()}
	}
	// Drain whatever is left so the process never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
