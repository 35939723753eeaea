package shell

import (
	"context"
	"strings"
	"sync"
)

// FakeExecutor is an Executor for tests. Every call is recorded; behaviour
// is delegated to RunFunc and StreamFunc, and a nil func succeeds with no
// output.
type FakeExecutor struct {
	RunFunc    func(ctx context.Context, cmd Command) (*Result, error)
	StreamFunc func(ctx context.Context, cmd Command, onLine func(Line)) error

	mu    sync.Mutex
	calls []Command
}

// Run implements Executor.
func (f *FakeExecutor) Run(ctx context.Context, cmd Command) (*Result, error) {
	f.record(cmd)
	if f.RunFunc != nil {
		return f.RunFunc(ctx, cmd)
	}
	return &Result{}, nil
}

// Stream implements Executor.
func (f *FakeExecutor) Stream(ctx context.Context, cmd Command, onLine func(Line)) error {
	f.record(cmd)
	if f.StreamFunc != nil {
		return f.StreamFunc(ctx, cmd, onLine)
	}
	return nil
}

func (f *FakeExecutor) record(cmd Command) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
}

// Calls returns a copy of the recorded commands.
func (f *FakeExecutor) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command(nil), f.calls...)
}

// CommandLines returns the recorded commands rendered with Command.String.
func (f *FakeExecutor) CommandLines() []string {
	calls := f.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.String())
	}
	return out
}

// CountPrefix returns how many recorded commands start with prefix.
func (f *FakeExecutor) CountPrefix(prefix string) int {
	n := 0
	for _, line := range f.CommandLines() {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}
