package bootstrap

import "fmt"

// StepExecutionError reports a step that still failed after its last
// attempt.
type StepExecutionError struct {
	Type     string
	Step     string
	Attempts int
	Err      error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("%s step %q failed after %d attempt(s): %v", e.Type, e.Step, e.Attempts, e.Err)
}

func (e *StepExecutionError) Unwrap() error {
	return e.Err
}
