package reconcile

import "fmt"

// Stage names the mutating call that failed.
type Stage string

const (
	StageCreate            Stage = "create"
	StageDelete            Stage = "delete"
	StageCreateAfterDelete Stage = "create-after-delete"
)

// ProbeError reports a failure to talk to the system that owns a resource
// while checking whether it exists.
type ProbeError struct {
	Kind Kind
	Name string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("failed to check %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// ReconcileError reports a failed create or delete.
type ReconcileError struct {
	Kind  Kind
	Name  string
	Stage Stage
	Err   error
}

func (e *ReconcileError) Error() string {
	switch e.Stage {
	case StageDelete:
		return fmt.Sprintf("failed to delete %s %q: %v", e.Kind, e.Name, e.Err)
	case StageCreateAfterDelete:
		return fmt.Sprintf("%s %q was deleted but could not be recreated: %v", e.Kind, e.Name, e.Err)
	default:
		return fmt.Sprintf("failed to create %s %q: %v", e.Kind, e.Name, e.Err)
	}
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}
