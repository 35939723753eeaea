package orchestration

import (
	"errors"
	"fmt"

	"github.com/nicodoggie/devctl-plugin-kind/internal/reconcile"
)

// Stage classifies where a run failed.
type Stage string

const (
	StageConfig        Stage = "config"
	StageProbe         Stage = "probe"
	StageNetworkDelete Stage = "network-delete"
	StageNetworkCreate Stage = "network-create"
	StageClusterDelete Stage = "cluster-delete"
	StageClusterCreate Stage = "cluster-create"
	StageBootstrap     Stage = "bootstrap"
	StageStorage       Stage = "storage"
)

// exitCodes are negative so they never collide with generic CLI failures.
var exitCodes = map[Stage]int{
	StageNetworkDelete: -1,
	StageNetworkCreate: -2,
	StageClusterDelete: -3,
	StageClusterCreate: -4,
	StageBootstrap:     -5,
	StageStorage:       -6,
	StageProbe:         -7,
	StageConfig:        -8,
}

// Error is the top-level failure of a run.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for the stage.
func (e *Error) ExitCode() int {
	if code, ok := exitCodes[e.Stage]; ok {
		return code
	}
	return 1
}

// ExitCode maps any error to a process exit code: 0 for nil, the stage
// code for an *Error anywhere in the chain, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var oe *Error
	if errors.As(err, &oe) {
		return oe.ExitCode()
	}
	return 1
}

func stageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var oe *Error
	if errors.As(err, &oe) {
		return err
	}
	return &Error{Stage: stage, Err: err}
}

// networkStage classifies a network reconcile failure. Probe failures keep
// their own stage.
func networkStage(err error) Stage {
	var pe *reconcile.ProbeError
	if errors.As(err, &pe) {
		return StageProbe
	}
	var re *reconcile.ReconcileError
	if errors.As(err, &re) && re.Stage == reconcile.StageDelete {
		return StageNetworkDelete
	}
	return StageNetworkCreate
}
