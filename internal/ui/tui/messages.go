// Package tui provides a Bubble Tea-based terminal UI for the up command.
package tui

import "time"

// PhaseMsg reports that a phase started, completed or failed.
type PhaseMsg struct {
	Phase    string
	Done     bool
	Err      error
	Duration time.Duration
}

// StepState is the display state of a bootstrap step.
type StepState int

const (
	StepRunning StepState = iota
	StepRetrying
	StepSucceeded
	StepFailed
)

// SectionMsg reports that a new bootstrap section began.
type SectionMsg struct {
	Label string
}

// StepMsg reports progress of one bootstrap step.
type StepMsg struct {
	Run      string
	State    StepState
	Attempts int
	Err      error
}

// ResourceMsg reports what happened to a resource.
type ResourceMsg struct {
	Kind   string
	Name   string
	Status string
}

// OutputMsg carries one line of external tool output.
type OutputMsg struct {
	Line string
}

// LogMsg carries an informational line.
type LogMsg struct {
	Text string
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the operation is complete.
type DoneMsg struct{}
