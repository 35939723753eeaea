package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nicodoggie/devctl-plugin-kind/internal/provisioning"
)

// Sender delivers messages to a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Observer is a provisioning.Observer that drives the dashboard.
type Observer struct {
	sender Sender
}

// NewObserver creates an Observer sending to s.
func NewObserver(s Sender) *Observer {
	return &Observer{sender: s}
}

// Printf implements provisioning.Logger.
func (o *Observer) Printf(format string, v ...any) {
	o.sender.Send(LogMsg{Text: fmt.Sprintf(format, v...)})
}

// Progress implements provisioning.Observer. Phase rows already carry
// progress.
func (o *Observer) Progress(string, int, int) {}

// WithFields implements provisioning.Observer.
func (o *Observer) WithFields(map[string]string) provisioning.Observer {
	return o
}

// Event implements provisioning.Observer.
func (o *Observer) Event(e provisioning.Event) {
	if msg := toMsg(e); msg != nil {
		o.sender.Send(msg)
	}
}

func toMsg(e provisioning.Event) tea.Msg {
	switch e.Type {
	case provisioning.EventPhaseStarted:
		return PhaseMsg{Phase: e.Phase}
	case provisioning.EventPhaseCompleted:
		return PhaseMsg{Phase: e.Phase, Done: true, Duration: e.Duration}
	case provisioning.EventPhaseFailed:
		return PhaseMsg{Phase: e.Phase, Err: e.Err}

	case provisioning.EventSection:
		return SectionMsg{Label: e.Resource}
	case provisioning.EventStepSucceeded:
		return StepMsg{Run: e.Resource, State: StepSucceeded, Attempts: attempts(e)}
	case provisioning.EventStepFailed:
		return StepMsg{Run: e.Resource, State: StepFailed, Attempts: attempts(e), Err: e.Err}
	case provisioning.EventStepRetrying:
		return StepMsg{Run: e.Resource, State: StepRetrying, Attempts: attempts(e)}

	case provisioning.EventResourceCreating:
		return ResourceMsg{Kind: e.Fields["type"], Name: e.Resource, Status: "creating"}
	case provisioning.EventResourceCreated:
		return ResourceMsg{Kind: e.Fields["type"], Name: e.Resource, Status: "created"}
	case provisioning.EventResourceExists:
		return ResourceMsg{Kind: e.Fields["type"], Name: e.Resource, Status: "reused"}
	case provisioning.EventResourceDeleting:
		return ResourceMsg{Kind: e.Fields["type"], Name: e.Resource, Status: "deleting"}
	case provisioning.EventResourceDeleted:
		return ResourceMsg{Kind: e.Fields["type"], Name: e.Resource, Status: "deleted"}
	case provisioning.EventResourceFailed:
		return ResourceMsg{Kind: e.Fields["type"], Name: e.Resource, Status: "failed"}

	case provisioning.EventOutput:
		return OutputMsg{Line: e.Message}
	case provisioning.EventValidationWarning:
		return LogMsg{Text: fmt.Sprintf("warning: %s: %s", e.Resource, e.Message)}
	case provisioning.EventValidationError:
		return LogMsg{Text: fmt.Sprintf("error: %s: %s", e.Resource, e.Message)}
	}
	return nil
}

func attempts(e provisioning.Event) int {
	for _, key := range []string{"attempts", "attempt"} {
		if n, err := strconv.Atoi(e.Fields[key]); err == nil {
			return n
		}
	}
	return 0
}
