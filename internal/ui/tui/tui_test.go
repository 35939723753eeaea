package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicodoggie/devctl-plugin-kind/internal/provisioning"
)

var testPhases = []string{"validation", "network", "cluster", "bootstrap"}

type fakeSender struct {
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestFormatDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m30s"},
		{3600 * time.Second, "1h0m"},
		{3661 * time.Second, "1h1m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d), "formatDuration(%v)", tt.d)
	}
}

func TestCalculateProgress(t *testing.T) {
	t.Parallel()

	m := NewUpModel("dev", testPhases)
	assert.Zero(t, calculateProgress(m))

	m.updatePhase(PhaseMsg{Phase: "cluster"})
	assert.InDelta(t, 0.5, calculateProgress(m), 0.001)

	m.Done = true
	assert.InDelta(t, 1.0, calculateProgress(m), 0.001)

	assert.Zero(t, calculateProgress(Model{}))
}

func TestUpdatePhase(t *testing.T) {
	t.Parallel()

	m := NewUpModel("dev", testPhases)
	m.updatePhase(PhaseMsg{Phase: "network"})

	assert.True(t, m.Phases[0].Done, "earlier phases are marked done")
	assert.True(t, m.Phases[1].Active)
	assert.False(t, m.Phases[2].Active)

	m.updatePhase(PhaseMsg{Phase: "network", Done: true, Duration: 2 * time.Second})
	assert.True(t, m.Phases[1].Done)
	assert.False(t, m.Phases[1].Active)
	assert.Equal(t, 2*time.Second, m.Phases[1].Duration)

	boom := errors.New("boom")
	m.updatePhase(PhaseMsg{Phase: "cluster", Err: boom})
	assert.ErrorIs(t, m.Phases[2].Err, boom)

	m.updatePhase(PhaseMsg{Phase: "unknown"})
	assert.Len(t, m.Phases, len(testPhases))
}

func TestUpdateStep(t *testing.T) {
	t.Parallel()

	m := NewUpModel("dev", testPhases)
	m, _ = apply(m, SectionMsg{Label: "Setup"})
	m, _ = apply(m, StepMsg{Run: "echo a", State: StepRetrying, Attempts: 1})
	m, _ = apply(m, StepMsg{Run: "echo a", State: StepSucceeded, Attempts: 2})
	m, _ = apply(m, StepMsg{Run: "echo a", State: StepSucceeded, Attempts: 1})

	require.Len(t, m.Steps, 2, "a finished step is not updated again")
	assert.Equal(t, StepRow{Section: "Setup", Run: "echo a", State: StepSucceeded, Attempts: 2}, m.Steps[0])
	assert.Equal(t, "Setup", m.Steps[1].Section)
}

func TestUpdateResource(t *testing.T) {
	t.Parallel()

	m := NewUpModel("dev", testPhases)
	m, _ = apply(m, ResourceMsg{Kind: "network", Name: "kind", Status: "creating"})
	m, _ = apply(m, ResourceMsg{Kind: "network", Name: "kind", Status: "created"})
	m, _ = apply(m, ResourceMsg{Kind: "cluster", Name: "dev", Status: "reused"})

	assert.Equal(t, []ResourceRow{
		{Kind: "network", Name: "kind", Status: "created"},
		{Kind: "cluster", Name: "dev", Status: "reused"},
	}, m.Resources)
}

func TestAppendTail(t *testing.T) {
	t.Parallel()

	var lines []string
	for _, l := range []string{"a", "b", "c", "d"} {
		lines = appendTail(lines, l, 3)
	}
	assert.Equal(t, []string{"b", "c", "d"}, lines)
}

func TestUpdate_TerminalMessagesQuit(t *testing.T) {
	t.Parallel()

	m := NewUpModel("dev", testPhases)
	done, cmd := apply(m, DoneMsg{})
	assert.True(t, done.Done)
	require.NotNil(t, cmd)

	failed, cmd := apply(m, ErrMsg{Err: errors.New("x")})
	assert.EqualError(t, failed.Err, "x")
	require.NotNil(t, cmd)
}

func TestObserver_Mapping(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	obs := NewObserver(sender)

	provisioning.LogPhaseStart(obs, "network")
	provisioning.LogResourceCreated(obs, "network", "network", "kind")
	provisioning.LogSection(obs, "bootstrap", "Setup")
	provisioning.LogStepRetrying(obs, "bootstrap", "echo a", 1, errors.New("x"))
	provisioning.LogStepSucceeded(obs, "bootstrap", "echo a", 2, time.Millisecond)
	provisioning.LogOutput(obs, "cluster", "stdout", "Creating cluster")
	obs.Printf("Storage is %s", "disabled")
	obs.Progress("network", 1, 2)

	assert.Equal(t, []tea.Msg{
		PhaseMsg{Phase: "network"},
		ResourceMsg{Kind: "network", Name: "kind", Status: "created"},
		SectionMsg{Label: "Setup"},
		StepMsg{Run: "echo a", State: StepRetrying, Attempts: 1},
		StepMsg{Run: "echo a", State: StepSucceeded, Attempts: 2},
		OutputMsg{Line: "Creating cluster"},
		LogMsg{Text: "Storage is disabled"},
	}, sender.msgs)
}

func TestView(t *testing.T) {
	t.Parallel()

	m := NewUpModel("dev", testPhases)
	m.updatePhase(PhaseMsg{Phase: "bootstrap"})
	m.Section = "Setup"
	m.updateStep(StepMsg{Run: "echo hello", State: StepSucceeded, Attempts: 1})
	m.updateResource(ResourceMsg{Kind: "cluster", Name: "dev", Status: "created"})

	out := m.View()
	for _, want := range []string{"devctl-kind: dev", "bootstrap", "echo hello", "Setup", "q: quit"} {
		assert.True(t, strings.Contains(out, want), "view should contain %q", want)
	}
}

func apply(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}
