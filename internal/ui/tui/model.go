package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nicodoggie/devctl-plugin-kind/internal/ui/benchmarks"
)

// outputTail is how many output lines stay on screen.
const outputTail = 8

// PhaseRow represents a phase for display.
type PhaseRow struct {
	Name     string
	Done     bool
	Active   bool
	Err      error
	Duration time.Duration
	Started  time.Time
}

// StepRow represents a bootstrap step for display.
type StepRow struct {
	Section  string
	Run      string
	State    StepState
	Attempts int
}

// ResourceRow is the latest status of a resource.
type ResourceRow struct {
	Kind   string
	Name   string
	Status string
}

// Model is the Bubble Tea model for the up dashboard.
type Model struct {
	ClusterName string

	Phases    []PhaseRow
	Section   string
	Steps     []StepRow
	Resources []ResourceRow
	Output    []string
	Logs      []string

	// ETA
	EstimatedRemaining time.Duration
	PerformanceScale   float64
	StartTime          time.Time

	// Animation
	SpinnerFrame int

	// UI state
	Width  int
	Height int
	Err    error
	Done   bool
}

// NewUpModel creates a model listing phases in execution order.
func NewUpModel(clusterName string, phases []string) Model {
	rows := make([]PhaseRow, 0, len(phases))
	for _, p := range phases {
		rows = append(rows, PhaseRow{Name: p})
	}
	return Model{
		ClusterName:      clusterName,
		Phases:           rows,
		StartTime:        time.Now(),
		PerformanceScale: 1.0,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case PhaseMsg:
		m.updatePhase(msg)

	case SectionMsg:
		m.Section = msg.Label

	case StepMsg:
		m.updateStep(msg)

	case ResourceMsg:
		m.updateResource(msg)

	case OutputMsg:
		m.Output = appendTail(m.Output, msg.Line, outputTail)

	case LogMsg:
		m.Logs = appendTail(m.Logs, msg.Text, outputTail)

	case TickMsg:
		m.SpinnerFrame++
		m.updateETA()
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) updatePhase(msg PhaseMsg) {
	idx := -1
	for i, p := range m.Phases {
		if p.Name == msg.Phase {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	// Mark previous phases as done
	for i := range idx {
		m.Phases[i].Done = true
		m.Phases[i].Active = false
	}

	row := &m.Phases[idx]
	switch {
	case msg.Err != nil:
		row.Err = msg.Err
		row.Active = false
	case msg.Done:
		row.Done = true
		row.Active = false
		row.Duration = msg.Duration
	default:
		row.Active = true
		row.Started = time.Now()
	}
}

func (m *Model) updateStep(msg StepMsg) {
	// A step reports running, maybe retrying, then a final state; only the
	// last row can still change.
	if n := len(m.Steps); n > 0 {
		last := &m.Steps[n-1]
		if last.Run == msg.Run && (last.State == StepRunning || last.State == StepRetrying) {
			last.State = msg.State
			last.Attempts = msg.Attempts
			return
		}
	}
	m.Steps = append(m.Steps, StepRow{
		Section:  m.Section,
		Run:      msg.Run,
		State:    msg.State,
		Attempts: msg.Attempts,
	})
}

func (m *Model) updateResource(msg ResourceMsg) {
	for i, r := range m.Resources {
		if r.Kind == msg.Kind && r.Name == msg.Name {
			m.Resources[i].Status = msg.Status
			return
		}
	}
	m.Resources = append(m.Resources, ResourceRow(msg))
}

func (m *Model) updateETA() {
	var current *PhaseRow
	var history []benchmarks.Record
	for i := range m.Phases {
		p := &m.Phases[i]
		switch {
		case p.Done:
			history = append(history, benchmarks.Record{Phase: p.Name, Duration: p.Duration})
		case p.Active:
			current = p
		}
	}
	if current == nil {
		m.EstimatedRemaining = 0
		return
	}

	elapsed := time.Since(current.Started)
	m.PerformanceScale = benchmarks.PerformanceScale(current.Name, elapsed, history)
	m.EstimatedRemaining = benchmarks.EstimateRemainingWithScale(current.Name, elapsed, history, m.PerformanceScale)
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}

func appendTail(lines []string, line string, n int) []string {
	lines = append(lines, line)
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}
