package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

// sf wraps a lipgloss.Style into a styleFunc.
func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

var spinnerFrames = []string{"[⠋]", "[⠙]", "[⠹]", "[⠸]", "[⠼]", "[⠴]", "[⠦]", "[⠧]", "[⠇]", "[⠏]"}

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderProgressBar(&b, m)
	renderPhases(&b, m)

	if len(m.Resources) > 0 {
		renderResources(&b, m)
	}
	if len(m.Steps) > 0 {
		renderSteps(&b, m)
	}
	if len(m.Output) > 0 && !m.Done {
		renderOutput(&b, m)
	}
	if len(m.Logs) > 0 {
		renderLogs(&b, m)
	}

	renderFooter(&b, m)
	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	b.WriteString(titleStyle.Render(fmt.Sprintf("devctl-kind: %s", m.ClusterName)))

	status := " "
	switch {
	case m.Done:
		status += readyStyle.Render("Ready")
	case m.Err != nil:
		status += failedStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	default:
		if p, ok := activePhase(m); ok {
			status += activeStyle.Render(currentSpinner(m.SpinnerFrame)+" ") + warningStyle.Render(p.Name)
		} else {
			status += dimStyle.Render("Starting...")
		}
	}
	b.WriteString(status)
	b.WriteString("\n")
}

func renderProgressBar(b *strings.Builder, m Model) {
	progress := calculateProgress(m)
	barWidth := 40
	if m.Width > 0 && m.Width < 80 {
		barWidth = max(m.Width-30, 10)
	}
	filled := min(int(float64(barWidth)*progress), barWidth)

	bar := progressBarFull.Render(strings.Repeat("█", filled)) +
		progressBarEmpty.Render(strings.Repeat("░", barWidth-filled))

	eta := ""
	if m.EstimatedRemaining > 0 {
		eta = fmt.Sprintf(" ETA %s", formatDuration(m.EstimatedRemaining))
	}
	if m.PerformanceScale != 0 && m.PerformanceScale != 1.0 {
		eta += fmt.Sprintf("  speed x%.2f", m.PerformanceScale)
	}

	fmt.Fprintf(b, "  %s %d%%%s\n", bar, int(progress*100), eta)
}

func renderPhases(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Phases"))
	b.WriteString("\n")

	for _, phase := range m.Phases {
		var icon string
		var style styleFunc
		dur := ""
		switch {
		case phase.Err != nil:
			icon = crossMark
			style = sf(failedStyle)
		case phase.Done:
			icon = checkMark
			style = sf(readyStyle)
			dur = formatDuration(phase.Duration)
		case phase.Active:
			icon = currentSpinner(m.SpinnerFrame)
			style = sf(activeStyle)
			dur = formatDuration(time.Since(phase.Started))
		default:
			icon = pending
			style = sf(dimStyle)
		}
		fmt.Fprintf(b, "    %s %-18s %s\n", style(icon), style(phase.Name), dimStyle.Render(dur))
	}
}

func renderResources(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Resources"))
	b.WriteString("\n")

	for _, r := range m.Resources {
		var icon string
		var style styleFunc
		switch r.Status {
		case "created", "reused", "deleted":
			icon, style = checkMark, sf(readyStyle)
		case "failed":
			icon, style = crossMark, sf(failedStyle)
		default:
			icon, style = currentSpinner(m.SpinnerFrame), sf(activeStyle)
		}
		fmt.Fprintf(b, "    %s %-14s %-24s %s\n", style(icon), r.Kind, r.Name, style(r.Status))
	}
}

func renderSteps(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Bootstrap"))
	b.WriteString("\n")

	section := ""
	for i, s := range m.Steps {
		if i == 0 || s.Section != section {
			section = s.Section
			fmt.Fprintf(b, "    %s\n", subtitleStyle.Render(section))
		}

		var icon string
		var style styleFunc
		extra := ""
		switch s.State {
		case StepSucceeded:
			icon, style = checkMark, sf(readyStyle)
		case StepFailed:
			icon, style = crossMark, sf(failedStyle)
			extra = fmt.Sprintf(" (after %d attempts)", s.Attempts)
		case StepRetrying:
			icon, style = warnMark, sf(warningStyle)
			extra = fmt.Sprintf(" (retry %d)", s.Attempts)
		default:
			icon, style = currentSpinner(m.SpinnerFrame), sf(activeStyle)
		}
		fmt.Fprintf(b, "      %s %s%s\n", style(icon), style(s.Run), dimStyle.Render(extra))
	}
}

func renderOutput(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Output"))
	b.WriteString("\n")
	for _, line := range m.Output {
		fmt.Fprintf(b, "    %s\n", dimStyle.Render(line))
	}
}

func renderLogs(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Log"))
	b.WriteString("\n")
	for _, line := range m.Logs {
		fmt.Fprintf(b, "    %s\n", subtitleStyle.Render(line))
	}
}

func renderFooter(b *strings.Builder, m Model) {
	elapsed := formatDuration(time.Since(m.StartTime))
	b.WriteString(footerStyle.Render(fmt.Sprintf("  elapsed: %s  |  q: quit", elapsed)))
	b.WriteString("\n")
}

// Helper functions

func activePhase(m Model) (PhaseRow, bool) {
	for _, p := range m.Phases {
		if p.Active {
			return p, true
		}
	}
	return PhaseRow{}, false
}

func currentSpinner(frame int) string {
	if len(spinnerFrames) == 0 {
		return spinner
	}
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

func calculateProgress(m Model) float64 {
	if m.Done {
		return 1.0
	}
	if len(m.Phases) == 0 {
		return 0
	}
	done := 0
	for _, p := range m.Phases {
		if p.Done {
			done++
		}
	}
	return float64(done) / float64(len(m.Phases))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
