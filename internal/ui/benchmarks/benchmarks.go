// Package benchmarks provides timing estimates for the phases of an up run.
package benchmarks

import (
	"time"
)

// DefaultTimings are typical durations on a developer machine (seconds).
// replace-cluster is 0 because it only does work when replacing.
var DefaultTimings = map[string]int{
	"validation":      1,
	"check-cluster":   1,
	"check-network":   1,
	"replace-cluster": 0,
	"network":         2,
	"cluster":         75,
	"bootstrap":       120,
	"storage":         5,
}

// PhaseOrder defines the sequence of phases for ETA calculation.
var PhaseOrder = []string{
	"validation",
	"check-cluster",
	"check-network",
	"replace-cluster",
	"network",
	"cluster",
	"bootstrap",
	"storage",
}

// Record is a completed phase and how long it took.
type Record struct {
	Phase    string
	Duration time.Duration
}

// EstimateRemaining calculates the estimated time remaining based on
// current phase, elapsed time, and completed phases.
func EstimateRemaining(currentPhase string, phaseElapsed time.Duration, history []Record) time.Duration {
	return EstimateRemainingWithScale(currentPhase, phaseElapsed, history, PerformanceScale(currentPhase, phaseElapsed, history))
}

// EstimateRemainingWithScale calculates ETA while applying a performance scale factor.
func EstimateRemainingWithScale(currentPhase string, phaseElapsed time.Duration, history []Record, scale float64) time.Duration {
	currentIdx := -1
	for i, p := range PhaseOrder {
		if p == currentPhase {
			currentIdx = i
			break
		}
	}
	if currentIdx < 0 {
		return 0
	}

	var remaining time.Duration

	// For the current phase: max(0, expected - elapsed)
	if expectedDur := scaled(currentPhase, scale); expectedDur > phaseElapsed {
		remaining += expectedDur - phaseElapsed
	}

	completed := make(map[string]bool, len(history))
	for _, rec := range history {
		completed[rec.Phase] = true
	}
	for _, phase := range PhaseOrder[currentIdx+1:] {
		if !completed[phase] {
			remaining += scaled(phase, scale)
		}
	}

	return remaining
}

func scaled(phase string, scale float64) time.Duration {
	secs, ok := DefaultTimings[phase]
	if !ok {
		return 0
	}
	return time.Duration(float64(time.Duration(secs)*time.Second) * scale)
}

// PerformanceScale derives a speed multiplier from observed-vs-expected durations.
// Example: expected 75s, observed 150s => scale=2 (future ETAs are doubled).
// Phases with no expected duration are ignored.
func PerformanceScale(currentPhase string, phaseElapsed time.Duration, history []Record) float64 {
	var expectedTotal time.Duration
	var actualTotal time.Duration

	for _, rec := range history {
		expectedSecs, ok := DefaultTimings[rec.Phase]
		if !ok || expectedSecs == 0 {
			continue
		}
		expectedTotal += time.Duration(expectedSecs) * time.Second
		actualTotal += rec.Duration
	}

	// If current phase is overrunning, fold it in immediately so ETA adapts quickly.
	if expectedSecs, ok := DefaultTimings[currentPhase]; ok && expectedSecs > 0 && phaseElapsed > 0 {
		expectedCurrent := time.Duration(expectedSecs) * time.Second
		if phaseElapsed > expectedCurrent {
			expectedTotal += expectedCurrent
			actualTotal += phaseElapsed
		}
	}

	if expectedTotal == 0 || actualTotal == 0 {
		return 1.0
	}

	scale := float64(actualTotal) / float64(expectedTotal)
	return min(max(scale, 0.6), 3.0)
}

// TotalEstimate returns the total estimated run time.
func TotalEstimate() time.Duration {
	var total time.Duration
	for _, phase := range PhaseOrder {
		total += scaled(phase, 1.0)
	}
	return total
}
