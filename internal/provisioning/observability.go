package provisioning

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/go-logr/logr"
)

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a phase
	Progress(phase string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "network", "bootstrap")
	Message   string            // Human-readable message
	Resource  string            // Resource name if applicable
	Timestamp time.Time         // When the event occurred
	Duration  time.Duration     // Elapsed time for completed work
	Err       error             // Cause of a failure event
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventPhaseStarted indicates a provisioning phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a provisioning phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a provisioning phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceCreating indicates a resource is being created.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was created successfully.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates a resource already exists.
	EventResourceExists EventType = "resource.exists"
	// EventResourceFailed indicates resource creation failed.
	EventResourceFailed EventType = "resource.failed"
	// EventResourceDeleting indicates a resource is being deleted.
	EventResourceDeleting EventType = "resource.deleting"
	// EventResourceDeleted indicates a resource was deleted successfully.
	EventResourceDeleted EventType = "resource.deleted"

	// EventSection indicates a new bootstrap section begins.
	EventSection EventType = "section"
	// EventStepSucceeded indicates a bootstrap step succeeded.
	EventStepSucceeded EventType = "step.succeeded"
	// EventStepFailed indicates a bootstrap step failed after all attempts.
	EventStepFailed EventType = "step.failed"
	// EventStepRetrying indicates a bootstrap step attempt failed and will be retried.
	EventStepRetrying EventType = "step.retrying"

	// EventOutput carries one line of output from an external tool.
	EventOutput EventType = "output"

	// EventValidationWarning indicates a validation warning.
	EventValidationWarning EventType = "validation.warning"
	// EventValidationError indicates a validation error.
	EventValidationError EventType = "validation.error"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

// IsFailure reports whether the event describes a failure.
func (t EventType) IsFailure() bool {
	switch t {
	case EventPhaseFailed, EventResourceFailed, EventStepFailed, EventValidationError:
		return true
	}
	return false
}

// ConsoleObserver implements Observer on top of a logr.Logger.
type ConsoleObserver struct {
	log           logr.Logger
	contextFields map[string]string
}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver(log logr.Logger) *ConsoleObserver {
	return &ConsoleObserver{
		log:           log,
		contextFields: make(map[string]string),
	}
}

func discardLogger() logr.Logger {
	return logr.Discard()
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	o.log.Info(fmt.Sprintf(format, v...))
}

// Event implements Observer interface.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	kv := o.keysAndValues(event)

	switch {
	case event.Type == EventOutput:
		// Tool output is noisy; keep it at debug verbosity.
		o.log.V(1).Info(event.Message, kv...)
	case event.Type.IsFailure():
		o.log.Error(event.Err, event.Message, kv...)
	default:
		o.log.Info(event.Message, kv...)
	}
}

// Progress implements Observer interface.
func (o *ConsoleObserver) Progress(phase string, current, total int) {
	percentage := 0
	if total > 0 {
		percentage = (current * 100) / total
	}
	o.log.V(1).Info("progress", "phase", phase, "current", current, "total", total, "percent", percentage)
}

// WithFields implements Observer interface.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	newFields := maps.Clone(o.contextFields)
	maps.Copy(newFields, fields)

	return &ConsoleObserver{
		log:           o.log,
		contextFields: newFields,
	}
}

// keysAndValues flattens an event into logr key/value pairs. Context fields
// never override event fields.
func (o *ConsoleObserver) keysAndValues(event Event) []any {
	kv := []any{"event", string(event.Type)}
	if event.Phase != "" {
		kv = append(kv, "phase", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	if event.Duration > 0 {
		kv = append(kv, "duration", event.Duration.Round(time.Millisecond).String())
	}

	fields := maps.Clone(o.contextFields)
	if fields == nil {
		fields = make(map[string]string)
	}
	maps.Copy(fields, event.Fields)
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		kv = append(kv, k, fields[k])
	}
	return kv
}

// MultiObserver fans events out to several observers. Printf goes to the
// first one only.
type MultiObserver []Observer

// Tee combines observers, skipping nil entries.
func Tee(observers ...Observer) Observer {
	var m MultiObserver
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

// Printf implements Logger.
func (m MultiObserver) Printf(format string, v ...any) {
	if len(m) > 0 {
		m[0].Printf(format, v...)
	}
}

// Event implements Observer.
func (m MultiObserver) Event(event Event) {
	for _, o := range m {
		o.Event(event)
	}
}

// Progress implements Observer.
func (m MultiObserver) Progress(phase string, current, total int) {
	for _, o := range m {
		o.Progress(phase, current, total)
	}
}

// WithFields implements Observer.
func (m MultiObserver) WithFields(fields map[string]string) Observer {
	out := make(MultiObserver, len(m))
	for i, o := range m {
		out[i] = o.WithFields(fields)
	}
	return out
}

// Helper functions for common events

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:     EventPhaseCompleted,
		Phase:    phase,
		Message:  "completed",
		Duration: duration,
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: "failed",
		Err:     err,
	})
}

// LogResourceCreating logs a resource creation start event.
func LogResourceCreating(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreating,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("creating %s", resourceType),
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogResourceCreated logs a successful resource creation event.
func LogResourceCreated(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s created", resourceType),
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogResourceExists logs when a resource already exists and is reused.
func LogResourceExists(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceExists,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s already exists", resourceType),
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogResourceFailed logs a failed create or delete.
func LogResourceFailed(observer Observer, phase, resourceType, resourceName string, err error) {
	observer.Event(Event{
		Type:     EventResourceFailed,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s failed", resourceType),
		Err:      err,
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogResourceDeleting logs a resource deletion start event.
func LogResourceDeleting(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleting,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("deleting %s", resourceType),
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogResourceDeleted logs a successful resource deletion event.
func LogResourceDeleted(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleted,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s deleted", resourceType),
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogSection logs the start of a bootstrap section.
func LogSection(observer Observer, phase, label string) {
	observer.Event(Event{
		Type:     EventSection,
		Phase:    phase,
		Resource: label,
		Message:  label,
	})
}

// LogStepSucceeded logs a successful bootstrap step.
func LogStepSucceeded(observer Observer, phase, step string, attempts int, duration time.Duration) {
	observer.Event(Event{
		Type:     EventStepSucceeded,
		Phase:    phase,
		Resource: step,
		Message:  step,
		Duration: duration,
		Fields:   map[string]string{"attempts": fmt.Sprint(attempts)},
	})
}

// LogStepFailed logs a bootstrap step that failed after all attempts.
func LogStepFailed(observer Observer, phase, step string, attempts int, err error) {
	observer.Event(Event{
		Type:     EventStepFailed,
		Phase:    phase,
		Resource: step,
		Message:  step,
		Err:      err,
		Fields:   map[string]string{"attempts": fmt.Sprint(attempts)},
	})
}

// LogStepRetrying logs a failed attempt that will be retried.
func LogStepRetrying(observer Observer, phase, step string, attempt int, err error) {
	observer.Event(Event{
		Type:     EventStepRetrying,
		Phase:    phase,
		Resource: step,
		Message:  fmt.Sprintf("attempt %d failed, retrying", attempt),
		Err:      err,
		Fields:   map[string]string{"attempt": fmt.Sprint(attempt)},
	})
}

// LogOutput forwards one line of external tool output.
func LogOutput(observer Observer, phase, stream, line string) {
	observer.Event(Event{
		Type:    EventOutput,
		Phase:   phase,
		Message: line,
		Fields:  map[string]string{"stream": stream},
	})
}
