package testing

import (
	"fmt"
	"sync"

	"github.com/nicodoggie/devctl-plugin-kind/internal/provisioning"
)

// RecordingObserver is a provisioning.Observer that keeps every event and
// log line.
type RecordingObserver struct {
	mu     sync.Mutex
	events []provisioning.Event
	logs   []string
}

// NewRecordingObserver creates an empty RecordingObserver.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{}
}

// Printf implements provisioning.Logger.
func (r *RecordingObserver) Printf(format string, v ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, fmt.Sprintf(format, v...))
}

// Event implements provisioning.Observer.
func (r *RecordingObserver) Event(e provisioning.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Progress implements provisioning.Observer.
func (r *RecordingObserver) Progress(string, int, int) {}

// WithFields implements provisioning.Observer.
func (r *RecordingObserver) WithFields(map[string]string) provisioning.Observer {
	return r
}

// Events returns the recorded events, optionally filtered by type.
func (r *RecordingObserver) Events(types ...provisioning.EventType) []provisioning.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []provisioning.Event
	for _, e := range r.events {
		if len(types) == 0 {
			out = append(out, e)
			continue
		}
		for _, t := range types {
			if e.Type == t {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Resources returns "type:resource" for every event of the given types.
func (r *RecordingObserver) Resources(types ...provisioning.EventType) []string {
	var out []string
	for _, e := range r.Events(types...) {
		out = append(out, string(e.Type)+":"+e.Resource)
	}
	return out
}

// Logs returns the recorded log lines.
func (r *RecordingObserver) Logs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.logs...)
}
