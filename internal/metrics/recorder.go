// Package metrics records run, phase and bootstrap step metrics in a
// private Prometheus registry and exports them in the text exposition
// format.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nicodoggie/devctl-plugin-kind/internal/provisioning"
)

const namespace = "devctl_kind"

// Recorder is a provisioning.Observer that turns events into metrics.
type Recorder struct {
	registry *prometheus.Registry
	cluster  string

	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Gauge
	lastExitCode  prometheus.Gauge
	phaseTotal    *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
	resources     *prometheus.CounterVec
	stepsTotal    *prometheus.CounterVec
	stepAttempts  *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder(cluster string) *Recorder {
	constLabels := prometheus.Labels{"cluster": cluster}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		cluster:  cluster,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "runs_total",
			Help:        "Total number of runs by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "run_duration_seconds",
			Help:        "Duration of the last run in seconds",
			ConstLabels: constLabels,
		}),
		lastExitCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_exit_code",
			Help:        "Exit code of the last run",
			ConstLabels: constLabels,
		}),
		phaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "phase",
			Name:        "total",
			Help:        "Total number of phases by result",
			ConstLabels: constLabels,
		}, []string{"phase", "result"}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "phase",
			Name:        "duration_seconds",
			Help:        "Duration of completed phases in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.4min
		}, []string{"phase"}),
		resources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "resource",
			Name:        "operations_total",
			Help:        "Resource reconcile results by type and action",
			ConstLabels: constLabels,
		}, []string{"type", "action"}),
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "bootstrap",
			Name:        "steps_total",
			Help:        "Bootstrap steps by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
		stepAttempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "bootstrap",
			Name:        "step_attempts",
			Help:        "Attempts needed per bootstrap step",
			ConstLabels: constLabels,
			Buckets:     prometheus.LinearBuckets(1, 1, 5),
		}, []string{"result"}),
	}

	r.registry.MustRegister(
		r.runsTotal,
		r.runDuration,
		r.lastExitCode,
		r.phaseTotal,
		r.phaseDuration,
		r.resources,
		r.stepsTotal,
		r.stepAttempts,
	)
	return r
}

// Registry returns the registry holding the recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun records the overall result of a run.
func (r *Recorder) ObserveRun(exitCode int, duration time.Duration) {
	result := "success"
	if exitCode != 0 {
		result = "failure"
	}
	r.runsTotal.WithLabelValues(result).Inc()
	r.runDuration.Set(duration.Seconds())
	r.lastExitCode.Set(float64(exitCode))
}

// WriteToTextfile writes all metrics to path in the text format read by
// the node exporter textfile collector.
func (r *Recorder) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Printf implements provisioning.Logger. Log lines carry no metrics.
func (r *Recorder) Printf(string, ...any) {}

// Progress implements provisioning.Observer.
func (r *Recorder) Progress(string, int, int) {}

// WithFields implements provisioning.Observer.
func (r *Recorder) WithFields(map[string]string) provisioning.Observer {
	return r
}

// Event implements provisioning.Observer.
func (r *Recorder) Event(e provisioning.Event) {
	switch e.Type {
	case provisioning.EventPhaseCompleted:
		r.phaseTotal.WithLabelValues(e.Phase, "success").Inc()
		r.phaseDuration.WithLabelValues(e.Phase).Observe(e.Duration.Seconds())
	case provisioning.EventPhaseFailed:
		r.phaseTotal.WithLabelValues(e.Phase, "failure").Inc()
	case provisioning.EventResourceCreated:
		r.resources.WithLabelValues(e.Fields["type"], "created").Inc()
	case provisioning.EventResourceExists:
		r.resources.WithLabelValues(e.Fields["type"], "reused").Inc()
	case provisioning.EventResourceDeleted:
		r.resources.WithLabelValues(e.Fields["type"], "deleted").Inc()
	case provisioning.EventResourceFailed:
		r.resources.WithLabelValues(e.Fields["type"], "failed").Inc()
	case provisioning.EventStepSucceeded:
		r.observeStep("success", e.Fields["attempts"])
	case provisioning.EventStepFailed:
		r.observeStep("failure", e.Fields["attempts"])
	}
}

func (r *Recorder) observeStep(result, attempts string) {
	r.stepsTotal.WithLabelValues(result).Inc()
	if n, err := strconv.Atoi(attempts); err == nil {
		r.stepAttempts.WithLabelValues(result).Observe(float64(n))
	}
}
