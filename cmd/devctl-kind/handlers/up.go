package handlers

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/nicodoggie/devctl-plugin-kind/internal/metrics"
	"github.com/nicodoggie/devctl-plugin-kind/internal/orchestration"
	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/kind"
	"github.com/nicodoggie/devctl-plugin-kind/internal/provisioning"
)

// UpOptions holds the flags of the up command.
type UpOptions struct {
	Replace     bool
	MetricsFile string
}

// Up handles the up command.
//
// It loads the project, verifies kind and docker are installed and runs the
// orchestrator, under the dashboard when stdout is a terminal. Errors carry
// the failing stage so main can map them to an exit code.
func Up(ctx context.Context, opts UpOptions) error {
	log := logr.FromContextOrDiscard(ctx)

	cfg, err := loadProject(loadConfig)
	if err != nil {
		return &orchestration.Error{Stage: orchestration.StageConfig, Err: err}
	}
	if res := checkRequiredTools(ctx); res.HasErrors() {
		return &orchestration.Error{Stage: orchestration.StageConfig, Err: res.Error()}
	}

	networks, err := newNetworks()
	if err != nil {
		return &orchestration.Error{Stage: orchestration.StageConfig, Err: err}
	}
	defer func() { _ = networks.Close() }()

	recorder := metrics.NewRecorder(cfg.ClusterName)
	exec := newExecutor()
	newOrchestrator := func(obs provisioning.Observer) *orchestration.Orchestrator {
		return orchestration.New(cfg, networks, kind.NewClient(exec), exec, newKubeClient,
			orchestration.WithObserver(provisioning.Tee(obs, recorder)))
	}
	run := func(ctx context.Context, obs provisioning.Observer) error {
		return newOrchestrator(obs).Run(ctx, opts.Replace)
	}

	log.Info("Reconciling cluster", "cluster", cfg.ClusterName, "replace", opts.Replace)
	start := time.Now()
	if isInteractive() {
		err = runDashboard(ctx, cfg.ClusterName, newOrchestrator(nil).PhaseNames(), run)
	} else {
		err = run(ctx, provisioning.NewConsoleObserver(log))
	}

	recorder.ObserveRun(orchestration.ExitCode(err), time.Since(start))
	writeMetrics(log, recorder, opts.MetricsFile)

	if err != nil {
		return err
	}
	log.Info("Cluster is ready", "cluster", cfg.ClusterName, "context", cfg.Context(), "duration", time.Since(start).Round(time.Second).String())
	return nil
}

func writeMetrics(log logr.Logger, recorder *metrics.Recorder, path string) {
	if path == "" {
		return
	}
	if err := recorder.WriteToTextfile(path); err != nil {
		log.Error(err, "Failed to write metrics", "path", path)
	}
}
