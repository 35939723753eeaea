package testing

import (
	"context"
	"testing"
	"time"

	"github.com/nicodoggie/devctl-plugin-kind/internal/config"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// FastTimeouts returns timeouts with millisecond retry delays.
func FastTimeouts() *config.Timeouts {
	return &config.Timeouts{
		ClusterCreate:   10 * time.Second,
		Step:            10 * time.Second,
		Delete:          10 * time.Second,
		StepAttempts:    3,
		StepDelay:       time.Millisecond,
		StorageAttempts: 3,
		StorageMinDelay: time.Millisecond,
		StorageMaxDelay: 2 * time.Millisecond,
	}
}
