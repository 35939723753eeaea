package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout and retry values.
// These values can be customized via environment variables.
type Timeouts struct {
	ClusterCreate time.Duration // Timeout for kind create cluster
	Step          time.Duration // Timeout for a single bootstrap step attempt
	Delete        time.Duration // Timeout for cluster and network deletion

	StepAttempts int           // Attempts per bootstrap step
	StepDelay    time.Duration // Initial delay between step attempts

	StorageAttempts int           // Attempts per storage existence check
	StorageMinDelay time.Duration // Lower bound between storage attempts
	StorageMaxDelay time.Duration // Upper bound between storage attempts
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - DEVCTL_KIND_TIMEOUT_CLUSTER_CREATE (default: 10m)
//   - DEVCTL_KIND_TIMEOUT_STEP (default: 10m)
//   - DEVCTL_KIND_TIMEOUT_DELETE (default: 5m)
//   - DEVCTL_KIND_STEP_ATTEMPTS (default: 3)
//   - DEVCTL_KIND_STEP_DELAY (default: 1s)
//   - DEVCTL_KIND_STORAGE_ATTEMPTS (default: 5)
//   - DEVCTL_KIND_STORAGE_MIN_DELAY (default: 2s)
//   - DEVCTL_KIND_STORAGE_MAX_DELAY (default: 15s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ClusterCreate:   parseDuration("DEVCTL_KIND_TIMEOUT_CLUSTER_CREATE", 10*time.Minute),
		Step:            parseDuration("DEVCTL_KIND_TIMEOUT_STEP", 10*time.Minute),
		Delete:          parseDuration("DEVCTL_KIND_TIMEOUT_DELETE", 5*time.Minute),
		StepAttempts:    parseInt("DEVCTL_KIND_STEP_ATTEMPTS", 3),
		StepDelay:       parseDuration("DEVCTL_KIND_STEP_DELAY", 1*time.Second),
		StorageAttempts: parseInt("DEVCTL_KIND_STORAGE_ATTEMPTS", 5),
		StorageMinDelay: parseDuration("DEVCTL_KIND_STORAGE_MIN_DELAY", 2*time.Second),
		StorageMaxDelay: parseDuration("DEVCTL_KIND_STORAGE_MAX_DELAY", 15*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses a positive integer from an environment variable.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}

	return i
}
