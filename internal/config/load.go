package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNoProject is returned when no .devctl.yaml marker exists above the
// starting directory.
var ErrNoProject = errors.New("not inside a devctl project")

// FindProjectRoot walks up from start to the first directory that contains
// the .devctl.yaml marker.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, MarkerFilename)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w: %s not found above %s", ErrNoProject, MarkerFilename, start)
}

// Load reads, defaults and validates the cluster configuration of the
// project at root.
func Load(root string) (*Config, error) {
	cfg, err := LoadWithoutValidation(root)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithoutValidation reads and defaults the cluster configuration without
// validating it.
func LoadWithoutValidation(root string) (*Config, error) {
	path := filepath.Join(root, ClusterFilename)
	data, err := os.ReadFile(path) // #nosec G304 -- path is inside the discovered project
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("cluster is not initialized: %s is missing", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.ProjectRoot = root
	return cfg, nil
}

func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}
