package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aristath/projplan/internal/scheduler"
)

// Load reads and merges configuration from global and project paths.
// Order of precedence (highest to lowest): project config, global config, defaults.
// Missing files are not errors; malformed JSON returns an error.
func Load(globalPath, projectPath string) (*PlanConfig, error) {
	cfg := DefaultConfig()

	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}

	// Project config has the highest precedence
	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads configuration from the conventional paths.
func LoadDefault() (*PlanConfig, error) {
	globalPath, projectPath := DefaultPaths()
	return Load(globalPath, projectPath)
}

// Validate checks values that would otherwise fail deep inside a solve.
func (c *PlanConfig) Validate() error {
	if _, err := scheduler.ParseScenario(c.Solver.DefaultScenario); err != nil {
		return fmt.Errorf("invalid solver.default_scenario: %w", err)
	}
	if c.Solver.MaxSteps < 0 || c.Solver.EscalationAttempts < 0 || c.Solver.TimeoutSeconds < 0 || c.Solver.Concurrency < 0 {
		return fmt.Errorf("invalid solver settings: negative values are not allowed")
	}
	for name, r := range c.Resources {
		if r.HourlyRate < 0 {
			return fmt.Errorf("invalid hourly rate for resource %q: %g", name, r.HourlyRate)
		}
	}
	return nil
}

// mergeConfigFile reads a JSON config file and merges it into the base config.
// Missing files are silently skipped. Malformed JSON returns an error.
func mergeConfigFile(base *PlanConfig, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Missing file is not an error
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var loaded PlanConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	// Scalars override only when set
	if loaded.Solver.DefaultScenario != "" {
		base.Solver.DefaultScenario = loaded.Solver.DefaultScenario
	}
	if loaded.Solver.MaxSteps != 0 {
		base.Solver.MaxSteps = loaded.Solver.MaxSteps
	}
	if loaded.Solver.EscalationAttempts != 0 {
		base.Solver.EscalationAttempts = loaded.Solver.EscalationAttempts
	}
	if loaded.Solver.TimeoutSeconds != 0 {
		base.Solver.TimeoutSeconds = loaded.Solver.TimeoutSeconds
	}
	if loaded.Solver.Concurrency != 0 {
		base.Solver.Concurrency = loaded.Solver.Concurrency
	}
	if loaded.Store.Path != "" {
		base.Store.Path = loaded.Store.Path
	}
	if loaded.Logging.Level != "" {
		base.Logging.Level = loaded.Logging.Level
	}
	if loaded.Logging.Format != "" {
		base.Logging.Format = loaded.Logging.Format
	}
	if loaded.Logging.File != "" {
		base.Logging.File = loaded.Logging.File
	}

	// Merge resources
	for key, resource := range loaded.Resources {
		base.Resources[key] = resource
	}

	return nil
}
