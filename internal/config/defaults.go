package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *PlanConfig {
	return &PlanConfig{
		Solver: SolverConfig{
			DefaultScenario:    "expected",
			MaxSteps:           0,
			EscalationAttempts: 3,
			TimeoutSeconds:     30,
			Concurrency:        3,
		},
		Store: StoreConfig{
			Path: filepath.Join(xdg.DataHome, "projplan", "projplan.db"),
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Resources: map[string]ResourceConfig{
			"projectManager": {Label: "Project Manager", HourlyRate: 150},
			"fullStackDev1":  {Label: "Full Stack Developer 1", HourlyRate: 125},
			"fullStackDev2":  {Label: "Full Stack Developer 2", HourlyRate: 125},
			"cloudDevops":    {Label: "Cloud / DevOps", HourlyRate: 140},
			"dataEngineer":   {Label: "Data Engineer", HourlyRate: 135},
		},
	}
}

// DefaultPaths returns the global and project config file locations.
// Global: $XDG_CONFIG_HOME/projplan/config.json
// Project: .projplan/config.json (relative to cwd)
func DefaultPaths() (globalPath, projectPath string) {
	return filepath.Join(xdg.ConfigHome, "projplan", "config.json"),
		filepath.Join(".projplan", "config.json")
}
