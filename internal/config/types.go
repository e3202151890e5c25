package config

// SolverConfig controls how schedules are computed.
type SolverConfig struct {
	DefaultScenario    string `json:"default_scenario,omitempty"`    // "best", "expected" or "worst"
	MaxSteps           int    `json:"max_steps,omitempty"`           // Forward sweep step budget (0 = unlimited)
	EscalationAttempts int    `json:"escalation_attempts,omitempty"` // Budget doublings after a timeout
	TimeoutSeconds     int    `json:"timeout_seconds,omitempty"`     // Wall-clock limit per solve (0 = none)
	Concurrency        int    `json:"concurrency,omitempty"`         // Scenarios solved in parallel
}

// StoreConfig locates the SQLite database holding projects and runs.
type StoreConfig struct {
	Path string `json:"path,omitempty"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level  string `json:"level,omitempty"`  // DEBUG, INFO, WARN, ERROR
	Format string `json:"format,omitempty"` // "text" or "json"
	File   string `json:"file,omitempty"`   // Empty logs to stderr
}

// ResourceConfig describes one kind of worker whose hours are costed.
type ResourceConfig struct {
	Label      string  `json:"label,omitempty"`
	HourlyRate float64 `json:"hourly_rate"`
}

// PlanConfig is the top-level configuration.
type PlanConfig struct {
	Solver    SolverConfig              `json:"solver"`
	Store     StoreConfig               `json:"store"`
	Logging   LoggingConfig             `json:"logging"`
	Resources map[string]ResourceConfig `json:"resources"`
}

// Rates returns resource name -> hourly rate.
func (c *PlanConfig) Rates() map[string]float64 {
	rates := make(map[string]float64, len(c.Resources))
	for name, r := range c.Resources {
		rates[name] = r.HourlyRate
	}
	return rates
}
