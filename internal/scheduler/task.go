package scheduler

import (
	"fmt"
	"strings"
)

// Scenario names one of the fixed duration estimate sets.
type Scenario string

const (
	ScenarioBest     Scenario = "best"
	ScenarioExpected Scenario = "expected"
	ScenarioWorst    Scenario = "worst"
)

// Scenarios lists every scenario from most to least optimistic.
var Scenarios = []Scenario{ScenarioBest, ScenarioExpected, ScenarioWorst}

// ParseScenario matches name case-insensitively against the known scenarios.
func ParseScenario(name string) (Scenario, error) {
	switch Scenario(strings.ToLower(strings.TrimSpace(name))) {
	case ScenarioBest:
		return ScenarioBest, nil
	case ScenarioExpected:
		return ScenarioExpected, nil
	case ScenarioWorst:
		return ScenarioWorst, nil
	}
	return "", &ScheduleError{Kind: ErrUnknownScenario, Scenario: name}
}

// Title returns the display form of the scenario ("Best", "Expected", ...).
func (s Scenario) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Task is a unit of project work.
type Task struct {
	ID          string               // Unique identifier
	Description string               // Display text
	Durations   map[Scenario]float64 // Hours per scenario; a scenario may be absent
	Resources   map[string]float64   // Resource name -> hours (informational only)
}

// PrecedenceMap maps a task ID to the IDs of its immediate predecessors.
type PrecedenceMap map[string][]string

// Clone returns a deep copy of the map.
func (p PrecedenceMap) Clone() PrecedenceMap {
	if p == nil {
		return nil
	}
	cp := make(PrecedenceMap, len(p))
	for id, preds := range p {
		cp[id] = append([]string(nil), preds...)
	}
	return cp
}

func (t Task) String() string {
	return fmt.Sprintf("%s (%s)", t.ID, t.Description)
}

func cloneTask(task Task) Task {
	cp := task
	if task.Durations != nil {
		cp.Durations = make(map[Scenario]float64, len(task.Durations))
		for k, v := range task.Durations {
			cp.Durations[k] = v
		}
	}
	if task.Resources != nil {
		cp.Resources = make(map[string]float64, len(task.Resources))
		for k, v := range task.Resources {
			cp.Resources[k] = v
		}
	}
	return cp
}
