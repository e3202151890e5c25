package scheduler

import (
	"math"
	"sort"
)

// DurationSet resolves the active duration of each task under a scenario.
// It is immutable; WithOverride returns a new set.
type DurationSet struct {
	hours map[string]map[Scenario]float64 // taskID -> scenario -> hours
}

// NewDurationSet indexes the durations recorded on tasks.
// Negative, NaN and infinite values fail with ErrInvalidDuration.
func NewDurationSet(tasks []Task) (*DurationSet, error) {
	ds := &DurationSet{hours: make(map[string]map[Scenario]float64, len(tasks))}
	for _, task := range tasks {
		byScenario := make(map[Scenario]float64, len(task.Durations))
		for scenario, h := range task.Durations {
			if err := validateHours(task.ID, scenario, h); err != nil {
				return nil, err
			}
			byScenario[scenario] = h
		}
		ds.hours[task.ID] = byScenario
	}
	return ds, nil
}

func validateHours(taskID string, scenario Scenario, h float64) error {
	if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
		return &ScheduleError{Kind: ErrInvalidDuration, TaskID: taskID, Scenario: string(scenario), Msg: "must be a finite, non-negative number"}
	}
	return nil
}

// DurationOf returns the duration of taskID under the named scenario.
// The name is matched case-insensitively.
func (ds *DurationSet) DurationOf(taskID, scenario string) (float64, error) {
	s, err := ParseScenario(scenario)
	if err != nil {
		return 0, err
	}
	h, err := ds.Lookup(taskID, s)
	if err != nil {
		// Report the scenario the way the caller spelled it
		if se, ok := err.(*ScheduleError); ok {
			se.Scenario = scenario
		}
		return 0, err
	}
	return h, nil
}

// Lookup returns the duration of taskID under s.
func (ds *DurationSet) Lookup(taskID string, s Scenario) (float64, error) {
	h, ok := ds.hours[taskID][s]
	if !ok {
		return 0, &ScheduleError{Kind: ErrMissingDuration, TaskID: taskID, Scenario: string(s)}
	}
	return h, nil
}

// Has reports whether taskID has a duration recorded for s.
func (ds *DurationSet) Has(taskID string, s Scenario) bool {
	_, ok := ds.hours[taskID][s]
	return ok
}

// WithOverride returns a copy of the set with taskID's duration under s
// replaced by hours. The receiver is left untouched.
func (ds *DurationSet) WithOverride(taskID string, s Scenario, hours float64) (*DurationSet, error) {
	if err := validateHours(taskID, s, hours); err != nil {
		return nil, err
	}
	if _, ok := ds.hours[taskID]; !ok {
		return nil, &ScheduleError{Kind: ErrInvalidTask, TaskID: taskID, Msg: "no such task in duration set"}
	}

	cp := &DurationSet{hours: make(map[string]map[Scenario]float64, len(ds.hours))}
	for id, byScenario := range ds.hours {
		inner := make(map[Scenario]float64, len(byScenario)+1)
		for k, v := range byScenario {
			inner[k] = v
		}
		cp.hours[id] = inner
	}
	cp.hours[taskID][s] = hours
	return cp, nil
}

// Resolve returns the durations of every listed task under s, failing on the
// first task (in ascending ID order) that has none.
func (ds *DurationSet) Resolve(taskIDs []string, s Scenario) (map[string]float64, error) {
	ids := append([]string(nil), taskIDs...)
	sort.Strings(ids)

	out := make(map[string]float64, len(ids))
	for _, id := range ids {
		h, err := ds.Lookup(id, s)
		if err != nil {
			return nil, err
		}
		out[id] = h
	}
	return out, nil
}
