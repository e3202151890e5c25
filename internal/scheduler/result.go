package scheduler

import (
	"sort"
)

// Status is the outcome class of a solve.
type Status int

const (
	StatusOptimal    Status = iota // Minimum makespan found
	StatusInfeasible               // Constraints cannot be met
	StatusUnbounded                // Objective has no lower bound
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "Optimal"
	case StatusInfeasible:
		return "Infeasible"
	case StatusUnbounded:
		return "Unbounded"
	}
	return "Unknown"
}

// Entry is the schedule of one task.
type Entry struct {
	TaskID       string
	Description  string
	Start        float64 // earliest start
	Finish       float64 // Start + Duration
	Duration     float64
	LatestStart  float64
	LatestFinish float64
	Slack        float64 // LatestStart - Start
	Critical     bool
}

// ScheduleResult is the immutable output of a solve.
type ScheduleResult struct {
	scenario Scenario
	status   Status
	makespan float64
	entries  map[string]Entry
	topo     []string
}

// Scenario returns the scenario the result was solved for.
func (r *ScheduleResult) Scenario() Scenario { return r.scenario }

// Status returns the solve status.
func (r *ScheduleResult) Status() Status { return r.status }

// Makespan returns the overall completion time (0 for an empty project).
func (r *ScheduleResult) Makespan() float64 { return r.makespan }

// Len returns the number of scheduled tasks.
func (r *ScheduleResult) Len() int { return len(r.entries) }

// Entry returns the schedule of taskID.
func (r *ScheduleResult) Entry(taskID string) (Entry, bool) {
	e, ok := r.entries[taskID]
	return e, ok
}

// ByID returns all entries ordered by ascending task ID.
func (r *ScheduleResult) ByID() []Entry {
	out := r.collect()
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out
}

// ByStart returns all entries ordered by start time, then by task ID.
func (r *ScheduleResult) ByStart() []Entry {
	out := r.collect()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].TaskID < out[j].TaskID
	})
	return out
}

// CriticalPath returns the zero-slack tasks in topological order.
func (r *ScheduleResult) CriticalPath() []string {
	var path []string
	for _, id := range r.topo {
		if r.entries[id].Critical {
			path = append(path, id)
		}
	}
	return path
}

// TopologicalOrder returns the order the tasks were swept in.
func (r *ScheduleResult) TopologicalOrder() []string {
	return append([]string(nil), r.topo...)
}

func (r *ScheduleResult) collect() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}
