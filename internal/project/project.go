// Package project turns an input document into the scheduler's immutable
// inputs and carries the data the scheduler ignores: names, descriptions,
// and resource hours used for costing.
package project

import (
	"fmt"
	"sort"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/aristath/projplan/internal/scheduler"
)

// Project is a parsed input document.
type Project struct {
	Name         string
	Tasks        []scheduler.Task
	Predecessors scheduler.PrecedenceMap
}

// Build validates the project and returns its graph and duration set.
func (p *Project) Build() (*scheduler.TaskGraph, *scheduler.DurationSet, error) {
	g, err := scheduler.BuildGraph(p.Tasks, p.Predecessors)
	if err != nil {
		return nil, nil, fmt.Errorf("project %q: %w", p.Name, err)
	}
	ds, err := scheduler.NewDurationSet(p.Tasks)
	if err != nil {
		return nil, nil, fmt.Errorf("project %q: %w", p.Name, err)
	}
	return g, ds, nil
}

// Clone returns a deep copy.
func (p *Project) Clone() *Project {
	cp := &Project{Name: p.Name, Predecessors: p.Predecessors.Clone()}
	cp.Tasks = make([]scheduler.Task, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		nt := t
		nt.Durations = make(map[scheduler.Scenario]float64, len(t.Durations))
		for k, v := range t.Durations {
			nt.Durations[k] = v
		}
		nt.Resources = make(map[string]float64, len(t.Resources))
		for k, v := range t.Resources {
			nt.Resources[k] = v
		}
		cp.Tasks = append(cp.Tasks, nt)
	}
	return cp
}

// WithDuration returns a copy of the project where taskID's duration under
// scenario is hours.
func (p *Project) WithDuration(taskID string, scenario scheduler.Scenario, hours float64) (*Project, error) {
	cp := p.Clone()
	for i := range cp.Tasks {
		if cp.Tasks[i].ID == taskID {
			cp.Tasks[i].Durations[scenario] = hours
			return cp, nil
		}
	}
	return nil, &scheduler.ScheduleError{Kind: scheduler.ErrInvalidTask, TaskID: taskID, Msg: "no such task in project"}
}

// ResourceNames returns every resource named by any task, sorted.
func (p *Project) ResourceNames() []string {
	seen := make(map[string]bool)
	for _, t := range p.Tasks {
		for name := range t.Resources {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type snapshotTask struct {
	ID          string
	Description string
	Durations   map[string]float64
	Resources   map[string]float64
	Preds       []string `hash:"set"`
}

// Hash returns a fingerprint of the project content. Task order in the
// document and predecessor order do not affect it.
func (p *Project) Hash() (uint64, error) {
	tasks := make([]snapshotTask, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		st := snapshotTask{
			ID:          t.ID,
			Description: t.Description,
			Durations:   make(map[string]float64, len(t.Durations)),
			Resources:   t.Resources,
			Preds:       p.Predecessors[t.ID],
		}
		for s, h := range t.Durations {
			st.Durations[string(s)] = h
		}
		tasks = append(tasks, st)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	h, err := hashstructure.Hash(struct {
		Name  string
		Tasks []snapshotTask
	}{p.Name, tasks}, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, fmt.Errorf("hashing project: %w", err)
	}
	return h, nil
}

// HashString returns Hash formatted as 16 hex digits.
func (p *Project) HashString() (string, error) {
	h, err := p.Hash()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h), nil
}
