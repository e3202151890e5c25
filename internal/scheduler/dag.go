package scheduler

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/gammazero/toposort"
)

// TaskGraph is a validated, immutable directed acyclic graph of tasks.
// Edges run from predecessor to dependent.
type TaskGraph struct {
	tasks        map[string]Task
	ids          []string            // sorted task IDs
	predecessors map[string][]string // taskID -> sorted immediate predecessors
	successors   map[string][]string // taskID -> sorted immediate dependents
	order        []string            // deterministic topological order
	edges        int
}

// BuildGraph validates tasks and precedence edges and returns the graph.
//
// Fails with ErrInvalidTask for an empty ID, ErrDuplicateTask for a repeated
// ID, ErrUnknownPredecessor when an edge names a task that is not in tasks,
// and ErrCycleDetected when the precedence relation is not acyclic.
func BuildGraph(tasks []Task, preds PrecedenceMap) (*TaskGraph, error) {
	g := &TaskGraph{
		tasks:        make(map[string]Task, len(tasks)),
		ids:          make([]string, 0, len(tasks)),
		predecessors: make(map[string][]string, len(tasks)),
		successors:   make(map[string][]string, len(tasks)),
	}

	for _, task := range tasks {
		if task.ID == "" {
			return nil, &ScheduleError{Kind: ErrInvalidTask, Msg: "empty task id"}
		}
		if _, exists := g.tasks[task.ID]; exists {
			return nil, &ScheduleError{Kind: ErrDuplicateTask, TaskID: task.ID}
		}
		g.tasks[task.ID] = cloneTask(task)
		g.ids = append(g.ids, task.ID)
	}
	sort.Strings(g.ids)

	// Walk the map in sorted key order so the first reported error is stable.
	keys := make([]string, 0, len(preds))
	for id := range preds {
		keys = append(keys, id)
	}
	sort.Strings(keys)

	for _, id := range keys {
		if _, ok := g.tasks[id]; !ok {
			if len(preds[id]) == 0 {
				continue
			}
			return nil, &ScheduleError{Kind: ErrUnknownPredecessor, TaskID: id, Msg: "predecessors listed for a task that does not exist"}
		}

		seen := make(map[string]bool, len(preds[id]))
		for _, predID := range preds[id] {
			if _, ok := g.tasks[predID]; !ok {
				return nil, &ScheduleError{Kind: ErrUnknownPredecessor, TaskID: id, Ref: predID}
			}
			if seen[predID] {
				continue
			}
			seen[predID] = true
			g.predecessors[id] = append(g.predecessors[id], predID)
			g.successors[predID] = append(g.successors[predID], id)
			g.edges++
		}
	}

	for k := range g.predecessors {
		sort.Strings(g.predecessors[k])
	}
	for k := range g.successors {
		sort.Strings(g.successors[k])
	}

	if err := g.validateAcyclic(); err != nil {
		return nil, err
	}

	g.order = g.kahnOrder()
	if len(g.order) != len(g.ids) {
		if path := g.findCycle(); path != nil {
			return nil, cycleError(path)
		}
		return nil, internalf("topological order covers %d of %d tasks", len(g.order), len(g.ids))
	}

	return g, nil
}

// validateAcyclic proves the graph has no cycles with a topological sort.
// On failure it extracts one deterministic cycle path for the error.
func (g *TaskGraph) validateAcyclic() error {
	var edges []toposort.Edge
	for _, id := range g.ids {
		preds := g.predecessors[id]
		if len(preds) == 0 {
			// Roots need an edge from nil to be part of the sort
			edges = append(edges, toposort.Edge{nil, id})
			continue
		}
		for _, predID := range preds {
			edges = append(edges, toposort.Edge{predID, id})
		}
	}

	if _, err := toposort.Toposort(edges); err != nil {
		if path := g.findCycle(); path != nil {
			return cycleError(path)
		}
		return &ScheduleError{Kind: ErrCycleDetected, Msg: err.Error()}
	}
	return nil
}

// findCycle runs a DFS over sorted IDs and returns the first cycle found as
// a path that starts and ends on the same task, or nil if there is none.
func (g *TaskGraph) findCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(g.ids))
	parent := make(map[string]string, len(g.ids))
	var cycle []string

	var dfs func(node string) bool
	dfs = func(node string) bool {
		color[node] = gray
		for _, next := range g.successors[node] {
			switch color[next] {
			case white:
				parent[next] = node
				if dfs(next) {
					return true
				}
			case gray:
				// Back edge node -> next; walk parents back to next
				path := []string{next}
				for cur := node; cur != next; cur = parent[cur] {
					path = append(path, cur)
				}
				path = append(path, next)
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				cycle = path
				return true
			}
		}
		color[node] = black
		return false
	}

	for _, id := range g.ids {
		if color[id] == white && dfs(id) {
			return cycle
		}
	}
	return nil
}

type idHeap []string

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)        { *h = append(*h, x.(string)) }
func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// kahnOrder returns the topological order with ties broken by ascending ID.
func (g *TaskGraph) kahnOrder() []string {
	indeg := make(map[string]int, len(g.ids))
	ready := &idHeap{}
	for _, id := range g.ids {
		indeg[id] = len(g.predecessors[id])
		if indeg[id] == 0 {
			*ready = append(*ready, id)
		}
	}
	heap.Init(ready)

	order := make([]string, 0, len(g.ids))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(string)
		order = append(order, id)
		for _, succ := range g.successors[id] {
			indeg[succ]--
			if indeg[succ] == 0 {
				heap.Push(ready, succ)
			}
		}
	}
	return order
}

// TopologicalOrder returns task IDs such that every predecessor precedes its
// dependents. Ties are broken by ascending ID.
func (g *TaskGraph) TopologicalOrder() []string {
	return append([]string(nil), g.order...)
}

// PredecessorsOf returns the sorted immediate predecessors of taskID.
// The result is empty (never nil) for a task without predecessors.
func (g *TaskGraph) PredecessorsOf(taskID string) []string {
	return append([]string{}, g.predecessors[taskID]...)
}

// SuccessorsOf returns the sorted immediate dependents of taskID.
func (g *TaskGraph) SuccessorsOf(taskID string) []string {
	return append([]string{}, g.successors[taskID]...)
}

// Task returns a copy of the task with the given ID.
func (g *TaskGraph) Task(taskID string) (Task, bool) {
	task, ok := g.tasks[taskID]
	if !ok {
		return Task{}, false
	}
	return cloneTask(task), true
}

// Tasks returns copies of all tasks sorted by ID.
func (g *TaskGraph) Tasks() []Task {
	tasks := make([]Task, 0, len(g.ids))
	for _, id := range g.ids {
		tasks = append(tasks, cloneTask(g.tasks[id]))
	}
	return tasks
}

// IDs returns all task IDs in ascending order.
func (g *TaskGraph) IDs() []string {
	return append([]string(nil), g.ids...)
}

// Len returns the number of tasks.
func (g *TaskGraph) Len() int {
	return len(g.ids)
}

// EdgeCount returns the number of distinct precedence edges.
func (g *TaskGraph) EdgeCount() int {
	return g.edges
}

// Precedences returns a copy of the precedence map, including an empty entry
// for every task.
func (g *TaskGraph) Precedences() PrecedenceMap {
	m := make(PrecedenceMap, len(g.ids))
	for _, id := range g.ids {
		m[id] = g.PredecessorsOf(id)
	}
	return m
}

func (g *TaskGraph) String() string {
	return fmt.Sprintf("TaskGraph(%d tasks, %d edges)", len(g.ids), g.edges)
}
