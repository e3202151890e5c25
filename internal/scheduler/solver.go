package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// slackEpsilon absorbs floating point noise when classifying critical tasks.
const slackEpsilon = 1e-9

// ctxCheckInterval is how many steps pass between context checks.
const ctxCheckInterval = 1024

// Solver computes minimum-makespan schedules with a forward topological sweep.
// The zero value has no step budget.
type Solver struct {
	// MaxSteps bounds the node and edge visits of the forward sweep.
	// Zero means unlimited.
	MaxSteps int
}

// Solve schedules graph under the named scenario with an unlimited budget.
func Solve(g *TaskGraph, ds *DurationSet, scenario string) (*ScheduleResult, error) {
	return Solver{}.SolveContext(context.Background(), g, ds, scenario)
}

// RequiredSteps returns the budget a forward sweep of g consumes.
func RequiredSteps(g *TaskGraph) int {
	return g.Len() + g.EdgeCount()
}

// Solve schedules graph under the named scenario.
func (s Solver) Solve(g *TaskGraph, ds *DurationSet, scenario string) (*ScheduleResult, error) {
	return s.SolveContext(context.Background(), g, ds, scenario)
}

// SolveContext schedules graph under the named scenario.
//
// Every duration is resolved before the sweep starts, so an unknown scenario
// or a missing duration fails without producing any schedule. Exceeding
// MaxSteps or the context's deadline fails with ErrSolveTimedOut.
// The inputs are never modified.
func (s Solver) SolveContext(ctx context.Context, g *TaskGraph, ds *DurationSet, scenario string) (*ScheduleResult, error) {
	if g == nil || ds == nil {
		return nil, internalf("solve called with nil graph or duration set")
	}

	sc, err := ParseScenario(scenario)
	if err != nil {
		return nil, err
	}

	durations, err := ds.Resolve(g.ids, sc)
	if err != nil {
		var se *ScheduleError
		if errors.As(err, &se) {
			se.Scenario = scenario
		}
		return nil, err
	}

	b := budget{ctx: ctx, max: s.MaxSteps, scenario: scenario}
	if err := b.check(); err != nil {
		return nil, err
	}

	result := &ScheduleResult{
		scenario: sc,
		status:   StatusOptimal,
		entries:  make(map[string]Entry, len(g.ids)),
		topo:     g.order,
	}

	// Forward pass: earliest start is the latest predecessor finish
	for _, id := range g.order {
		preds := g.predecessors[id]
		if err := b.spend(1 + len(preds)); err != nil {
			return nil, err
		}

		start := 0.0
		for _, predID := range preds {
			if f := result.entries[predID].Finish; f > start {
				start = f
			}
		}

		d := durations[id]
		result.entries[id] = Entry{
			TaskID:      id,
			Description: g.tasks[id].Description,
			Start:       start,
			Finish:      start + d,
			Duration:    d,
		}
		if start+d > result.makespan {
			result.makespan = start + d
		}
	}

	// Backward pass: latest finish is the earliest successor latest start
	for i := len(g.order) - 1; i >= 0; i-- {
		id := g.order[i]
		e := result.entries[id]

		lf := result.makespan
		for _, succID := range g.successors[id] {
			if ls := result.entries[succID].LatestStart; ls < lf {
				lf = ls
			}
		}

		e.LatestFinish = lf
		e.LatestStart = lf - e.Duration
		e.Slack = e.LatestStart - e.Start
		if e.Slack < slackEpsilon {
			e.Slack = math.Max(0, e.Slack)
			e.Critical = true
		}
		result.entries[id] = e
	}

	if err := Check(g, ds, result); err != nil {
		return nil, err
	}

	return result, nil
}

// Check verifies result against the constraint system of the schedule:
//
//	finish(t) = start(t) + duration(t)   for every task t
//	start(t) >= finish(p)                for every predecessor p of t
//	start(t) >= 0
//	makespan = max finish(t)
//
// A violation means the solver or the graph validation is broken and is
// reported as ErrInternal.
func Check(g *TaskGraph, ds *DurationSet, result *ScheduleResult) error {
	if result.Len() != g.Len() {
		return internalf("schedule has %d entries for %d tasks", result.Len(), g.Len())
	}

	tol := slackEpsilon * math.Max(1, result.makespan)
	maxFinish := 0.0

	for _, id := range g.ids {
		e, ok := result.entries[id]
		if !ok {
			return internalf("task %q is not scheduled", id)
		}

		d, err := ds.Lookup(id, result.scenario)
		if err != nil {
			return err
		}
		if e.Start < 0 {
			return internalf("task %q starts at %g", id, e.Start)
		}
		if math.Abs(e.Finish-(e.Start+d)) > tol {
			return internalf("task %q finish %g != start %g + duration %g", id, e.Finish, e.Start, d)
		}
		for _, predID := range g.predecessors[id] {
			if p := result.entries[predID]; e.Start+tol < p.Finish {
				return internalf("task %q starts at %g before predecessor %q finishes at %g", id, e.Start, predID, p.Finish)
			}
		}
		maxFinish = math.Max(maxFinish, e.Finish)
	}

	if math.Abs(maxFinish-result.makespan) > tol {
		return internalf("makespan %g != latest finish %g", result.makespan, maxFinish)
	}
	return nil
}

// budget counts sweep steps against an optional cap and the context.
type budget struct {
	ctx      context.Context
	max      int
	used     int
	scenario string
}

func (b *budget) spend(n int) error {
	before := b.used
	b.used += n
	if b.max > 0 && b.used > b.max {
		return &ScheduleError{Kind: ErrSolveTimedOut, Scenario: b.scenario, Msg: fmt.Sprintf("exceeded step budget of %d", b.max)}
	}
	if before/ctxCheckInterval != b.used/ctxCheckInterval {
		return b.check()
	}
	return nil
}

func (b *budget) check() error {
	if b.ctx == nil {
		return nil
	}
	if err := b.ctx.Err(); err != nil {
		return &ScheduleError{Kind: ErrSolveTimedOut, Scenario: b.scenario, Msg: err.Error()}
	}
	return nil
}
