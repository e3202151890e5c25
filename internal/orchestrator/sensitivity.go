package orchestrator

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aristath/projplan/internal/events"
	"github.com/aristath/projplan/internal/scheduler"
)

// SensitivityResult is the makespan effect of changing one task duration.
type SensitivityResult struct {
	TaskID      string
	Scenario    string
	OldHours    float64
	NewHours    float64
	Baseline    float64 // makespan before the change
	Adjusted    float64 // makespan after the change
	WasCritical bool
}

// Delta returns Adjusted - Baseline.
func (s SensitivityResult) Delta() float64 {
	return s.Adjusted - s.Baseline
}

// Sensitivity re-solves prep with taskID's duration under scenario replaced
// by hours. The prepared snapshot is not modified.
func (r *ScenarioRunner) Sensitivity(ctx context.Context, prep *Prepared, taskID, scenario string, hours float64) (SensitivityResult, error) {
	s, err := scheduler.ParseScenario(scenario)
	if err != nil {
		return SensitivityResult{}, err
	}
	baseline, err := r.solver().SolveContext(ctx, prep.Graph, prep.Durations, scenario)
	if err != nil {
		return SensitivityResult{}, err
	}
	res, err := r.sensitivity(ctx, prep, baseline, taskID, s, hours)
	if err != nil {
		return SensitivityResult{}, err
	}

	r.config.Bus.Publish(events.TopicSolve, events.SensitivityEvent{
		Project:   prep.Project.Name,
		TaskID:    taskID,
		Scenario:  scenario,
		Baseline:  res.Baseline,
		Adjusted:  res.Adjusted,
		Timestamp: time.Now(),
	})
	return res, nil
}

// Sweep scales every task's duration under scenario by factor, one task at
// a time, and returns the results ordered by descending makespan delta and
// then task ID.
func (r *ScenarioRunner) Sweep(ctx context.Context, prep *Prepared, scenario string, factor float64) ([]SensitivityResult, error) {
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("sensitivity factor must be a finite, non-negative number, got %g", factor)
	}
	s, err := scheduler.ParseScenario(scenario)
	if err != nil {
		return nil, err
	}
	baseline, err := r.solver().SolveContext(ctx, prep.Graph, prep.Durations, scenario)
	if err != nil {
		return nil, err
	}

	ids := prep.Graph.IDs()
	results := make([]SensitivityResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			old, err := prep.Durations.Lookup(id, s)
			if err != nil {
				return err
			}
			res, err := r.sensitivity(gctx, prep, baseline, id, s, old*factor)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Delta() != results[j].Delta() {
			return results[i].Delta() > results[j].Delta()
		}
		return results[i].TaskID < results[j].TaskID
	})
	return results, nil
}

func (r *ScenarioRunner) sensitivity(ctx context.Context, prep *Prepared, baseline *scheduler.ScheduleResult, taskID string, s scheduler.Scenario, hours float64) (SensitivityResult, error) {
	if _, ok := prep.Graph.Task(taskID); !ok {
		return SensitivityResult{}, &scheduler.ScheduleError{Kind: scheduler.ErrInvalidTask, TaskID: taskID, Msg: "no such task in project"}
	}
	old, err := prep.Durations.Lookup(taskID, s)
	if err != nil {
		return SensitivityResult{}, err
	}
	ds, err := prep.Durations.WithOverride(taskID, s, hours)
	if err != nil {
		return SensitivityResult{}, err
	}
	adjusted, err := r.solver().SolveContext(ctx, prep.Graph, ds, string(s))
	if err != nil {
		return SensitivityResult{}, err
	}

	entry, _ := baseline.Entry(taskID)
	return SensitivityResult{
		TaskID:      taskID,
		Scenario:    string(s),
		OldHours:    old,
		NewHours:    hours,
		Baseline:    baseline.Makespan(),
		Adjusted:    adjusted.Makespan(),
		WasCritical: entry.Critical,
	}, nil
}

// solver returns the solver used for what-if solves.
func (r *ScenarioRunner) solver() scheduler.Solver {
	return scheduler.Solver{}
}
