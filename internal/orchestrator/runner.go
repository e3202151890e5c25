package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/projplan/internal/events"
	"github.com/aristath/projplan/internal/logging"
	"github.com/aristath/projplan/internal/persistence"
	"github.com/aristath/projplan/internal/project"
	"github.com/aristath/projplan/internal/scheduler"
)

// Outcome is the result of solving one scenario.
type Outcome struct {
	RunID    string
	Scenario string
	Result   *scheduler.ScheduleResult // nil when Err is set
	Budget   int                       // step budget of the final attempt (0 = unlimited)
	Elapsed  time.Duration
	Persist  error // store write failure; the result is still valid
	Err      error
}

// RunnerConfig configures the scenario runner.
type RunnerConfig struct {
	Concurrency        int               // Max scenarios solved at once (default 3)
	MaxSteps           int               // Initial step budget (0 = unlimited)
	EscalationAttempts uint64            // Budget doublings after a timeout
	Timeout            time.Duration     // Per-solve wall clock limit (0 = none)
	Bus                *events.EventBus  // Optional event bus (nil disables)
	Store              persistence.Store // Optional run history (nil disables)
	Logger             *logging.Logger   // Optional logger (nil discards)
	Retry              *RetryConfig      // Store write retry policy (nil = default)
}

// ScenarioRunner solves project scenarios concurrently. Every solve works on
// its own immutable snapshot, so outcomes never affect each other.
type ScenarioRunner struct {
	config  RunnerConfig
	breaker *gobreaker.CircuitBreaker
	retry   RetryConfig
	mu      sync.Mutex // serializes store writes
}

// NewScenarioRunner creates a new scenario runner.
func NewScenarioRunner(cfg RunnerConfig) *ScenarioRunner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	retry := DefaultRetryConfig()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}
	return &ScenarioRunner{
		config:  cfg,
		breaker: newStoreBreaker(cfg.Logger),
		retry:   retry,
	}
}

// Prepared is a validated project snapshot ready to be solved.
type Prepared struct {
	Project   *project.Project
	Graph     *scheduler.TaskGraph
	Durations *scheduler.DurationSet
	Hash      string
}

// Prepare validates p, records it in the store when one is configured and
// announces it on the bus.
func (r *ScenarioRunner) Prepare(ctx context.Context, p *project.Project) (*Prepared, error) {
	g, ds, err := p.Build()
	if err != nil {
		return nil, err
	}
	hash, err := p.HashString()
	if err != nil {
		return nil, err
	}
	prep := &Prepared{Project: p, Graph: g, Durations: ds, Hash: hash}

	logger := r.config.Logger.WithProject(p.Name)
	logger.Debug("project prepared", "tasks", g.Len(), "edges", g.EdgeCount(), "hash", hash)

	r.config.Bus.Publish(events.TopicProject, events.ProjectLoadedEvent{
		Project:   p.Name,
		Tasks:     g.Len(),
		Edges:     g.EdgeCount(),
		Hash:      hash,
		Timestamp: time.Now(),
	})

	if r.config.Store != nil {
		err := r.storeWrite(ctx, func(ctx context.Context) error {
			return r.config.Store.SaveProject(ctx, p)
		})
		if err != nil {
			logger.Warn("failed to save project", "error", err)
		}
	}
	return prep, nil
}

// Run solves the given scenarios of p concurrently. Outcomes are returned
// in the order of scenarios. A scenario that fails does not stop the others;
// its error is reported in its Outcome. The returned error is non-nil only
// when p is invalid or ctx is cancelled.
func (r *ScenarioRunner) Run(ctx context.Context, p *project.Project, scenarios []string) ([]Outcome, error) {
	prep, err := r.Prepare(ctx, p)
	if err != nil {
		return nil, err
	}
	return r.RunPrepared(ctx, prep, scenarios)
}

// RunPrepared is Run for an already prepared snapshot.
func (r *ScenarioRunner) RunPrepared(ctx context.Context, prep *Prepared, scenarios []string) ([]Outcome, error) {
	if len(scenarios) == 0 {
		for _, s := range scheduler.Scenarios {
			scenarios = append(scenarios, string(s))
		}
	}

	outcomes := make([]Outcome, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Concurrency)

	for i, scenario := range scenarios {
		i, scenario := i, scenario
		g.Go(func() error {
			outcomes[i] = r.solveOne(gctx, prep, scenario)
			// Scenario errors are tracked in outcomes, not returned here
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// Solve solves a single scenario and returns its result.
func (r *ScenarioRunner) Solve(ctx context.Context, p *project.Project, scenario string) (*scheduler.ScheduleResult, error) {
	outcomes, err := r.Run(ctx, p, []string{scenario})
	if err != nil {
		return nil, err
	}
	return outcomes[0].Result, outcomes[0].Err
}

func (r *ScenarioRunner) solveOne(ctx context.Context, prep *Prepared, scenario string) Outcome {
	name := prep.Project.Name
	logger := r.config.Logger.WithProject(name).WithScenario(scenario)
	out := Outcome{RunID: uuid.NewString(), Scenario: scenario}
	start := time.Now()

	r.config.Bus.Publish(events.TopicSolve, events.SolveStartedEvent{
		RunID:     out.RunID,
		Project:   name,
		Scenario:  scenario,
		Tasks:     prep.Graph.Len(),
		Timestamp: start,
	})

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	solver := scheduler.Solver{MaxSteps: r.config.MaxSteps}
	result, budget, err := solver.SolveWithEscalation(ctx, prep.Graph, prep.Durations, scenario, r.config.EscalationAttempts)
	out.Elapsed = time.Since(start)
	out.Budget = budget

	if budget > r.config.MaxSteps && r.config.MaxSteps > 0 {
		logger.Info("step budget escalated", "from", r.config.MaxSteps, "to", budget)
		r.config.Bus.Publish(events.TopicSolve, events.SolveEscalatedEvent{
			Project:   name,
			Scenario:  scenario,
			MaxSteps:  budget,
			Timestamp: time.Now(),
		})
	}

	if err != nil {
		out.Err = fmt.Errorf("scenario %s: %w", scenario, err)
		logger.Error("solve failed", "error", err, "elapsed", out.Elapsed)
		r.config.Bus.Publish(events.TopicSolve, events.SolveFailedEvent{
			RunID:     out.RunID,
			Project:   name,
			Scenario:  scenario,
			Err:       err,
			Elapsed:   out.Elapsed,
			Timestamp: time.Now(),
		})
		return out
	}

	out.Result = result
	logger.Info("solve completed", "makespan", result.Makespan(), "elapsed", out.Elapsed)
	r.config.Bus.Publish(events.TopicSolve, events.SolveCompletedEvent{
		RunID:        out.RunID,
		Project:      name,
		Scenario:     scenario,
		Makespan:     result.Makespan(),
		CriticalPath: result.CriticalPath(),
		Elapsed:      out.Elapsed,
		Timestamp:    time.Now(),
	})

	if r.config.Store != nil {
		run := persistence.NewRun(name, prep.Hash, result)
		run.ID = out.RunID
		out.Persist = r.storeWrite(ctx, func(ctx context.Context) error {
			return r.config.Store.SaveRun(ctx, run)
		})
		if out.Persist != nil {
			logger.Warn("failed to save run", "run_id", out.RunID, "error", out.Persist)
		}
	}
	return out
}

func (r *ScenarioRunner) storeWrite(ctx context.Context, write func(context.Context) error) error {
	// SQLite allows one writer; queue here instead of contending for the lock
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeWithRetry(ctx, r.breaker, r.retry, write)
}

// Failed returns the outcomes that carry an error.
func Failed(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// FirstError returns the first outcome error, or nil.
func FirstError(outcomes []Outcome) error {
	for _, o := range outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}

// IsTimeout reports whether err is a solve budget or deadline failure.
func IsTimeout(err error) bool {
	return errors.Is(err, scheduler.ErrSolveTimedOut)
}
