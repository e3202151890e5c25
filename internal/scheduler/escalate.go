package scheduler

import (
	"context"
	"errors"
	"math"

	"github.com/cenkalti/backoff/v4"
)

// SolveWithEscalation solves like SolveContext but, when the step budget runs
// out, retries up to attempts more times with the budget doubled each time.
// Any other error, an unlimited budget, or a done context stops immediately.
// It returns the budget of the last attempt.
func (s Solver) SolveWithEscalation(ctx context.Context, g *TaskGraph, ds *DurationSet, scenario string, attempts uint64) (*ScheduleResult, int, error) {
	current := s
	last := s.MaxSteps
	var result *ScheduleResult

	operation := func() error {
		last = current.MaxSteps
		r, err := current.SolveContext(ctx, g, ds, scenario)
		if err == nil {
			result = r
			return nil
		}

		if !errors.Is(err, ErrSolveTimedOut) || current.MaxSteps == 0 || ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		current.MaxSteps = doubleBudget(current.MaxSteps)
		return err
	}

	// Retrying a deterministic sweep needs no delay, only a bigger budget
	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, attempts), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, last, err
	}
	return result, last, nil
}

// doubleBudget doubles n, saturating at math.MaxInt.
func doubleBudget(n int) int {
	if n > math.MaxInt/2 {
		return math.MaxInt
	}
	return n * 2
}
