package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Match them with errors.Is; use errors.As with *ScheduleError
// to get at the offending identifiers.
var (
	ErrInvalidTask        = errors.New("invalid task")
	ErrDuplicateTask      = errors.New("duplicate task")
	ErrUnknownPredecessor = errors.New("unknown predecessor reference")
	ErrCycleDetected      = errors.New("cycle detected")
	ErrUnknownScenario    = errors.New("unknown scenario")
	ErrMissingDuration    = errors.New("missing duration for scenario")
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrSolveTimedOut      = errors.New("solve timed out")
	ErrInternal           = errors.New("internal scheduling error")
)

// ScheduleError carries the error kind plus the identifiers a caller needs
// to point the user at the bad input.
type ScheduleError struct {
	Kind     error
	TaskID   string   // task the error is about, if any
	Ref      string   // referenced id (unknown predecessor)
	Scenario string   // scenario name as given by the caller
	Path     []string // cycle witness
	Msg      string
}

func (e *ScheduleError) Error() string {
	if e == nil {
		return ""
	}

	var parts []string
	if e.TaskID != "" {
		parts = append(parts, fmt.Sprintf("task %q", e.TaskID))
	}
	if e.Ref != "" {
		parts = append(parts, fmt.Sprintf("references %q", e.Ref))
	}
	if e.Scenario != "" {
		parts = append(parts, fmt.Sprintf("scenario %q", e.Scenario))
	}
	if len(e.Path) > 0 {
		parts = append(parts, strings.Join(e.Path, " -> "))
	}
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}

	if len(parts) == 0 {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), strings.Join(parts, ", "))
}

func (e *ScheduleError) Unwrap() error { return e.Kind }

func cycleError(path []string) error {
	return &ScheduleError{Kind: ErrCycleDetected, Path: path}
}

func internalf(format string, args ...any) error {
	return &ScheduleError{Kind: ErrInternal, Msg: fmt.Sprintf(format, args...)}
}
