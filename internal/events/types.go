package events

import (
	"time"
)

// Event is the base interface for all events.
type Event interface {
	EventType() string
	ProjectName() string
}

// Topic constants
const (
	TopicSolve   = "solve"
	TopicProject = "project"
)

// Event type constants
const (
	EventTypeSolveStarted      = "solve.started"
	EventTypeSolveCompleted    = "solve.completed"
	EventTypeSolveFailed       = "solve.failed"
	EventTypeSolveEscalated    = "solve.escalated"
	EventTypeProjectLoaded     = "project.loaded"
	EventTypeDurationEdited    = "project.duration_edited"
	EventTypeSensitivityResult = "solve.sensitivity"
)

// SolveStartedEvent is published before a scenario is solved.
type SolveStartedEvent struct {
	RunID     string
	Project   string
	Scenario  string
	Tasks     int
	Timestamp time.Time
}

func (e SolveStartedEvent) EventType() string   { return EventTypeSolveStarted }
func (e SolveStartedEvent) ProjectName() string { return e.Project }

// SolveCompletedEvent is published when a scenario solves successfully.
type SolveCompletedEvent struct {
	RunID        string
	Project      string
	Scenario     string
	Makespan     float64
	CriticalPath []string
	Elapsed      time.Duration
	Timestamp    time.Time
}

func (e SolveCompletedEvent) EventType() string   { return EventTypeSolveCompleted }
func (e SolveCompletedEvent) ProjectName() string { return e.Project }

// SolveFailedEvent is published when a scenario cannot be solved.
type SolveFailedEvent struct {
	RunID     string
	Project   string
	Scenario  string
	Err       error
	Elapsed   time.Duration
	Timestamp time.Time
}

func (e SolveFailedEvent) EventType() string   { return EventTypeSolveFailed }
func (e SolveFailedEvent) ProjectName() string { return e.Project }

// SolveEscalatedEvent is published when a solve ran out of steps and is
// retried with a larger budget.
type SolveEscalatedEvent struct {
	Project   string
	Scenario  string
	MaxSteps  int
	Timestamp time.Time
}

func (e SolveEscalatedEvent) EventType() string   { return EventTypeSolveEscalated }
func (e SolveEscalatedEvent) ProjectName() string { return e.Project }

// ProjectLoadedEvent is published when a project snapshot becomes current.
type ProjectLoadedEvent struct {
	Project   string
	Tasks     int
	Edges     int
	Hash      string
	Timestamp time.Time
}

func (e ProjectLoadedEvent) EventType() string   { return EventTypeProjectLoaded }
func (e ProjectLoadedEvent) ProjectName() string { return e.Project }

// DurationEditedEvent is published when a task duration is replaced,
// producing a new snapshot.
type DurationEditedEvent struct {
	Project   string
	TaskID    string
	Scenario  string
	Old       float64
	New       float64
	Timestamp time.Time
}

func (e DurationEditedEvent) EventType() string   { return EventTypeDurationEdited }
func (e DurationEditedEvent) ProjectName() string { return e.Project }

// SensitivityEvent reports the makespan change caused by one duration override.
type SensitivityEvent struct {
	Project   string
	TaskID    string
	Scenario  string
	Baseline  float64
	Adjusted  float64
	Timestamp time.Time
}

func (e SensitivityEvent) EventType() string   { return EventTypeSensitivityResult }
func (e SensitivityEvent) ProjectName() string { return e.Project }
