package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aristath/projplan/internal/events"
	"github.com/aristath/projplan/internal/orchestrator"
	"github.com/aristath/projplan/internal/project"
	"github.com/aristath/projplan/internal/scheduler"
)

func newTestModel(t *testing.T) (Model, *orchestrator.ScenarioRunner) {
	t.Helper()
	bus := events.NewEventBus()
	t.Cleanup(bus.Close)

	runner := orchestrator.NewScenarioRunner(orchestrator.RunnerConfig{Bus: bus})
	m := New(context.Background(), Options{
		Runner:  runner,
		Bus:     bus,
		Project: project.Sample(),
		Rates:   map[string]float64{"projectManager": 150},
	})
	return m, runner
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case KeyTab:
		return tea.KeyMsg{Type: tea.KeyTab}
	case KeyEsc:
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// update feeds msg to m and returns the resulting Model.
func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

// solved runs the initial solve synchronously and applies it.
func solved(t *testing.T, m Model, runner *orchestrator.ScenarioRunner) Model {
	t.Helper()
	msg := solveCmd(context.Background(), runner, m.Project())()
	m, _ = update(t, m, msg)
	return m
}

func TestModel_SolvesAllScenarios(t *testing.T) {
	m, runner := newTestModel(t)
	m = solved(t, m, runner)

	want := map[scheduler.Scenario]float64{
		scheduler.ScenarioBest:     60,
		scheduler.ScenarioExpected: 114,
		scheduler.ScenarioWorst:    181,
	}
	for s, makespan := range want {
		r := m.Result(s)
		if r == nil {
			t.Fatalf("no result for %s", s)
		}
		if r.Makespan() != makespan {
			t.Errorf("%s makespan = %g, want %g", s, r.Makespan(), makespan)
		}
		if got, ok := m.scenarioPane.Makespan(s); !ok || got != makespan {
			t.Errorf("scenario pane %s = %g, %v", s, got, ok)
		}
	}
	if m.solving {
		t.Error("solving flag should be cleared")
	}
}

func TestModel_ScenarioKeys(t *testing.T) {
	m, runner := newTestModel(t)
	m = solved(t, m, runner)

	if m.Scenario() != scheduler.ScenarioExpected {
		t.Fatalf("default scenario = %s", m.Scenario())
	}

	tests := []struct {
		key  string
		want scheduler.Scenario
	}{
		{KeyWorst, scheduler.ScenarioWorst},
		{KeyBest, scheduler.ScenarioBest},
		{KeyExpected, scheduler.ScenarioExpected},
	}
	for _, tt := range tests {
		m, _ = update(t, m, keyMsg(tt.key))
		if m.Scenario() != tt.want {
			t.Errorf("after %q scenario = %s, want %s", tt.key, m.Scenario(), tt.want)
		}
		if m.schedulePane.result != m.Result(tt.want) {
			t.Errorf("after %q schedule pane shows a different result", tt.key)
		}
	}
}

func TestModel_FocusCycles(t *testing.T) {
	m, _ := newTestModel(t)

	for _, want := range []PaneID{PaneSchedule, PaneScenarios, PaneTasks} {
		m, _ = update(t, m, keyMsg(KeyTab))
		if m.focusedPane != want {
			t.Errorf("focus = %d, want %d", m.focusedPane, want)
		}
	}
	if !m.taskPane.focused || m.schedulePane.focused || m.scenarioPane.focused {
		t.Error("only the task pane should be focused")
	}
}

func TestModel_EditResolves(t *testing.T) {
	m, runner := newTestModel(t)
	m = solved(t, m, runner)
	before := m.Project()

	cmd := m.applyEdit(DurationEdit{TaskID: "D6", Scenario: scheduler.ScenarioExpected, Hours: 34})
	if cmd == nil {
		t.Fatal("expected a solve command")
	}
	if m.Project() == before {
		t.Fatal("edit should produce a new snapshot")
	}
	if h := before.Tasks[8].Durations[scheduler.ScenarioExpected]; h != 24 {
		t.Errorf("previous snapshot changed: D6 = %g", h)
	}

	m, _ = update(t, m, cmd())
	if got := m.Result(scheduler.ScenarioExpected).Makespan(); got != 124 {
		t.Errorf("expected makespan after edit = %g, want 124", got)
	}
	if got := m.Result(scheduler.ScenarioBest).Makespan(); got != 60 {
		t.Errorf("best makespan should not change, got %g", got)
	}
}

func TestModel_IgnoresStaleSolve(t *testing.T) {
	m, runner := newTestModel(t)
	stale := solveCmd(context.Background(), runner, m.Project())()

	cmd := m.applyEdit(DurationEdit{TaskID: "D6", Scenario: scheduler.ScenarioExpected, Hours: 34})
	m, _ = update(t, m, stale)
	if m.Result(scheduler.ScenarioExpected) != nil {
		t.Fatal("result for a replaced snapshot should be ignored")
	}

	m, _ = update(t, m, cmd())
	if got := m.Result(scheduler.ScenarioExpected).Makespan(); got != 124 {
		t.Errorf("makespan = %g, want 124", got)
	}
}

func TestModel_InvalidEditKeepsSnapshot(t *testing.T) {
	m, _ := newTestModel(t)
	before := m.Project()

	if cmd := m.applyEdit(DurationEdit{TaskID: "ZZ", Scenario: scheduler.ScenarioBest, Hours: 1}); cmd != nil {
		t.Error("invalid edit should not solve")
	}
	if !errors.Is(m.err, scheduler.ErrInvalidTask) {
		t.Errorf("err = %v, want ErrInvalidTask", m.err)
	}
	if m.Project() != before {
		t.Error("snapshot should be unchanged")
	}
}

func TestModel_EditKeyOpensForm(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = update(t, m, keyMsg(KeyEdit))
	if !m.showEdit || !m.editPane.IsVisible() {
		t.Fatal("edit form should be open")
	}
	if m.editPane.taskID != "A" || m.editPane.hours != "8" {
		t.Errorf("form prefilled with %q/%q, want A/8", m.editPane.taskID, m.editPane.hours)
	}

	// Scenario keys go to the form while it is open
	m, _ = update(t, m, keyMsg(KeyWorst))
	if m.Scenario() != scheduler.ScenarioExpected {
		t.Error("scenario changed while editing")
	}

	m, _ = update(t, m, keyMsg(KeyEsc))
	if m.showEdit {
		t.Error("esc should close the form")
	}
}

func TestModel_SolveFailure(t *testing.T) {
	m, _ := newTestModel(t)
	failure := errors.New("boom")

	m, _ = update(t, m, solvedMsg{err: failure})
	if !errors.Is(m.err, failure) {
		t.Errorf("err = %v", m.err)
	}
	if !errors.Is(m.schedulePane.err, failure) {
		t.Errorf("schedule pane err = %v", m.schedulePane.err)
	}
}

func TestModel_EventsKeepListening(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := update(t, m, events.SolveCompletedEvent{Scenario: "worst", Makespan: 181, Elapsed: time.Millisecond})
	if cmd == nil {
		t.Error("expected a command waiting for the next event")
	}
	if got, ok := m.scenarioPane.Makespan(scheduler.ScenarioWorst); !ok || got != 181 {
		t.Errorf("worst makespan = %g, %v", got, ok)
	}
}

func TestModel_View(t *testing.T) {
	m, runner := newTestModel(t)
	if got := m.View(); got != "Initializing..." {
		t.Errorf("view before sizing = %q", got)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})
	m = solved(t, m, runner)

	view := m.View()
	for _, want := range []string{"Tasks", "Scenarios", "Expected", "q: quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = update(t, m, keyMsg(KeyGantt))
	if !m.schedulePane.ShowingGantt() {
		t.Error("g should switch to the Gantt view")
	}

	m, _ = update(t, m, keyMsg(KeyQuit))
	if got := m.View(); got != "Goodbye!\n" {
		t.Errorf("view after quit = %q", got)
	}
}
