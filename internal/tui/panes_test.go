package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aristath/projplan/internal/events"
	"github.com/aristath/projplan/internal/project"
	"github.com/aristath/projplan/internal/scheduler"
)

func TestValidateHours(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"8", false},
		{" 2.5 ", false},
		{"0", false},
		{"-1", true},
		{"abc", true},
		{"", true},
		{"Inf", true},
		{"NaN", true},
	}
	for _, tt := range tests {
		err := validateHours(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateHours(%q) = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestEditPane_Submitted(t *testing.T) {
	var m EditPaneModel
	m.Open(project.Sample(), "D5", scheduler.ScenarioWorst)
	if m.hours != "18" || m.scenario != "worst" {
		t.Fatalf("prefill = %q/%q, want 18/worst", m.hours, m.scenario)
	}

	if _, ok := m.Submitted(); ok {
		t.Fatal("nothing submitted yet")
	}

	m.hours = "42"
	edit, err := m.edit()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.submitted = &edit

	got, ok := m.Submitted()
	if !ok || got != (DurationEdit{TaskID: "D5", Scenario: scheduler.ScenarioWorst, Hours: 42}) {
		t.Errorf("Submitted() = %+v, %v", got, ok)
	}
	if _, ok := m.Submitted(); ok {
		t.Error("Submitted should clear the edit")
	}
}

func TestEditPane_HiddenIgnoresInput(t *testing.T) {
	m := NewEditPaneModel()
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.IsVisible() {
		t.Error("hidden pane should ignore input")
	}
	if m.View() != "" {
		t.Error("hidden pane should render nothing")
	}
}

func TestScenarioPane_Events(t *testing.T) {
	m := NewScenarioPaneModel()

	m, _ = m.Update(events.SolveStartedEvent{Scenario: "best", Tasks: 15})
	if !m.states[scheduler.ScenarioBest].solving {
		t.Error("best should be solving")
	}

	m, _ = m.Update(events.SolveCompletedEvent{Scenario: "best", Makespan: 60})
	if got, ok := m.Makespan(scheduler.ScenarioBest); !ok || got != 60 {
		t.Errorf("best makespan = %g, %v", got, ok)
	}

	m, _ = m.Update(events.SolveFailedEvent{Scenario: "worst", Err: errors.New("missing duration")})
	if _, ok := m.Makespan(scheduler.ScenarioWorst); ok {
		t.Error("failed scenario should have no makespan")
	}
	if len(m.Activity()) != 3 {
		t.Errorf("activity = %v", m.Activity())
	}
}

func TestScenarioPane_ActivityIsBounded(t *testing.T) {
	m := NewScenarioPaneModel()
	for i := 0; i < maxActivity+10; i++ {
		m, _ = m.Update(events.SolveEscalatedEvent{Scenario: "expected", MaxSteps: i})
	}

	activity := m.Activity()
	if len(activity) != maxActivity {
		t.Fatalf("len = %d, want %d", len(activity), maxActivity)
	}
	if want := fmt.Sprintf("expected: retrying with %d steps", maxActivity+9); activity[len(activity)-1] != want {
		t.Errorf("last line = %q, want %q", activity[len(activity)-1], want)
	}
}

func TestTaskPane_SelectionFollowsID(t *testing.T) {
	m := NewTaskPaneModel()
	p := project.Sample()
	m.SetProject(p, nil, nil)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if got := m.SelectedTaskID(); got != "C" {
		t.Fatalf("selected = %q, want C", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	if got := m.SelectedTaskID(); got != "B" {
		t.Fatalf("selected = %q, want B", got)
	}

	next, err := p.WithDuration("B", scheduler.ScenarioBest, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.SetProject(next, nil, nil)
	if got := m.SelectedTaskID(); got != "B" {
		t.Errorf("selection after new snapshot = %q, want B", got)
	}
}

func TestSchedulePane_TableHeadlineOnce(t *testing.T) {
	g, ds, err := project.Sample().Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	r, err := scheduler.Solve(g, ds, "expected")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	m := NewSchedulePaneModel()
	m.SetSize(240, 80)
	m.SetResult(r, nil, nil)

	out := m.viewport.View()
	if n := strings.Count(out, "Critical tasks:"); n != 1 {
		t.Errorf("critical tasks line shown %d times:\n%s", n, out)
	}
}
