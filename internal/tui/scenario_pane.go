package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/projplan/internal/events"
	"github.com/aristath/projplan/internal/report"
	"github.com/aristath/projplan/internal/scheduler"
)

const maxActivity = 50

// scenarioState is what the pane knows about one scenario.
type scenarioState struct {
	solving  bool
	makespan float64
	solved   bool
	err      error
}

// ScenarioPaneModel compares makespans across scenarios and lists recent
// solver activity.
type ScenarioPaneModel struct {
	states   map[scheduler.Scenario]*scenarioState
	current  scheduler.Scenario
	activity []string
	width    int
	height   int
	focused  bool
}

// NewScenarioPaneModel creates a new scenario pane model.
func NewScenarioPaneModel() ScenarioPaneModel {
	states := make(map[scheduler.Scenario]*scenarioState, len(scheduler.Scenarios))
	for _, s := range scheduler.Scenarios {
		states[s] = &scenarioState{}
	}
	return ScenarioPaneModel{
		states:  states,
		current: scheduler.ScenarioExpected,
	}
}

// Update handles messages for the scenario pane.
func (m ScenarioPaneModel) Update(msg tea.Msg) (ScenarioPaneModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case events.SolveStartedEvent:
		if st := m.state(msg.Scenario); st != nil {
			st.solving = true
		}
		m.log(fmt.Sprintf("%s: solving %d tasks", msg.Scenario, msg.Tasks))

	case events.SolveCompletedEvent:
		if st := m.state(msg.Scenario); st != nil {
			st.solving = false
			st.solved = true
			st.makespan = msg.Makespan
			st.err = nil
		}
		m.log(fmt.Sprintf("%s: makespan %s in %v", msg.Scenario, report.Hours(msg.Makespan), msg.Elapsed.Round(time.Microsecond)))

	case events.SolveFailedEvent:
		if st := m.state(msg.Scenario); st != nil {
			st.solving = false
			st.solved = false
			st.err = msg.Err
		}
		m.log(fmt.Sprintf("%s: failed: %v", msg.Scenario, msg.Err))

	case events.SolveEscalatedEvent:
		m.log(fmt.Sprintf("%s: retrying with %d steps", msg.Scenario, msg.MaxSteps))

	case events.DurationEditedEvent:
		m.log(fmt.Sprintf("%s %s: %s -> %s hours", msg.TaskID, msg.Scenario, report.Hours(msg.Old), report.Hours(msg.New)))

	case events.ProjectLoadedEvent:
		m.log(fmt.Sprintf("loaded %s: %d tasks, %d edges", msg.Project, msg.Tasks, msg.Edges))
	}

	return m, nil
}

func (m ScenarioPaneModel) state(name string) *scenarioState {
	s, err := scheduler.ParseScenario(name)
	if err != nil {
		return nil
	}
	return m.states[s]
}

func (m *ScenarioPaneModel) log(line string) {
	m.activity = append(m.activity, line)
	if len(m.activity) > maxActivity {
		m.activity = m.activity[len(m.activity)-maxActivity:]
	}
}

// SetCurrent marks the scenario being displayed.
func (m *ScenarioPaneModel) SetCurrent(s scheduler.Scenario) {
	m.current = s
}

// SetOutcome records a solve result that arrived outside the event stream.
func (m *ScenarioPaneModel) SetOutcome(s scheduler.Scenario, r *scheduler.ScheduleResult, err error) {
	st, ok := m.states[s]
	if !ok {
		return
	}
	st.solving = false
	st.err = err
	st.solved = r != nil
	if r != nil {
		st.makespan = r.Makespan()
	}
}

// Makespan returns the last known makespan of s.
func (m ScenarioPaneModel) Makespan(s scheduler.Scenario) (float64, bool) {
	st, ok := m.states[s]
	if !ok || !st.solved {
		return 0, false
	}
	return st.makespan, true
}

// Activity returns the recent activity lines, oldest first.
func (m ScenarioPaneModel) Activity() []string {
	return append([]string(nil), m.activity...)
}

// View renders the scenario pane.
func (m ScenarioPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := StyleTitle.Render("Scenarios")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", lipgloss.Width(title)))
	b.WriteString("\n\n")

	longest := 0.0
	for _, st := range m.states {
		if st.solved {
			longest = max(longest, st.makespan)
		}
	}
	barWidth := min(m.width-30, 40)

	for _, s := range scheduler.Scenarios {
		st := m.states[s]
		marker := " "
		if s == m.current {
			marker = ">"
		}

		var value, bar string
		switch {
		case st.solving:
			value = StyleSolving.Render("solving")
		case st.err != nil:
			value = StyleFailed.Render("failed")
		case st.solved:
			value = report.Hours(st.makespan) + " h"
			if longest > 0 && barWidth > 0 {
				n := int(st.makespan / longest * float64(barWidth))
				bar = StyleSlack.Render(strings.Repeat("=", max(0, n)))
			}
		default:
			value = StyleMuted.Render("pending")
		}

		b.WriteString(fmt.Sprintf("%s %-9s %-10s %s\n", marker, s.Title(), value, bar))
	}

	b.WriteString("\n")

	// Only the most recent lines fit below the summary
	room := m.height - 2 - strings.Count(b.String(), "\n") - 1
	start := 0
	if room > 0 && len(m.activity) > room {
		start = len(m.activity) - room
	}
	if room > 0 {
		for _, line := range m.activity[start:] {
			b.WriteString(StyleMuted.Render(line))
			b.WriteString("\n")
		}
	}

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(b.String())
}

// SetSize updates the pane dimensions.
func (m *ScenarioPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused updates the focus state.
func (m *ScenarioPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
