// Package tui is the interactive terminal view of a project: the task list,
// the schedule of the selected scenario, a comparison of all scenarios and a
// form for editing durations that re-solves on submit.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/projplan/internal/events"
	"github.com/aristath/projplan/internal/orchestrator"
	"github.com/aristath/projplan/internal/project"
	"github.com/aristath/projplan/internal/scheduler"
)

// PaneID identifies which pane is focused.
type PaneID int

const (
	PaneTasks PaneID = iota
	PaneSchedule
	PaneScenarios
)

const paneCount = 3

// solvedMsg carries the outcome of solving every scenario of a snapshot.
type solvedMsg struct {
	prep     *orchestrator.Prepared
	outcomes []orchestrator.Outcome
	err      error
}

// Options configures the TUI model.
type Options struct {
	Runner   *orchestrator.ScenarioRunner
	Bus      *events.EventBus // must be the runner's bus to see solve activity
	Project  *project.Project
	Rates    map[string]float64
	Scenario scheduler.Scenario
}

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	ctx          context.Context
	runner       *orchestrator.ScenarioRunner
	bus          *events.EventBus
	project      *project.Project
	prep         *orchestrator.Prepared
	rates        map[string]float64
	costs        *project.CostSummary
	scenario     scheduler.Scenario
	results      map[scheduler.Scenario]*scheduler.ScheduleResult
	errs         map[scheduler.Scenario]error
	taskPane     TaskPaneModel
	schedulePane SchedulePaneModel
	scenarioPane ScenarioPaneModel
	editPane     EditPaneModel
	focusedPane  PaneID
	eventSub     <-chan events.Event
	width        int
	height       int
	quitting     bool
	showEdit     bool
	solving      bool
	err          error
}

// New creates a new TUI model. It subscribes to all events from the bus.
// Solves run under ctx.
func New(ctx context.Context, opts Options) Model {
	scenario := opts.Scenario
	if scenario == "" {
		scenario = scheduler.ScenarioExpected
	}

	var sub <-chan events.Event
	if opts.Bus != nil {
		sub = opts.Bus.SubscribeAll(256)
	}

	m := Model{
		ctx:          ctx,
		runner:       opts.Runner,
		bus:          opts.Bus,
		project:      opts.Project,
		rates:        opts.Rates,
		scenario:     scenario,
		results:      make(map[scheduler.Scenario]*scheduler.ScheduleResult),
		errs:         make(map[scheduler.Scenario]error),
		taskPane:     NewTaskPaneModel(),
		schedulePane: NewSchedulePaneModel(),
		scenarioPane: NewScenarioPaneModel(),
		editPane:     NewEditPaneModel(),
		focusedPane:  PaneTasks,
		eventSub:     sub,
	}
	m.scenarioPane.SetCurrent(scenario)
	m.costs = costsOf(opts.Project, opts.Rates)
	m.taskPane.SetProject(opts.Project, nil, m.costs)
	m.updateFocusStates()
	return m
}

// Init starts listening for events and solves the initial snapshot.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.eventSub), solveCmd(m.ctx, m.runner, m.project))
}

// waitForEvent returns a command that waits for the next event from the event bus.
func waitForEvent(sub <-chan events.Event) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return nil // bus closed
		}
		return event
	}
}

func costsOf(p *project.Project, rates map[string]float64) *project.CostSummary {
	c := project.Costs(p, rates)
	return &c
}

// solveCmd prepares p and solves all scenarios off the UI goroutine.
func solveCmd(ctx context.Context, runner *orchestrator.ScenarioRunner, p *project.Project) tea.Cmd {
	return func() tea.Msg {
		prep, err := runner.Prepare(ctx, p)
		if err != nil {
			return solvedMsg{err: err}
		}
		outcomes, err := runner.RunPrepared(ctx, prep, nil)
		return solvedMsg{prep: prep, outcomes: outcomes, err: err}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// The edit form is modal
		if m.showEdit {
			return m, m.updateEdit(msg)
		}

		switch msg.String() {
		case KeyQuit, KeyCtrlC:
			m.quitting = true
			return m, tea.Quit

		case KeyEdit:
			taskID := m.taskPane.SelectedTaskID()
			if taskID == "" {
				break
			}
			m.editPane.Open(m.project, taskID, m.scenario)
			m.showEdit = true
			cmds = append(cmds, m.editPane.Init())

		case KeyResolve:
			if !m.solving {
				m.solving = true
				cmds = append(cmds, solveCmd(m.ctx, m.runner, m.project))
			}

		case KeyGantt:
			m.schedulePane.ToggleGantt()

		case KeyTab:
			m.focusedPane = (m.focusedPane + 1) % paneCount
			m.updateFocusStates()

		case KeyShiftTab:
			m.focusedPane = (m.focusedPane + paneCount - 1) % paneCount
			m.updateFocusStates()

		case KeyBest:
			m.selectScenario(scheduler.ScenarioBest)

		case KeyExpected:
			m.selectScenario(scheduler.ScenarioExpected)

		case KeyWorst:
			m.selectScenario(scheduler.ScenarioWorst)

		default:
			// Delegate to focused pane
			switch m.focusedPane {
			case PaneTasks:
				var cmd tea.Cmd
				m.taskPane, cmd = m.taskPane.Update(msg)
				cmds = append(cmds, cmd)
			case PaneSchedule:
				var cmd tea.Cmd
				m.schedulePane, cmd = m.schedulePane.Update(msg)
				cmds = append(cmds, cmd)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.computeLayout()
		m.editPane.SetSize(msg.Width, msg.Height-1)

	case solvedMsg:
		m.applySolved(msg)

	case events.SolveStartedEvent, events.SolveCompletedEvent, events.SolveFailedEvent,
		events.SolveEscalatedEvent, events.DurationEditedEvent, events.ProjectLoadedEvent:
		var cmd tea.Cmd
		m.scenarioPane, cmd = m.scenarioPane.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.Event:
		// Not displayed, but keep consuming
		cmds = append(cmds, waitForEvent(m.eventSub))

	default:
		if m.showEdit {
			// Form internals such as field navigation arrive as their own messages
			cmds = append(cmds, m.updateEdit(msg))
		}
	}

	return m, tea.Batch(cmds...)
}

// updateEdit routes msg to the edit form and applies the edit once the form
// is confirmed.
func (m *Model) updateEdit(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.editPane, cmd = m.editPane.Update(msg)
	if m.editPane.IsVisible() {
		return cmd
	}

	m.showEdit = false
	if edit, ok := m.editPane.Submitted(); ok {
		return tea.Batch(cmd, m.applyEdit(edit))
	}
	return cmd
}

// applyEdit replaces one duration, producing a new snapshot, and re-solves it.
// An invalid edit leaves the current snapshot in place.
func (m *Model) applyEdit(edit DurationEdit) tea.Cmd {
	var old float64
	for _, t := range m.project.Tasks {
		if t.ID == edit.TaskID {
			old = t.Durations[edit.Scenario]
			break
		}
	}

	next, err := m.project.WithDuration(edit.TaskID, edit.Scenario, edit.Hours)
	if err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	m.project = next
	m.costs = costsOf(next, m.rates)
	var g *scheduler.TaskGraph
	if m.prep != nil {
		// Edits change durations only, so the graph is unchanged
		g = m.prep.Graph
	}
	m.taskPane.SetProject(next, g, m.costs)

	m.bus.Publish(events.TopicProject, events.DurationEditedEvent{
		Project:   next.Name,
		TaskID:    edit.TaskID,
		Scenario:  string(edit.Scenario),
		Old:       old,
		New:       edit.Hours,
		Timestamp: time.Now(),
	})

	m.solving = true
	return solveCmd(m.ctx, m.runner, next)
}

// applySolved records the outcomes of a solve. Results for an older snapshot
// than the current one are ignored.
func (m *Model) applySolved(msg solvedMsg) {
	if msg.prep == nil {
		m.solving = false
		m.err = msg.err
		m.schedulePane.SetResult(nil, nil, msg.err)
		return
	}
	if msg.prep.Project != m.project {
		return
	}

	m.solving = false
	m.err = msg.err
	m.prep = msg.prep
	for _, o := range msg.outcomes {
		s, err := scheduler.ParseScenario(o.Scenario)
		if err != nil {
			continue
		}
		m.results[s] = o.Result
		m.errs[s] = o.Err
		m.scenarioPane.SetOutcome(s, o.Result, o.Err)
	}
	m.taskPane.SetProject(m.project, m.prep.Graph, m.costs)
	m.refreshSchedule()
}

// selectScenario switches the displayed scenario.
func (m *Model) selectScenario(s scheduler.Scenario) {
	m.scenario = s
	m.scenarioPane.SetCurrent(s)
	m.refreshSchedule()
}

func (m *Model) refreshSchedule() {
	r := m.results[m.scenario]
	m.taskPane.SetResult(r)
	m.schedulePane.SetResult(r, m.costs, m.errs[m.scenario])
}

// Scenario returns the scenario being displayed.
func (m Model) Scenario() scheduler.Scenario {
	return m.scenario
}

// Project returns the current snapshot.
func (m Model) Project() *project.Project {
	return m.project
}

// Result returns the latest schedule of s, or nil.
func (m Model) Result(s scheduler.Scenario) *scheduler.ScheduleResult {
	return m.results[s]
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.showEdit {
		return m.editPane.View()
	}

	right := lipgloss.JoinVertical(lipgloss.Left, m.schedulePane.View(), m.scenarioPane.View())
	main := lipgloss.JoinHorizontal(lipgloss.Top, m.taskPane.View(), right)

	status := HelpView()
	if m.err != nil {
		status = StyleFailed.Render("Error: "+m.err.Error()) + "  " + status
	} else if m.solving {
		status = StyleSolving.Render("Solving...") + "  " + status
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, status)
}

// computeLayout calculates pane dimensions and updates all child models.
func (m *Model) computeLayout() {
	leftWidth := (m.width * 35) / 100
	rightWidth := m.width - leftWidth
	availableHeight := m.height - 1 // help bar
	rightTopHeight := (availableHeight * 65) / 100
	rightBottomHeight := availableHeight - rightTopHeight

	m.taskPane.SetSize(leftWidth, availableHeight)
	m.schedulePane.SetSize(rightWidth, rightTopHeight)
	m.scenarioPane.SetSize(rightWidth, rightBottomHeight)

	m.updateFocusStates()
}

// updateFocusStates updates the focus state of all panes.
func (m *Model) updateFocusStates() {
	m.taskPane.SetFocused(m.focusedPane == PaneTasks)
	m.schedulePane.SetFocused(m.focusedPane == PaneSchedule)
	m.scenarioPane.SetFocused(m.focusedPane == PaneScenarios)
}
