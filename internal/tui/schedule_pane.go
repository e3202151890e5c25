package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/projplan/internal/project"
	"github.com/aristath/projplan/internal/report"
	"github.com/aristath/projplan/internal/scheduler"
)

// SchedulePaneModel shows the current scenario's schedule as a table or as
// Gantt bars.
type SchedulePaneModel struct {
	viewport  viewport.Model
	result    *scheduler.ScheduleResult
	costs     *project.CostSummary
	err       error
	showGantt bool
	width     int
	height    int
	focused   bool
}

// NewSchedulePaneModel creates a new schedule pane model.
func NewSchedulePaneModel() SchedulePaneModel {
	return SchedulePaneModel{
		viewport: viewport.New(0, 0),
	}
}

// Update handles messages for the schedule pane.
func (m SchedulePaneModel) Update(msg tea.Msg) (SchedulePaneModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == KeyGantt {
			m.ToggleGantt()
			return m, nil
		}
		m.viewport, cmd = m.viewport.Update(msg)

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}

	return m, cmd
}

// SetResult replaces the displayed schedule. A non-nil err is shown instead.
func (m *SchedulePaneModel) SetResult(r *scheduler.ScheduleResult, costs *project.CostSummary, err error) {
	m.result = r
	m.costs = costs
	m.err = err
	m.updateViewportContent()
}

// ToggleGantt switches between the table and the Gantt view.
func (m *SchedulePaneModel) ToggleGantt() {
	m.showGantt = !m.showGantt
	m.updateViewportContent()
}

// ShowingGantt reports whether the Gantt view is active.
func (m SchedulePaneModel) ShowingGantt() bool {
	return m.showGantt
}

func (m *SchedulePaneModel) updateViewportContent() {
	switch {
	case m.err != nil:
		m.viewport.SetContent(StyleFailed.Render("Solve failed: " + m.err.Error()))
	case m.result == nil:
		m.viewport.SetContent(StyleMuted.Render("Solving..."))
	case m.showGantt:
		width := m.viewport.Width - 16
		if width < 10 {
			width = report.DefaultGanttWidth
		}
		m.viewport.SetContent(report.Summary(m.result) + "\n\n" + report.Gantt(m.result, width))
	default:
		m.viewport.SetContent(report.Table(m.result, m.costs))
	}
}

// View renders the schedule pane.
func (m SchedulePaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder
	title := "Schedule"
	if m.showGantt {
		title = "Gantt"
	}
	if m.result != nil {
		title += " (" + m.result.Scenario().Title() + ")"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(lipgloss.NewStyle().MaxHeight(m.height - 2).Render(b.String()))
}

func (m *SchedulePaneModel) resizeViewport() {
	w := m.width - 4
	h := m.height - 3

	if w < 10 {
		w = 10
	}
	if h < 3 {
		h = 3
	}

	m.viewport.Width = w
	m.viewport.Height = h
	m.updateViewportContent()
}

// SetSize updates the pane dimensions.
func (m *SchedulePaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.resizeViewport()
}

// SetFocused updates the focus state.
func (m *SchedulePaneModel) SetFocused(focused bool) {
	m.focused = focused
}
