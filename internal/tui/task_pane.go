package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/projplan/internal/project"
	"github.com/aristath/projplan/internal/report"
	"github.com/aristath/projplan/internal/scheduler"
)

const taskListWidth = 12

// TaskPaneModel lists the project's tasks and shows details of the selected one.
type TaskPaneModel struct {
	viewport    viewport.Model
	project     *project.Project
	preds       scheduler.PrecedenceMap
	result      *scheduler.ScheduleResult
	costs       *project.CostSummary
	selectedIdx int
	width       int
	height      int
	focused     bool
}

// NewTaskPaneModel creates a new task pane model.
func NewTaskPaneModel() TaskPaneModel {
	return TaskPaneModel{
		viewport: viewport.New(0, 0),
	}
}

// Update handles messages for the task pane.
func (m TaskPaneModel) Update(msg tea.Msg) (TaskPaneModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case KeyUp, KeyK:
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.updateViewportContent()
			}
			return m, nil
		case KeyDown, KeyJ:
			if m.project != nil && m.selectedIdx < len(m.project.Tasks)-1 {
				m.selectedIdx++
				m.updateViewportContent()
			}
			return m, nil
		}
		m.viewport, cmd = m.viewport.Update(msg)

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}

	return m, cmd
}

// SetProject replaces the displayed snapshot. The selection is kept on the
// same task ID when it still exists.
func (m *TaskPaneModel) SetProject(p *project.Project, g *scheduler.TaskGraph, costs *project.CostSummary) {
	selected := m.SelectedTaskID()
	m.project = p
	m.costs = costs
	m.preds = nil
	if g != nil {
		m.preds = g.Precedences()
	}

	m.selectedIdx = 0
	for i, t := range p.Tasks {
		if t.ID == selected {
			m.selectedIdx = i
			break
		}
	}
	m.updateViewportContent()
}

// SetResult sets the schedule shown next to each task.
func (m *TaskPaneModel) SetResult(r *scheduler.ScheduleResult) {
	m.result = r
	m.updateViewportContent()
}

// SelectedTaskID returns the ID of the highlighted task, or "".
func (m TaskPaneModel) SelectedTaskID() string {
	if m.project == nil || m.selectedIdx < 0 || m.selectedIdx >= len(m.project.Tasks) {
		return ""
	}
	return m.project.Tasks[m.selectedIdx].ID
}

// View renders the task pane.
func (m TaskPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	detailWidth := m.width - taskListWidth - 4

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTaskList(),
		lipgloss.NewStyle().
			Width(detailWidth).
			Height(m.height-2).
			Render(m.viewport.View()),
	)

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(content)
}

func (m TaskPaneModel) renderTaskList() string {
	var b strings.Builder

	title := StyleTitle.Render("Tasks")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", min(taskListWidth, lipgloss.Width(title))))
	b.WriteString("\n\n")

	if m.project == nil || len(m.project.Tasks) == 0 {
		b.WriteString(StyleMuted.Render("No tasks"))
	} else {
		for i, t := range m.project.Tasks {
			line := fmt.Sprintf("%s %s", m.marker(t.ID), t.ID)
			if i == m.selectedIdx {
				line = StyleSelected.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Width(taskListWidth).
		Height(m.height - 2).
		Render(b.String())
}

// marker returns a styled indicator of the task's criticality.
func (m TaskPaneModel) marker(taskID string) string {
	if m.result == nil {
		return StyleMuted.Render("○")
	}
	e, ok := m.result.Entry(taskID)
	if !ok {
		return StyleMuted.Render("○")
	}
	if e.Critical {
		return StyleCritical.Render("●")
	}
	return StyleSlack.Render("○")
}

// updateViewportContent shows the details of the selected task.
func (m *TaskPaneModel) updateViewportContent() {
	id := m.SelectedTaskID()
	if id == "" {
		m.viewport.SetContent("No task selected")
		return
	}
	m.viewport.SetContent(m.details(m.project.Tasks[m.selectedIdx]))
	m.viewport.GotoTop()
}

func (m TaskPaneModel) details(t scheduler.Task) string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(t.ID))
	b.WriteString("\n")
	if t.Description != "" {
		b.WriteString(t.Description)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("Durations:\n")
	for _, s := range scheduler.Scenarios {
		value := StyleMuted.Render("missing")
		if h, ok := t.Durations[s]; ok {
			value = report.Hours(h) + " h"
		}
		b.WriteString(fmt.Sprintf("  %-9s %s\n", s.Title(), value))
	}

	if preds := m.preds[t.ID]; len(preds) > 0 {
		b.WriteString(fmt.Sprintf("\nAfter: %s\n", strings.Join(preds, ", ")))
	}

	if m.result != nil {
		if e, ok := m.result.Entry(t.ID); ok {
			b.WriteString(fmt.Sprintf("\n%s schedule:\n", m.result.Scenario().Title()))
			b.WriteString(fmt.Sprintf("  Start   %s\n", report.Hours(e.Start)))
			b.WriteString(fmt.Sprintf("  Finish  %s\n", report.Hours(e.Finish)))
			if e.Critical {
				b.WriteString("  " + StyleCritical.Render("critical") + "\n")
			} else {
				b.WriteString("  Slack   " + StyleSlack.Render(report.Hours(e.Slack)) + "\n")
			}
		}
	}

	if len(t.Resources) > 0 {
		b.WriteString("\nResources:\n")
		names := make([]string, 0, len(t.Resources))
		for name := range t.Resources {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(fmt.Sprintf("  %-14s %s h\n", name, report.Hours(t.Resources[name])))
		}
	}

	if m.costs != nil {
		if tc, ok := m.costs.Task(t.ID); ok && tc.Cost > 0 {
			b.WriteString(fmt.Sprintf("\nCost: %s\n", report.Money(tc.Cost)))
		}
	}

	return b.String()
}

// resizeViewport resizes the viewport based on pane dimensions.
func (m *TaskPaneModel) resizeViewport() {
	w := m.width - taskListWidth - 4
	h := m.height - 4

	if w < 10 {
		w = 10
	}
	if h < 5 {
		h = 5
	}

	m.viewport.Width = w
	m.viewport.Height = h
}

// SetSize updates the pane dimensions.
func (m *TaskPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.resizeViewport()
}

// SetFocused updates the focus state.
func (m *TaskPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
