package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/projplan/internal/project"
	"github.com/aristath/projplan/internal/report"
	"github.com/aristath/projplan/internal/scheduler"
)

// DurationEdit is a submitted change of one task's hours in one scenario.
type DurationEdit struct {
	TaskID   string
	Scenario scheduler.Scenario
	Hours    float64
}

// EditPaneModel manages the duration editing form overlay.
type EditPaneModel struct {
	form      *huh.Form
	project   *project.Project
	width     int
	height    int
	visible   bool
	submitted *DurationEdit

	// Form field bindings (strings for Huh)
	taskID   string
	scenario string
	hours    string
}

// NewEditPaneModel creates a new edit pane.
func NewEditPaneModel() EditPaneModel {
	return EditPaneModel{}
}

// Open shows the form for taskID in scenario s of p, prefilled with the
// current hours.
func (m *EditPaneModel) Open(p *project.Project, taskID string, s scheduler.Scenario) {
	m.project = p
	m.taskID = taskID
	m.scenario = string(s)
	m.hours = ""
	m.submitted = nil

	for _, t := range p.Tasks {
		if t.ID == taskID {
			if h, ok := t.Durations[s]; ok {
				m.hours = report.Hours(h)
			}
			break
		}
	}

	m.buildForm()
	m.visible = true
}

// buildForm constructs the Huh form with the task, scenario and hours fields.
func (m *EditPaneModel) buildForm() {
	taskOptions := make([]huh.Option[string], 0, len(m.project.Tasks))
	for _, t := range m.project.Tasks {
		label := t.ID
		if t.Description != "" {
			label = t.ID + "  " + t.Description
		}
		taskOptions = append(taskOptions, huh.NewOption(label, t.ID))
	}

	scenarioOptions := make([]huh.Option[string], 0, len(scheduler.Scenarios))
	for _, s := range scheduler.Scenarios {
		scenarioOptions = append(scenarioOptions, huh.NewOption(s.Title(), string(s)))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("task").
				Title("Task").
				Options(taskOptions...).
				Value(&m.taskID),

			huh.NewSelect[string]().
				Key("scenario").
				Title("Scenario").
				Options(scenarioOptions...).
				Value(&m.scenario),

			huh.NewInput().
				Key("hours").
				Title("Hours").
				Value(&m.hours).
				Placeholder("8").
				Validate(validateHours),
		).Title("Edit Duration"),
	)
}

func validateHours(s string) error {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("enter a number of hours")
	}
	if h < 0 || math.IsInf(h, 0) || math.IsNaN(h) {
		return errors.New("hours must be a finite non-negative number")
	}
	return nil
}

// Init initializes the edit pane.
func (m EditPaneModel) Init() tea.Cmd {
	if m.form == nil {
		return nil
	}
	return m.form.Init()
}

// Update handles messages for the edit pane.
func (m EditPaneModel) Update(msg tea.Msg) (EditPaneModel, tea.Cmd) {
	if !m.visible || m.form == nil {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == KeyEsc {
		m.visible = false
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if edit, err := m.edit(); err == nil {
			m.submitted = &edit
		}
		m.visible = false
	case huh.StateAborted:
		m.visible = false
	}

	return m, cmd
}

// edit converts the form fields into a DurationEdit.
func (m EditPaneModel) edit() (DurationEdit, error) {
	s, err := scheduler.ParseScenario(m.scenario)
	if err != nil {
		return DurationEdit{}, err
	}
	if err := validateHours(m.hours); err != nil {
		return DurationEdit{}, err
	}
	h, _ := strconv.ParseFloat(strings.TrimSpace(m.hours), 64)
	return DurationEdit{TaskID: m.taskID, Scenario: s, Hours: h}, nil
}

// Submitted returns the edit confirmed by the last completed form, if any,
// and clears it.
func (m *EditPaneModel) Submitted() (DurationEdit, bool) {
	if m.submitted == nil {
		return DurationEdit{}, false
	}
	edit := *m.submitted
	m.submitted = nil
	return edit, true
}

// View renders the edit pane.
func (m EditPaneModel) View() string {
	if !m.visible || m.form == nil {
		return ""
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(m.width - 4).
		Height(m.height - 4)

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62")).
		Render(fmt.Sprintf("Edit %s", m.project.Name))

	help := StyleHelp.Render("Enter: next/confirm | Esc: cancel")

	return lipgloss.JoinVertical(lipgloss.Left, title, style.Render(m.form.View()), help)
}

// IsVisible returns whether the edit pane is currently visible.
func (m EditPaneModel) IsVisible() bool {
	return m.visible
}

// SetSize updates the pane dimensions.
func (m *EditPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}
