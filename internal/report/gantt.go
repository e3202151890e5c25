package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/projplan/internal/scheduler"
)

// DefaultGanttWidth is the bar area width used when none is given.
const DefaultGanttWidth = 60

// Gantt renders one bar per task ordered by start time. Bars are scaled so
// that the makespan spans width cells. Critical tasks are drawn with '#',
// others with '='. Zero-length tasks are drawn as a single '|'.
func Gantt(r *scheduler.ScheduleResult, width int) string {
	if width <= 0 {
		width = DefaultGanttWidth
	}

	entries := r.ByStart()
	labelWidth := len("Task")
	for _, e := range entries {
		labelWidth = max(labelWidth, lipgloss.Width(e.TaskID))
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s scenario, makespan %s hours", r.Scenario().Title(), Hours(r.Makespan()))))
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(StyleMuted.Render("(no tasks)"))
		b.WriteString("\n")
		return b.String()
	}

	for _, e := range entries {
		from, to := barSpan(e.Start, e.Finish, r.Makespan(), width)

		var bar string
		switch {
		case e.Duration == 0:
			bar = "|"
		case e.Critical:
			bar = StyleCritical.Render(strings.Repeat("#", to-from))
		default:
			bar = strings.Repeat("=", to-from)
		}
		line := strings.Repeat(" ", from) + bar
		line = pad(line, width+1, false)

		b.WriteString(pad(e.TaskID, labelWidth, false))
		b.WriteString(" |")
		b.WriteString(line)
		b.WriteString("| ")
		b.WriteString(StyleMuted.Render(fmt.Sprintf("%s-%s", Hours(e.Start), Hours(e.Finish))))
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat(" ", labelWidth+2))
	b.WriteString(axis(r.Makespan(), width))
	b.WriteString("\n")
	return b.String()
}

// barSpan maps [start, finish) onto [0, width] cells. Non-empty tasks get at
// least one cell.
func barSpan(start, finish, makespan float64, width int) (int, int) {
	if makespan <= 0 {
		return 0, 0
	}
	from := int(math.Round(start / makespan * float64(width)))
	to := int(math.Round(finish / makespan * float64(width)))
	if finish > start && to == from {
		if to < width {
			to++
		} else {
			from--
		}
	}
	return from, to
}

// axis renders "0" at the left edge and the makespan at the right edge.
func axis(makespan float64, width int) string {
	end := Hours(makespan)
	gap := width + 2 - len("0") - len(end)
	if gap < 1 {
		gap = 1
	}
	return StyleMuted.Render("0" + strings.Repeat(" ", gap) + end)
}
