// Package report renders schedules as text: task tables, Gantt bars,
// cost summaries and scenario comparisons.
package report

import (
	"fmt"
	"strings"

	"github.com/aristath/projplan/internal/project"
	"github.com/aristath/projplan/internal/scheduler"
)

// Table renders one row per task in ID order. When costs is non-nil a cost
// column is added.
func Table(r *scheduler.ScheduleResult, costs *project.CostSummary) string {
	cols := []column{
		{title: "Task"},
		{title: "Description"},
		{title: "Start", right: true},
		{title: "Finish", right: true},
		{title: "Hours", right: true},
		{title: "Slack", right: true},
		{title: ""},
	}
	if costs != nil {
		cols = append(cols, column{title: "Cost", right: true})
	}

	rows := make([][]string, 0, r.Len())
	for _, e := range r.ByID() {
		marker := ""
		if e.Critical {
			marker = StyleCritical.Render("critical")
		}
		row := []string{
			e.TaskID,
			e.Description,
			Hours(e.Start),
			Hours(e.Finish),
			Hours(e.Duration),
			Hours(e.Slack),
			marker,
		}
		if costs != nil {
			tc, _ := costs.Task(e.TaskID)
			row = append(row, Money(tc.Cost))
		}
		rows = append(rows, row)
	}

	var b strings.Builder
	b.WriteString(Summary(r))
	b.WriteString("\n\n")
	b.WriteString(renderTable(cols, rows))
	return b.String()
}

// Summary renders the one-line headline of a result.
func Summary(r *scheduler.ScheduleResult) string {
	return StyleTitle.Render(fmt.Sprintf("%s scenario: %s, makespan %s hours", r.Scenario().Title(), r.Status(), Hours(r.Makespan()))) +
		"\n" + StyleMuted.Render("Critical tasks: ") + TaskList(r.CriticalPath())
}
