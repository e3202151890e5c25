package report

import (
	"fmt"
	"strings"

	"github.com/aristath/projplan/internal/orchestrator"
)

// Comparison renders one row per scenario outcome with its makespan, the
// difference from the first successful outcome, and its critical tasks.
func Comparison(outcomes []orchestrator.Outcome) string {
	var base float64
	haveBase := false

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			rows = append(rows, []string{o.Scenario, StyleCritical.Render("error"), "-", "-", o.Err.Error()})
			continue
		}
		r := o.Result
		delta := "-"
		if haveBase {
			delta = fmt.Sprintf("%+g", r.Makespan()-base)
		} else {
			base, haveBase = r.Makespan(), true
		}
		rows = append(rows, []string{
			r.Scenario().Title(),
			r.Status().String(),
			Hours(r.Makespan()),
			delta,
			TaskList(r.CriticalPath()),
		})
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Scenario comparison"))
	b.WriteString("\n\n")
	b.WriteString(renderTable([]column{
		{title: "Scenario"},
		{title: "Status"},
		{title: "Makespan", right: true},
		{title: "Delta", right: true},
		{title: "Critical tasks"},
	}, rows))
	return b.String()
}

// Sensitivity renders what-if results, largest makespan increase first.
func Sensitivity(results []orchestrator.SensitivityResult) string {
	rows := make([][]string, 0, len(results))
	for _, s := range results {
		marker := ""
		if s.WasCritical {
			marker = StyleCritical.Render("critical")
		}
		rows = append(rows, []string{
			s.TaskID,
			Hours(s.OldHours),
			Hours(s.NewHours),
			Hours(s.Adjusted),
			fmt.Sprintf("%+g", s.Delta()),
			marker,
		})
	}

	var b strings.Builder
	if len(results) > 0 {
		b.WriteString(StyleTitle.Render(fmt.Sprintf("Sensitivity (%s scenario, baseline makespan %s hours)", results[0].Scenario, Hours(results[0].Baseline))))
		b.WriteString("\n\n")
	}
	b.WriteString(renderTable([]column{
		{title: "Task"},
		{title: "Old", right: true},
		{title: "New", right: true},
		{title: "Makespan", right: true},
		{title: "Delta", right: true},
		{title: ""},
	}, rows))
	return b.String()
}
