package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/aristath/projplan/internal/persistence"
)

// Projects renders the stored projects with task and run counts.
func Projects(projects []persistence.ProjectSummary) string {
	if len(projects) == 0 {
		return StyleMuted.Render("No stored projects") + "\n"
	}

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.Name,
			fmt.Sprintf("%d", p.Tasks),
			fmt.Sprintf("%d", p.Runs),
			humanize.Time(p.UpdatedAt),
		})
	}
	return renderTable([]column{
		{title: "Project"},
		{title: "Tasks", right: true},
		{title: "Runs", right: true},
		{title: "Updated"},
	}, rows)
}

// Runs renders schedule runs newest first. Runs computed from a snapshot
// other than currentHash are marked stale.
func Runs(runs []*persistence.Run, currentHash string) string {
	if len(runs) == 0 {
		return StyleMuted.Render("No runs") + "\n"
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		state := ""
		if currentHash != "" && r.Stale(currentHash) {
			state = StyleMuted.Render("stale")
		}
		rows = append(rows, []string{
			r.ID,
			r.Scenario,
			r.Status,
			Hours(r.Makespan),
			humanize.Time(r.CreatedAt),
			state,
		})
	}
	return renderTable([]column{
		{title: "Run"},
		{title: "Scenario"},
		{title: "Status"},
		{title: "Makespan", right: true},
		{title: "Created"},
		{title: ""},
	}, rows)
}

// Run renders one stored run with its entries in start order.
func Run(r *persistence.Run) string {
	rows := make([][]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		marker := ""
		if e.Critical {
			marker = StyleCritical.Render("critical")
		}
		rows = append(rows, []string{e.TaskID, Hours(e.Start), Hours(e.Finish), Hours(e.Slack), marker})
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Run %s: %s scenario of %s", r.ID, r.Scenario, r.Project)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s, makespan %s hours, %s\n\n", r.Status, Hours(r.Makespan), humanize.Time(r.CreatedAt)))
	b.WriteString(renderTable([]column{
		{title: "Task"},
		{title: "Start", right: true},
		{title: "Finish", right: true},
		{title: "Slack", right: true},
		{title: ""},
	}, rows))
	return b.String()
}
