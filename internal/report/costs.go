package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aristath/projplan/internal/project"
)

// Costs renders the cost summary: hours and cost per resource, the total,
// and the cost per hour of makespan. labels maps resource names to display
// names; missing labels fall back to the resource name.
func Costs(summary project.CostSummary, makespan float64, labels map[string]string) string {
	names := make([]string, 0, len(summary.HoursByResource))
	for name := range summary.HoursByResource {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		label := labels[name]
		if label == "" {
			label = name
		}
		rows = append(rows, []string{label, Hours(summary.HoursByResource[name]), Money(summary.CostByResource[name])})
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Cost summary"))
	b.WriteString("\n\n")
	b.WriteString(renderTable([]column{
		{title: "Resource"},
		{title: "Hours", right: true},
		{title: "Cost", right: true},
	}, rows))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Total cost:       %s\n", StyleGood.Render(Money(summary.Total))))
	b.WriteString(fmt.Sprintf("Cost per hour:    %s (over %s hours)\n", Money(summary.PerHour(makespan)), Hours(makespan)))
	if len(summary.Unpriced) > 0 {
		b.WriteString(StyleMuted.Render(fmt.Sprintf("No rate configured for: %s", strings.Join(summary.Unpriced, ", "))))
		b.WriteString("\n")
	}
	return b.String()
}
