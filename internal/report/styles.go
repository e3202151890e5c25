package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used by every report.
var (
	StyleTitle = lipgloss.NewStyle().
			Bold(true)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	StyleCritical = lipgloss.NewStyle().
			Foreground(lipgloss.Color("red")).
			Bold(true)

	StyleMuted = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	StyleGood = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green"))
)

// pad right-aligns or left-aligns s to width display cells.
func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// column describes one table column.
type column struct {
	title string
	right bool
}

// renderTable lays out rows under a header, sizing each column to its
// widest cell.
func renderTable(cols []column, rows [][]string) string {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c.title)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	header := make([]string, len(cols))
	rule := make([]string, len(cols))
	for i, c := range cols {
		header[i] = pad(c.title, widths[i], c.right)
		rule[i] = strings.Repeat("-", widths[i])
	}
	b.WriteString(StyleHeader.Render(strings.TrimRight(strings.Join(header, "  "), " ")))
	b.WriteString("\n")
	b.WriteString(StyleMuted.Render(strings.Join(rule, "  ")))
	b.WriteString("\n")

	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, cell := range row {
			cells[i] = pad(cell, widths[i], cols[i].right)
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		b.WriteString("\n")
	}
	return b.String()
}
