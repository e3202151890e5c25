package report

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// Hours formats a duration in hours without trailing zeros ("8", "8.5").
func Hours(h float64) string {
	return humanize.FtoaWithDigits(h, 2)
}

// Money formats an amount with thousands separators ("$23,290", "$204.3").
func Money(amount float64) string {
	if amount < 0 {
		return "-$" + humanize.CommafWithDigits(-amount, 2)
	}
	return "$" + humanize.CommafWithDigits(amount, 2)
}

// TaskList joins task IDs with commas. Zero-slack tasks can form parallel
// chains, so the list implies no edges between neighbours.
func TaskList(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}
