// Package export renders the subscription set into portable formats: CSV,
// XLSX and a Google Sheets backup.
package export

import (
	"fmt"

	"subtrack/internal/core"
)

var header = []string{"Name", "Price", "Currency", "Frequency", "Category", "Status", "Next Payment", "Monthly Equivalent"}

// rows flattens subscriptions into the shared tabular form used by every
// exporter. Which records land here is the caller's call: CSV passes only
// the active set, the spreadsheet exports pass everything.
func rows(subs []core.Subscription) [][]string {
	out := make([][]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, []string{
			s.Name,
			s.Price.String(),
			s.Currency,
			string(s.Frequency),
			s.Category,
			string(s.Status),
			s.NextPayment.String(),
			fmt.Sprintf("%.2f", core.MonthlyEquivalent(s)),
		})
	}
	return out
}

// totalRow is the summary line closing an export: a label in the first
// column and the monthly net total in the last. Paused and included records
// contribute zero, so passing the full set here is fine.
func totalRow(subs []core.Subscription) []string {
	row := make([]string, len(header))
	row[0] = "Monthly total"
	row[len(row)-1] = fmt.Sprintf("%.2f", core.MonthlyNetTotal(subs))
	return row
}
