// Package importer turns pasted free-form text into draft subscriptions.
// Each line mentioning a price becomes one draft; everything else on the
// line is treated as the service name.
package importer

import (
	"regexp"
	"strings"
	"time"

	"subtrack/internal/core"
	"subtrack/internal/ledger"
)

var priceRe = regexp.MustCompile(`(\$|USD|€|EUR)\s?(\d+[.,]\d+)`)

// ParseText scans the text line by line and returns one draft per line that
// contains a recognizable price. Lines without a price are skipped.
func ParseText(text string, now time.Time) []ledger.AddInput {
	var drafts []ledger.AddInput

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := priceRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		cents, err := core.ParseDecimalToCents(m[2])
		if err != nil {
			continue
		}

		name := cleanName(strings.Replace(line, m[0], "", 1))
		if name == "" {
			name = "Unknown service"
		}

		drafts = append(drafts, ledger.AddInput{
			Name:        name,
			Price:       core.Money{Cents: cents},
			Currency:    currencyOf(m[1]),
			Frequency:   core.Monthly,
			BillingDate: core.DateOf(now),
			Category:    "other",
			Notes:       "Imported from text on " + now.Format("2006-01-02"),
		})
	}

	return drafts
}

func currencyOf(symbol string) string {
	switch symbol {
	case "€", "EUR":
		return "EUR"
	default:
		return "USD"
	}
}

// cleanName strips list markers and separators left behind once the price
// is removed.
func cleanName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "-*:•|,.")
	return strings.TrimSpace(s)
}
