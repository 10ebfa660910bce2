package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"subtrack/internal/core"
)

// WriteCSV writes the active subscriptions to w with a header row, followed
// by a monthly-total summary row. Paused records are left out of the file;
// the full set lives in the XLSX and Sheets exports.
func WriteCSV(w io.Writer, subs []core.Subscription) error {
	active := make([]core.Subscription, 0, len(subs))
	for _, s := range subs {
		if s.Status == core.StatusActive {
			active = append(active, s)
		}
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows(active) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := cw.Write(totalRow(subs)); err != nil {
		return fmt.Errorf("write total row: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
