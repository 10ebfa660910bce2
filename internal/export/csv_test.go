package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"subtrack/internal/core"
)

func sampleSubs() []core.Subscription {
	return []core.Subscription{
		{
			Name:        "Netflix",
			Price:       core.Money{Cents: 1599},
			Currency:    "USD",
			Frequency:   core.Monthly,
			Category:    "streaming",
			Status:      core.StatusActive,
			NextPayment: core.NewDate(2025, 4, 15),
			CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			Name:      "Gym",
			Price:     core.Money{Cents: 3000},
			Currency:  "EUR",
			Frequency: core.Monthly,
			Category:  "health",
			Status:    core.StatusPaused,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleSubs()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("rows = %d, want header + active row + total", len(records))
	}
	if records[0][0] != "Name" || records[0][7] != "Monthly Equivalent" {
		t.Errorf("header = %v", records[0])
	}

	netflix := records[1]
	if netflix[0] != "Netflix" || netflix[1] != "15.99" || netflix[6] != "2025-04-15" {
		t.Errorf("netflix row = %v", netflix)
	}
	if netflix[7] != "15.99" {
		t.Errorf("monthly equivalent = %q, want 15.99", netflix[7])
	}

	// The paused record stays out of the file; only the active set is listed.
	for _, rec := range records[1:] {
		if rec[0] == "Gym" {
			t.Errorf("paused record exported: %v", rec)
		}
	}

	total := records[2]
	if total[0] != "Monthly total" || total[7] != "15.99" {
		t.Errorf("total row = %v, want Monthly total 15.99", total)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output = %q, want header + total row", buf.String())
	}
	if !strings.HasPrefix(lines[1], "Monthly total") || !strings.HasSuffix(lines[1], "0.00") {
		t.Errorf("total row = %q", lines[1])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleSubs()); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	// XLSX files are zip archives; check the magic bytes.
	if buf.Len() < 4 || buf.Bytes()[0] != 'P' || buf.Bytes()[1] != 'K' {
		t.Error("output does not look like a spreadsheet")
	}
}
