// Command subtrack-report prints the subscription ledger from the command
// line, or exports it to CSV/XLSX without going through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/joho/godotenv"

	"subtrack/internal/backend"
	"subtrack/internal/core"
	"subtrack/internal/export"
	"subtrack/internal/ledger"
	applog "subtrack/internal/log"
)

type Params struct {
	Backend string `descr:"Storage backend" alts:"memory,sqlite" default:"sqlite" strict:"true"`
	DBPath  string `descr:"SQLite database path" default:"./data/subtrack.db"`
	Format  string `descr:"Output format" alts:"table,json,csv,xlsx" default:"table" strict:"true"`
	Output  string `descr:"Output file (default stdout; required for xlsx)"`
	Days    int    `descr:"Upcoming payments window in days" default:"7"`
}

func main() {
	_ = godotenv.Load()

	boa.NewCmdT[Params]("subtrack-report").
		WithShort("Report on tracked subscriptions").
		WithLong("Reads the subscription ledger directly from storage and prints totals, upcoming payments and per-subscription details.").
		WithRunFunc(func(params *Params) {
			if err := run(params); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(params *Params) error {
	logger := applog.New("subtrack-report", applog.ParseLevel(os.Getenv("LOG_LEVEL")))

	result, err := backend.Open(backend.Config{
		Type:         backend.Type(params.Backend),
		SQLiteDBPath: params.DBPath,
	}, logger.Logger)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	defer result.Cleanup()

	led, err := ledger.Open(context.Background(), result.Store, logger.Logger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	out := os.Stdout
	if params.Output != "" {
		f, err := os.Create(params.Output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	subs := led.List()
	switch params.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Subscriptions []core.Subscription `json:"subscriptions"`
			Stats         ledger.Stats        `json:"stats"`
		}{Subscriptions: subs, Stats: led.Stats()})
	case "csv":
		return export.WriteCSV(out, subs)
	case "xlsx":
		if params.Output == "" {
			return fmt.Errorf("xlsx format requires --output")
		}
		return export.WriteXLSX(out, subs)
	default:
		printReport(led, params.Days)
		return nil
	}
}

func printReport(led *ledger.Ledger, windowDays int) {
	subs := led.List()
	stats := led.Stats()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Name", "Price", "Frequency", "Category", "Status", "Next Payment", "Monthly"})
	for _, sub := range subs {
		t.AppendRow(table.Row{
			sub.Name,
			sub.Price.String() + " " + sub.Currency,
			string(sub.Frequency),
			sub.Category,
			string(sub.Status),
			sub.NextPayment.String(),
			fmt.Sprintf("%.2f", core.MonthlyEquivalent(sub)),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Total", fmt.Sprintf("%.2f", stats.MonthlyTotal)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Price", Align: text.AlignRight},
		{Name: "Monthly", Align: text.AlignRight},
	})
	t.Render()

	fmt.Printf("\n%d subscriptions (%d active), %.2f/month, %.2f/year\n",
		stats.Count, stats.ActiveCount, stats.MonthlyTotal, stats.YearlyTotal)

	if due := led.Upcoming(windowDays); len(due) > 0 {
		fmt.Printf("\nDue within %d days:\n", windowDays)
		for _, sub := range due {
			fmt.Printf("  %s  %s %s on %s\n", sub.Name, sub.Price.String(), sub.Currency, sub.NextPayment.String())
		}
	}

	if shared := led.SharedSummary(); len(shared) > 0 {
		fmt.Println("\nShared with:")
		for _, p := range shared {
			fmt.Printf("  %s  %d subscriptions, %s total\n", p.Name, p.Count, p.Total.String())
		}
	}
}
