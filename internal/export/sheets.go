package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"subtrack/internal/core"
)

// SheetsBackup mirrors the subscription table into one worksheet of a
// Google spreadsheet. Each sync replaces the whole sheet; the table is
// small enough that incremental updates are not worth the bookkeeping.
type SheetsBackup struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsBackupFromEnv builds a backup client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Credentials come from
// GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewSheetsBackupFromEnv(ctx context.Context) (*SheetsBackup, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Subscriptions"
	}

	credentialsJSON, err := loadCredentials()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsBackup{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func loadCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_JSON")); inline != "" {
		return []byte(inline), nil
	}

	path := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return data, nil
}

// Sync clears the worksheet and writes the full table.
func (b *SheetsBackup) Sync(ctx context.Context, subs []core.Subscription) error {
	rng := fmt.Sprintf("%s!A:H", b.sheetName)

	if _, err := b.svc.Spreadsheets.Values.Clear(b.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	values := [][]interface{}{toInterfaceRow(header)}
	for _, row := range rows(subs) {
		values = append(values, toInterfaceRow(row))
	}

	vr := &gsheet.ValueRange{Values: values}
	if _, err := b.svc.Spreadsheets.Values.Update(b.spreadsheetID, fmt.Sprintf("%s!A1", b.sheetName), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update sheet: %w", err)
	}

	slog.InfoContext(ctx, "Synced subscriptions to Google Sheets",
		"spreadsheet", b.spreadsheetID,
		"sheet", b.sheetName,
		"rows", len(subs))
	return nil
}

func toInterfaceRow(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
