package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// GoogleAppender appends backup rows to a Google Sheets spreadsheet.
type GoogleAppender struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ Appender = (*GoogleAppender)(nil)

// NewGoogleAppender creates an appender using Service Account credentials.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS, checked in that order.
func NewGoogleAppender(ctx context.Context, spreadsheetID, sheetName string) (*GoogleAppender, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Backup"
	}

	credentialsJSON, err := loadServiceAccountJSON()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &GoogleAppender{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func loadServiceAccountJSON() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// AppendBackupRow appends one row after the last non-empty row of the sheet.
func (g *GoogleAppender) AppendBackupRow(ctx context.Context, row BackupRow) error {
	return g.AppendBackupRows(ctx, []BackupRow{row})
}

// AppendBackupRows appends a batch of rows in a single API call.
func (g *GoogleAppender) AppendBackupRows(ctx context.Context, rows []BackupRow) error {
	if g.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if len(rows) == 0 {
		return nil
	}

	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		values = append(values, rowValues(row))
	}

	rng := fmt.Sprintf("%s!A:I", g.sheetName)
	vr := &gsheet.ValueRange{Values: values}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", g.sheetName, err)
	}
	return nil
}

func rowValues(row BackupRow) []any {
	values := []any{row.ExpenseID, row.Owner, row.Event, row.Timestamp, "", "", "", ""}
	if rec := row.Record; rec != nil {
		values[4] = string(rec.Category)
		values[5] = rec.Amount.StringFixed(2)
		values[6] = string(rec.PaymentMethod)
		values[7] = rec.Date.ISO()
		if rec.Notes != "" {
			values = append(values, rec.Notes)
		}
	}
	return values
}
