package rowstore

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/PippinModels/commercial-pricing-app/pkg/sheets"
)

// SheetsBackend stores worksheets as tabs of a Google spreadsheet.
type SheetsBackend struct {
	client        sheets.Client
	spreadsheetID string
}

// NewSheetsBackend binds a Sheets client to one spreadsheet.
func NewSheetsBackend(client sheets.Client, spreadsheetID string) *SheetsBackend {
	return &SheetsBackend{client: client, spreadsheetID: spreadsheetID}
}

func (b *SheetsBackend) Worksheets(ctx context.Context) ([]string, error) {
	ss, err := b.client.GetSpreadsheet(ctx, b.spreadsheetID)
	if err != nil {
		if errors.Is(err, sheets.ErrNotFound) {
			return nil, &NotFoundError{Document: b.spreadsheetID}
		}
		return nil, err
	}
	return ss.Titles(), nil
}

func (b *SheetsBackend) Values(ctx context.Context, worksheet string) ([][]string, error) {
	rows, err := b.client.GetValues(ctx, b.spreadsheetID, sheets.WholeSheet(worksheet))
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = trimRow(rows[i])
	}
	return rows, nil
}

func (b *SheetsBackend) AddWorksheet(ctx context.Context, worksheet string) error {
	return b.client.AddSheet(ctx, b.spreadsheetID, worksheet)
}

func (b *SheetsBackend) Clear(ctx context.Context, worksheet string) error {
	return b.client.ClearValues(ctx, b.spreadsheetID, sheets.WholeSheet(worksheet))
}

func (b *SheetsBackend) Append(ctx context.Context, worksheet string, row []any) error {
	if len(row) == 0 {
		return eris.New("sheets backend: empty row")
	}
	return b.client.AppendValues(ctx, b.spreadsheetID, sheets.WholeSheet(worksheet)+"!A1", [][]any{row})
}

// AppendRows writes all rows with a single append request.
func (b *SheetsBackend) AppendRows(ctx context.Context, worksheet string, rows [][]any) error {
	return b.client.AppendValues(ctx, b.spreadsheetID, sheets.WholeSheet(worksheet)+"!A1", rows)
}

func (b *SheetsBackend) Close() error {
	return nil
}
