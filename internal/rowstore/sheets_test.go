package rowstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/PippinModels/commercial-pricing-app/pkg/sheets"
	"github.com/PippinModels/commercial-pricing-app/pkg/sheets/mocks"
)

func TestSheetsBackend_Worksheets(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("GetSpreadsheet", mock.Anything, "sheet-1").Return(&sheets.Spreadsheet{
		SpreadsheetID: "sheet-1",
		Sheets: []sheets.Sheet{
			{Properties: sheets.SheetProperties{Title: "Summary Sheet"}},
			{Properties: sheets.SheetProperties{Title: "User Prediction Selections"}},
		},
	}, nil)

	names, err := NewSheetsBackend(client, "sheet-1").Worksheets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Summary Sheet", "User Prediction Selections"}, names)
}

func TestSheetsBackend_NotFound(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("GetSpreadsheet", mock.Anything, "gone").Return(nil, sheets.ErrNotFound)

	doc := NewDocument("gone", NewSheetsBackend(client, "gone"))
	_, err := doc.Worksheets(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSheetsBackend_ValuesTrimsRows(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("GetValues", mock.Anything, "sheet-1", "'Summary Sheet'").Return([][]string{
		{"Mapped Type", "Offline/Online", ""},
		{"Retail", "", ""},
	}, nil)

	rows, err := NewSheetsBackend(client, "sheet-1").Values(context.Background(), "Summary Sheet")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Mapped Type", "Offline/Online"}, {"Retail"}}, rows)
}

func TestSheetsBackend_Append(t *testing.T) {
	client := mocks.NewMockClient(t)
	row := []any{"Retail", "Full Search"}
	client.On("AppendValues", mock.Anything, "sheet-1", "'Audit'!A1", [][]any{row}).Return(nil)

	b := NewSheetsBackend(client, "sheet-1")
	require.NoError(t, b.Append(context.Background(), "Audit", row))
	assert.Error(t, b.Append(context.Background(), "Audit", nil))
}

func TestSheetsBackend_EnsureWorksheetCreates(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("GetSpreadsheet", mock.Anything, "sheet-1").Return(&sheets.Spreadsheet{
		Sheets: []sheets.Sheet{{Properties: sheets.SheetProperties{Title: "Summary Sheet"}}},
	}, nil)
	client.On("AddSheet", mock.Anything, "sheet-1", "Audit").Return(nil)
	client.On("AppendValues", mock.Anything, "sheet-1", "'Audit'!A1", [][]any{{"A", "B"}}).Return(nil)

	doc := NewDocument("sheet-1", NewSheetsBackend(client, "sheet-1"))
	_, err := doc.EnsureWorksheet(context.Background(), "Audit", []string{"A", "B"})
	require.NoError(t, err)
}

func TestSheetsBackend_EnsureWorksheetSelfHeals(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("GetSpreadsheet", mock.Anything, "sheet-1").Return(&sheets.Spreadsheet{
		Sheets: []sheets.Sheet{{Properties: sheets.SheetProperties{Title: "Audit"}}},
	}, nil)
	client.On("GetValues", mock.Anything, "sheet-1", "'Audit'").Return([][]string{{"Wrong"}}, nil)
	client.On("ClearValues", mock.Anything, "sheet-1", "'Audit'").Return(nil)
	client.On("AppendValues", mock.Anything, "sheet-1", "'Audit'!A1", [][]any{{"A", "B"}}).Return(nil)

	doc := NewDocument("sheet-1", NewSheetsBackend(client, "sheet-1"))
	_, err := doc.EnsureWorksheet(context.Background(), "Audit", []string{"A", "B"})
	require.NoError(t, err)
}

func TestSheetsBackend_AppendErrorIsWriteError(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("GetSpreadsheet", mock.Anything, "sheet-1").Return(&sheets.Spreadsheet{
		Sheets: []sheets.Sheet{{Properties: sheets.SheetProperties{Title: "Audit"}}},
	}, nil)
	client.On("AppendValues", mock.Anything, "sheet-1", "'Audit'!A1", mock.Anything).
		Return(&sheets.APIError{StatusCode: 403, Message: "The caller does not have permission"})

	doc := NewDocument("sheet-1", NewSheetsBackend(client, "sheet-1"))
	tbl, err := doc.Open(context.Background(), "Audit")
	require.NoError(t, err)

	err = tbl.Append(context.Background(), []any{"x"})
	require.Error(t, err)
	assert.True(t, IsWrite(err))

	var apiErr *sheets.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 403, apiErr.StatusCode)
}

func TestSheetsBackend_ReplaceUsesSingleAppend(t *testing.T) {
	client := mocks.NewMockClient(t)
	rows := [][]any{{"Mapped Type"}, {"Retail"}, {"Office"}}
	client.On("GetSpreadsheet", mock.Anything, "sheet-1").Return(&sheets.Spreadsheet{
		Sheets: []sheets.Sheet{{Properties: sheets.SheetProperties{Title: "Summary Sheet"}}},
	}, nil)
	client.On("ClearValues", mock.Anything, "sheet-1", "'Summary Sheet'").Return(nil)
	client.On("AppendValues", mock.Anything, "sheet-1", "'Summary Sheet'!A1", rows).Return(nil).Once()

	doc := NewDocument("sheet-1", NewSheetsBackend(client, "sheet-1"))
	_, err := doc.Replace(context.Background(), "Summary Sheet", rows)
	require.NoError(t, err)
}
