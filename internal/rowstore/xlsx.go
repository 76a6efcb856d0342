package rowstore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v2"
)

// XLSXBackend stores worksheets as sheets of a workbook on disk. Every
// mutation rewrites the file.
type XLSXBackend struct {
	path string

	mu   sync.Mutex
	file *xlsx.File
}

// NewXLSX opens the workbook at path. When create is set a missing file is
// started as an empty workbook and written on the first mutation.
func NewXLSX(path string, create bool) (*XLSXBackend, error) {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(err, "xlsx: stat %s", path)
		}
		if !create {
			return nil, &NotFoundError{Document: path}
		}
		return &XLSXBackend{path: path, file: xlsx.NewFile()}, nil
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open file %s", path)
	}
	return &XLSXBackend{path: path, file: f}, nil
}

func (b *XLSXBackend) Worksheets(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make([]string, 0, len(b.file.Sheets))
	for _, s := range b.file.Sheets {
		names = append(names, s.Name)
	}
	return names, nil
}

func (b *XLSXBackend) Values(_ context.Context, worksheet string) ([][]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sheet, err := b.sheet(worksheet)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		rows = append(rows, trimRow(rowToStrings(row)))
	}
	// Trailing blank rows are formatting residue, not data.
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func (b *XLSXBackend) AddWorksheet(_ context.Context, worksheet string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.AddSheet(worksheet); err != nil {
		return eris.Wrapf(err, "xlsx: add sheet %q", worksheet)
	}
	return b.save()
}

func (b *XLSXBackend) Clear(_ context.Context, worksheet string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sheet, err := b.sheet(worksheet)
	if err != nil {
		return err
	}
	sheet.Rows = nil
	sheet.MaxRow = 0
	sheet.MaxCol = 0
	return b.save()
}

func (b *XLSXBackend) Append(_ context.Context, worksheet string, row []any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sheet, err := b.sheet(worksheet)
	if err != nil {
		return err
	}
	r := sheet.AddRow()
	for _, v := range row {
		setCell(r.AddCell(), v)
	}
	return b.save()
}

// AppendRows adds all rows and saves the workbook once.
func (b *XLSXBackend) AppendRows(_ context.Context, worksheet string, rows [][]any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sheet, err := b.sheet(worksheet)
	if err != nil {
		return err
	}
	for _, row := range rows {
		r := sheet.AddRow()
		for _, v := range row {
			setCell(r.AddCell(), v)
		}
	}
	return b.save()
}

func (b *XLSXBackend) Close() error {
	return nil
}

func (b *XLSXBackend) sheet(name string) (*xlsx.Sheet, error) {
	sheet, ok := b.file.Sheet[name]
	if !ok {
		return nil, eris.Errorf("xlsx: sheet %q not found", name)
	}
	return sheet, nil
}

func (b *XLSXBackend) save() error {
	if err := b.file.Save(b.path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", b.path)
	}
	return nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func setCell(cell *xlsx.Cell, v any) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			cell.SetInt64(i)
		} else if f, err := t.Float64(); err == nil {
			cell.SetFloat(f)
		} else {
			cell.SetString(t.String())
		}
	case decimal.Decimal:
		cell.SetFloat(t.InexactFloat64())
	case float64:
		cell.SetFloat(t)
	case int:
		cell.SetInt64(int64(t))
	case int64:
		cell.SetInt64(t)
	default:
		cell.SetString(cellString(v))
	}
}
