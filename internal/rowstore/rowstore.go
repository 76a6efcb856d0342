// Package rowstore reads and appends worksheet rows in a tabular document
// (a Google spreadsheet, an XLSX workbook or a SQLite file).
package rowstore

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Backend is the driver surface of a tabular document.
type Backend interface {
	// Worksheets lists worksheet names in document order. Returns a
	// *NotFoundError when the document itself does not exist.
	Worksheets(ctx context.Context) ([]string, error)
	// Values returns every row of the worksheet, header first.
	Values(ctx context.Context, worksheet string) ([][]string, error)
	AddWorksheet(ctx context.Context, worksheet string) error
	Clear(ctx context.Context, worksheet string) error
	Append(ctx context.Context, worksheet string, row []any) error
	Close() error
}

// batchAppender is implemented by backends that write many rows in one call.
type batchAppender interface {
	AppendRows(ctx context.Context, worksheet string, rows [][]any) error
}

// Record is one data row keyed by header name.
type Record map[string]string

// Document is an opened tabular document.
type Document struct {
	id      string
	backend Backend
}

// NewDocument wraps a backend. id is used in errors and logs.
func NewDocument(id string, b Backend) *Document {
	return &Document{id: id, backend: b}
}

// ID returns the document identifier.
func (d *Document) ID() string {
	return d.id
}

// Close releases the backend.
func (d *Document) Close() error {
	return d.backend.Close()
}

// Worksheets lists worksheet names.
func (d *Document) Worksheets(ctx context.Context) ([]string, error) {
	names, err := d.backend.Worksheets(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, err
		}
		return nil, &ReadError{Op: "list worksheets", Err: err}
	}
	return names, nil
}

// Open resolves a worksheet by name.
func (d *Document) Open(ctx context.Context, name string) (*Table, error) {
	names, err := d.Worksheets(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(names, name) {
		return nil, &NotFoundError{Document: d.id, Worksheet: name}
	}
	return &Table{doc: d, name: name}, nil
}

// EnsureWorksheet returns the named worksheet, creating it with header as its
// first row if absent. An existing worksheet whose first row differs from
// header is cleared and the header rewritten.
func (d *Document) EnsureWorksheet(ctx context.Context, name string, header []string) (*Table, error) {
	names, err := d.Worksheets(ctx)
	if err != nil {
		return nil, err
	}

	t := &Table{doc: d, name: name}
	if !slices.Contains(names, name) {
		if err := d.backend.AddWorksheet(ctx, name); err != nil {
			return nil, &WriteError{Op: "add worksheet " + name, Err: err}
		}
		zap.L().Info("rowstore: created worksheet",
			zap.String("document", d.id),
			zap.String("worksheet", name),
		)
		return t, t.appendHeader(ctx, header)
	}

	values, err := t.Values(ctx)
	if err != nil {
		return nil, err
	}
	if len(values) > 0 && slices.Equal(values[0], header) {
		return t, nil
	}

	zap.L().Warn("rowstore: rewriting worksheet header",
		zap.String("document", d.id),
		zap.String("worksheet", name),
		zap.Int("discarded_rows", len(values)),
	)
	if err := d.backend.Clear(ctx, name); err != nil {
		return nil, &WriteError{Op: "clear worksheet " + name, Err: err}
	}
	return t, t.appendHeader(ctx, header)
}

// Replace empties the named worksheet, creating it if absent, and writes
// rows starting at the first row.
func (d *Document) Replace(ctx context.Context, name string, rows [][]any) (*Table, error) {
	names, err := d.Worksheets(ctx)
	if err != nil {
		return nil, err
	}

	t := &Table{doc: d, name: name}
	if slices.Contains(names, name) {
		if err := d.backend.Clear(ctx, name); err != nil {
			return nil, &WriteError{Op: "clear worksheet " + name, Err: err}
		}
	} else if err := d.backend.AddWorksheet(ctx, name); err != nil {
		return nil, &WriteError{Op: "add worksheet " + name, Err: err}
	}
	return t, t.AppendRows(ctx, rows)
}

// Table is a resolved worksheet.
type Table struct {
	doc  *Document
	name string
}

// Name returns the worksheet name.
func (t *Table) Name() string {
	return t.name
}

// Values returns the raw rows of the worksheet, header first.
func (t *Table) Values(ctx context.Context) ([][]string, error) {
	values, err := t.doc.backend.Values(ctx, t.name)
	if err != nil {
		return nil, &ReadError{Op: "read worksheet " + t.name, Err: err}
	}
	return values, nil
}

// ReadAll returns every non-blank data row keyed by the header row. An empty
// worksheet yields no records and no error.
func (t *Table) ReadAll(ctx context.Context) ([]Record, error) {
	values, err := t.Values(ctx)
	if err != nil {
		return nil, err
	}
	return toRecords(values), nil
}

// Append adds one row after the last row of the worksheet.
func (t *Table) Append(ctx context.Context, row []any) error {
	if err := t.doc.backend.Append(ctx, t.name, row); err != nil {
		return &WriteError{Op: "append to " + t.name, Err: err}
	}
	return nil
}

// AppendRows adds rows in order. Backends without a bulk write get one
// Append per row; a failure part way leaves the earlier rows written.
func (t *Table) AppendRows(ctx context.Context, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	if b, ok := t.doc.backend.(batchAppender); ok {
		if err := b.AppendRows(ctx, t.name, rows); err != nil {
			return &WriteError{Op: "append to " + t.name, Err: err}
		}
		return nil
	}
	for _, row := range rows {
		if err := t.Append(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) appendHeader(ctx context.Context, header []string) error {
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	return t.Append(ctx, row)
}

func toRecords(values [][]string) []Record {
	if len(values) < 2 {
		return nil
	}
	header := values[0]
	records := make([]Record, 0, len(values)-1)
	for _, row := range values[1:] {
		if blank(row) {
			continue
		}
		rec := make(Record, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// trimRow drops trailing empty cells so every backend reports rows the way
// the Sheets API does.
func trimRow(row []string) []string {
	n := len(row)
	for n > 0 && row[n-1] == "" {
		n--
	}
	return row[:n]
}
