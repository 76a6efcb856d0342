package rowstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteBackend stores worksheets in a SQLite file. Each appended row is kept
// as a JSON array of cells.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLite opens the database at path and configures WAL mode. When create
// is unset a missing file is reported as *NotFoundError.
func NewSQLite(ctx context.Context, path string, create bool) (*SQLiteBackend, error) {
	if path != ":memory:" && !create {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Document: path}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	b := &SQLiteBackend{db: db}
	if err := b.migrate(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	return b, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS worksheets (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS worksheet_rows (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	worksheet  TEXT NOT NULL REFERENCES worksheets(name) ON DELETE CASCADE,
	cells      TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_worksheet_rows_worksheet ON worksheet_rows(worksheet, id);
`

func (b *SQLiteBackend) migrate(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (b *SQLiteBackend) Worksheets(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT name FROM worksheets ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list worksheets")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan worksheet")
		}
		names = append(names, name)
	}
	return names, eris.Wrap(rows.Err(), "sqlite: list worksheets iterate")
}

func (b *SQLiteBackend) Values(ctx context.Context, worksheet string) ([][]string, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT cells FROM worksheet_rows WHERE worksheet = ? ORDER BY id`, worksheet)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: read worksheet %q", worksheet)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan row")
		}
		dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
		dec.UseNumber()
		var cells []any
		if err := dec.Decode(&cells); err != nil {
			return nil, eris.Wrapf(err, "sqlite: decode row in %q", worksheet)
		}
		out = append(out, trimRow(rowStrings(cells)))
	}
	return out, eris.Wrap(rows.Err(), "sqlite: read worksheet iterate")
}

func (b *SQLiteBackend) AddWorksheet(ctx context.Context, worksheet string) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO worksheets (name, created_at) VALUES (?, ?)`,
		worksheet, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: add worksheet %q", worksheet)
}

func (b *SQLiteBackend) Clear(ctx context.Context, worksheet string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM worksheet_rows WHERE worksheet = ?`, worksheet)
	return eris.Wrapf(err, "sqlite: clear worksheet %q", worksheet)
}

func (b *SQLiteBackend) Append(ctx context.Context, worksheet string, row []any) error {
	cells, err := json.Marshal(rowStrings(row))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal row")
	}
	_, err = b.db.ExecContext(ctx,
		`INSERT INTO worksheet_rows (worksheet, cells, created_at) VALUES (?, ?, ?)`,
		worksheet, string(cells), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: append to %q", worksheet)
}

// AppendRows inserts all rows in one transaction.
func (b *SQLiteBackend) AppendRows(ctx context.Context, worksheet string, rows [][]any) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin append")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for _, row := range rows {
		cells, err := json.Marshal(rowStrings(row))
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal row")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO worksheet_rows (worksheet, cells, created_at) VALUES (?, ?, ?)`,
			worksheet, string(cells), now,
		); err != nil {
			return eris.Wrapf(err, "sqlite: append to %q", worksheet)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit append")
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
