package rowstore

import (
	"context"
	"slices"
	"sync"

	"github.com/rotisserie/eris"
)

// Memory operations that can be made to fail with FailOn.
const (
	OpWorksheets   = "worksheets"
	OpValues       = "values"
	OpAddWorksheet = "add_worksheet"
	OpClear        = "clear"
	OpAppend       = "append"
)

// Memory is an in-process Backend used for tests and dry runs.
type Memory struct {
	mu     sync.Mutex
	order  []string
	sheets map[string][][]string
	fail   map[string]error
}

// NewMemory creates an empty in-memory document.
func NewMemory() *Memory {
	return &Memory{
		sheets: make(map[string][][]string),
		fail:   make(map[string]error),
	}
}

// Seed creates (or replaces) a worksheet with the given rows.
func (m *Memory) Seed(worksheet string, rows ...[]string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sheets[worksheet]; !ok {
		m.order = append(m.order, worksheet)
	}
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = slices.Clone(r)
	}
	m.sheets[worksheet] = cp
	return m
}

// FailOn makes op return err until cleared with a nil err.
func (m *Memory) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.fail, op)
		return
	}
	m.fail[op] = err
}

// Rows returns a copy of the worksheet contents.
func (m *Memory) Rows(worksheet string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.sheets[worksheet]
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = slices.Clone(r)
	}
	return cp
}

func (m *Memory) Worksheets(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail[OpWorksheets]; err != nil {
		return nil, err
	}
	return slices.Clone(m.order), nil
}

func (m *Memory) Values(_ context.Context, worksheet string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail[OpValues]; err != nil {
		return nil, err
	}
	rows, ok := m.sheets[worksheet]
	if !ok {
		return nil, eris.Errorf("memory: worksheet %q not found", worksheet)
	}
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = trimRow(slices.Clone(r))
	}
	return cp, nil
}

func (m *Memory) AddWorksheet(_ context.Context, worksheet string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail[OpAddWorksheet]; err != nil {
		return err
	}
	if _, ok := m.sheets[worksheet]; ok {
		return eris.Errorf("memory: worksheet %q already exists", worksheet)
	}
	m.order = append(m.order, worksheet)
	m.sheets[worksheet] = nil
	return nil
}

func (m *Memory) Clear(_ context.Context, worksheet string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail[OpClear]; err != nil {
		return err
	}
	if _, ok := m.sheets[worksheet]; !ok {
		return eris.Errorf("memory: worksheet %q not found", worksheet)
	}
	m.sheets[worksheet] = nil
	return nil
}

func (m *Memory) Append(_ context.Context, worksheet string, row []any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail[OpAppend]; err != nil {
		return err
	}
	if _, ok := m.sheets[worksheet]; !ok {
		return eris.Errorf("memory: worksheet %q not found", worksheet)
	}
	m.sheets[worksheet] = append(m.sheets[worksheet], rowStrings(row))
	return nil
}

func (m *Memory) Close() error {
	return nil
}
