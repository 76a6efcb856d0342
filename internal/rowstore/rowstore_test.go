package rowstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var auditHeader = []string{"Mapped Type", "Mapped Product Ordered", "Offline/Online", "Selection Label"}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	m := NewMemory().Seed("Summary Sheet", []string{"a"})
	doc := NewDocument("doc-1", m)

	tbl, err := doc.Open(ctx, "Summary Sheet")
	require.NoError(t, err)
	assert.Equal(t, "Summary Sheet", tbl.Name())
	assert.Equal(t, "doc-1", doc.ID())

	_, err = doc.Open(ctx, "Missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Missing", nf.Worksheet)
	assert.Equal(t, "doc-1", nf.Document)
}

func TestWorksheets_ReadError(t *testing.T) {
	m := NewMemory()
	m.FailOn(OpWorksheets, errors.New("boom"))
	doc := NewDocument("doc-1", m)

	_, err := doc.Worksheets(context.Background())
	require.Error(t, err)
	assert.True(t, IsRead(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestWorksheets_NotFoundPassesThrough(t *testing.T) {
	m := NewMemory()
	m.FailOn(OpWorksheets, &NotFoundError{Document: "doc-1"})
	doc := NewDocument("doc-1", m)

	_, err := doc.Worksheets(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsRead(err))
}

func TestReadAll(t *testing.T) {
	m := NewMemory().Seed("Summary Sheet",
		[]string{"Mapped Type", "Mapped Product Ordered", "", "Offline/Online"},
		[]string{"Retail", "Full Search", "ignored", "Online"},
		[]string{"", " ", ""},
		[]string{"Retail", "Update Search"},
	)
	tbl, err := NewDocument("doc", m).Open(context.Background(), "Summary Sheet")
	require.NoError(t, err)

	recs, err := tbl.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, Record{
		"Mapped Type":            "Retail",
		"Mapped Product Ordered": "Full Search",
		"Offline/Online":         "Online",
	}, recs[0])
	assert.Equal(t, "", recs[1]["Offline/Online"])
	_, hasBlank := recs[0][""]
	assert.False(t, hasBlank)
}

func TestReadAll_Empty(t *testing.T) {
	m := NewMemory().Seed("Summary Sheet")
	tbl, err := NewDocument("doc", m).Open(context.Background(), "Summary Sheet")
	require.NoError(t, err)

	recs, err := tbl.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)

	m.Seed("Summary Sheet", []string{"Mapped Type"})
	recs, err = tbl.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadAll_Error(t *testing.T) {
	m := NewMemory().Seed("Summary Sheet", []string{"a"})
	tbl, err := NewDocument("doc", m).Open(context.Background(), "Summary Sheet")
	require.NoError(t, err)

	m.FailOn(OpValues, errors.New("quota exceeded"))
	_, err = tbl.ReadAll(context.Background())
	require.Error(t, err)
	assert.True(t, IsRead(err))
}

func TestAppend(t *testing.T) {
	m := NewMemory().Seed("Audit", auditHeader)
	tbl, err := NewDocument("doc", m).Open(context.Background(), "Audit")
	require.NoError(t, err)

	require.NoError(t, tbl.Append(context.Background(), []any{"Retail", "Full Search", "Online", json.Number("120.5")}))

	rows := m.Rows("Audit")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Retail", "Full Search", "Online", "120.5"}, rows[1])

	m.FailOn(OpAppend, errors.New("permission denied"))
	err = tbl.Append(context.Background(), []any{"x"})
	require.Error(t, err)
	assert.True(t, IsWrite(err))
	assert.Len(t, m.Rows("Audit"), 2)
}

func TestEnsureWorksheet_Creates(t *testing.T) {
	m := NewMemory()
	doc := NewDocument("doc", m)

	tbl, err := doc.EnsureWorksheet(context.Background(), "Audit", auditHeader)
	require.NoError(t, err)
	assert.Equal(t, "Audit", tbl.Name())
	assert.Equal(t, [][]string{auditHeader}, m.Rows("Audit"))
}

func TestEnsureWorksheet_KeepsMatchingHeader(t *testing.T) {
	existing := []string{"Retail", "Full Search", "Online", "A. $100 - $120"}
	m := NewMemory().Seed("Audit", auditHeader, existing)
	doc := NewDocument("doc", m)

	_, err := doc.EnsureWorksheet(context.Background(), "Audit", auditHeader)
	require.NoError(t, err)
	assert.Equal(t, [][]string{auditHeader, existing}, m.Rows("Audit"))
}

func TestEnsureWorksheet_RewritesMismatchedHeader(t *testing.T) {
	m := NewMemory().Seed("Audit",
		[]string{"Old", "Header"},
		[]string{"stale", "row"},
	)
	doc := NewDocument("doc", m)

	_, err := doc.EnsureWorksheet(context.Background(), "Audit", auditHeader)
	require.NoError(t, err)
	assert.Equal(t, [][]string{auditHeader}, m.Rows("Audit"))
}

func TestEnsureWorksheet_EmptyWorksheetGetsHeader(t *testing.T) {
	m := NewMemory().Seed("Audit")
	doc := NewDocument("doc", m)

	_, err := doc.EnsureWorksheet(context.Background(), "Audit", auditHeader)
	require.NoError(t, err)
	assert.Equal(t, [][]string{auditHeader}, m.Rows("Audit"))
}

func TestEnsureWorksheet_Errors(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		m := NewMemory()
		m.FailOn(OpAddWorksheet, errors.New("no access"))
		_, err := NewDocument("doc", m).EnsureWorksheet(context.Background(), "Audit", auditHeader)
		require.Error(t, err)
		assert.True(t, IsWrite(err))
	})

	t.Run("clear", func(t *testing.T) {
		m := NewMemory().Seed("Audit", []string{"wrong"})
		m.FailOn(OpClear, errors.New("no access"))
		_, err := NewDocument("doc", m).EnsureWorksheet(context.Background(), "Audit", auditHeader)
		require.Error(t, err)
		assert.True(t, IsWrite(err))
	})

	t.Run("list", func(t *testing.T) {
		m := NewMemory()
		m.FailOn(OpWorksheets, errors.New("timeout"))
		_, err := NewDocument("doc", m).EnsureWorksheet(context.Background(), "Audit", auditHeader)
		require.Error(t, err)
		assert.True(t, IsRead(err))
	})
}

func TestMemory_FailOnClears(t *testing.T) {
	m := NewMemory().Seed("A")
	m.FailOn(OpValues, errors.New("x"))
	_, err := m.Values(context.Background(), "A")
	require.Error(t, err)

	m.FailOn(OpValues, nil)
	_, err = m.Values(context.Background(), "A")
	require.NoError(t, err)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `rowstore: document "d" not found`, (&NotFoundError{Document: "d"}).Error())
	assert.Equal(t, `rowstore: worksheet "w" not found in document "d"`,
		(&NotFoundError{Document: "d", Worksheet: "w"}).Error())

	inner := errors.New("inner")
	re := &ReadError{Op: "read", Err: inner}
	assert.Equal(t, "rowstore: read: inner", re.Error())
	assert.ErrorIs(t, re, inner)

	we := &WriteError{Op: "append", Err: inner}
	assert.ErrorIs(t, we, inner)
}

func TestCellString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{json.Number("12.50"), "12.50"},
		{float64(1.5), "1.5"},
		{7, "7"},
		{int64(9), "9"},
		{true, "TRUE"},
		{false, "FALSE"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cellString(tt.in))
	}
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	m := NewMemory().Seed("Summary Sheet", []string{"old"}, []string{"row"})
	doc := NewDocument("doc", m)

	tbl, err := doc.Replace(ctx, "Summary Sheet", [][]any{{"Mapped Type"}, {"Retail"}, {"Office"}})
	require.NoError(t, err)
	assert.Equal(t, "Summary Sheet", tbl.Name())
	assert.Equal(t, [][]string{{"Mapped Type"}, {"Retail"}, {"Office"}}, m.Rows("Summary Sheet"))

	_, err = doc.Replace(ctx, "New", [][]any{{"h"}})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"h"}}, m.Rows("New"))
}

func TestReplace_AppendFailure(t *testing.T) {
	m := NewMemory()
	m.FailOn(OpAppend, errors.New("quota"))

	_, err := NewDocument("doc", m).Replace(context.Background(), "New", [][]any{{"h"}})
	require.Error(t, err)
	assert.True(t, IsWrite(err))
}
