package dataprocessing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, sheet string, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestWorkbookSheet(t *testing.T) {
	buf := workbookBytes(t, "PLANILHA COMPLETA", [][]any{
		{"GRR", " NOME ", "", "nota"},
		{"GRR1001", "Ana", "ignorado", "7.5"},
		{"GRR1002", "", "", ""},
	})

	wb, err := OpenWorkbookReader(buf)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"PLANILHA COMPLETA"}, wb.SheetNames())

	tbl, err := wb.Sheet("PLANILHA COMPLETA")
	require.NoError(t, err)

	// Headers are trimmed and blank ones synthesized by position.
	assert.Equal(t, []string{"GRR", "NOME", "col_2", "nota"}, tbl.Columns())
	require.Equal(t, 2, tbl.NumRows())

	assert.Equal(t, "Ana", tbl.Cell(0, "NOME"))
	assert.Equal(t, "7.5", tbl.Cell(0, "nota"))
	// Blank cells read as missing, not as empty strings.
	assert.Nil(t, tbl.Cell(1, "NOME"))
	assert.Nil(t, tbl.Cell(1, "nota"))
}

func TestWorkbookSheetCellTypes(t *testing.T) {
	buf := workbookBytes(t, "PLANILHA COMPLETA", [][]any{
		{"GRR", "apareceu-na-avaliacao-semestre-anterior?", "flag-texto", "nota", "ativo"},
		{"GRR1001", 0.0, "0", 7.5, true},
	})

	wb, err := OpenWorkbookReader(buf)
	require.NoError(t, err)
	defer wb.Close()

	tbl, err := wb.Sheet("PLANILHA COMPLETA")
	require.NoError(t, err)
	require.Equal(t, 1, tbl.NumRows())

	// A numeric 0 and the literal text "0" are different values downstream.
	assert.Equal(t, 0.0, tbl.Cell(0, "apareceu-na-avaliacao-semestre-anterior?"))
	assert.Equal(t, "0", tbl.Cell(0, "flag-texto"))
	assert.Equal(t, 7.5, tbl.Cell(0, "nota"))
	assert.Equal(t, true, tbl.Cell(0, "ativo"))
}

func TestWorkbookSheetShortRows(t *testing.T) {
	buf := workbookBytes(t, "Geral", [][]any{
		{"GRR", "obs"},
		{"GRR1001"},
	})

	wb, err := OpenWorkbookReader(buf)
	require.NoError(t, err)
	defer wb.Close()

	tbl, err := wb.Sheet("Geral")
	require.NoError(t, err)
	require.Equal(t, 1, tbl.NumRows())
	assert.Equal(t, "GRR1001", tbl.Cell(0, "GRR"))
	assert.Nil(t, tbl.Cell(0, "obs"))
}

func TestWorkbookSheetMissing(t *testing.T) {
	buf := workbookBytes(t, "Sheet1", [][]any{{"a"}})

	wb, err := OpenWorkbookReader(buf)
	require.NoError(t, err)
	defer wb.Close()

	_, err = wb.Sheet("não existe")
	assert.Error(t, err)
}

func TestWorkbookSheetDuplicateHeaders(t *testing.T) {
	buf := workbookBytes(t, "Sheet1", [][]any{
		{"GRR", "GRR", "v"},
		{"a", "b", "c"},
	})

	wb, err := OpenWorkbookReader(buf)
	require.NoError(t, err)
	defer wb.Close()

	tbl, err := wb.Sheet("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, []string{"GRR", "GRR_2", "v"}, tbl.Columns())
	assert.Equal(t, "a", tbl.Cell(0, "GRR"))
	assert.Equal(t, "b", tbl.Cell(0, "GRR_2"))
}
