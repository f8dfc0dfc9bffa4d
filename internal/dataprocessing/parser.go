package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook wraps an open xlsx file and converts its sheets into Tables.
type Workbook struct {
	file *excelize.File
}

// OpenWorkbook opens an xlsx workbook from disk.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Workbook{file: f}, nil
}

// OpenWorkbookReader opens an xlsx workbook from a stream, for sources
// fetched over the network.
func OpenWorkbookReader(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Workbook{file: f}, nil
}

// Close releases the underlying file handle.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetNames lists the sheets in the workbook.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Sheet reads the named sheet into a Table. The first row supplies column
// names (blank headers are synthesized, duplicates suffixed); remaining rows
// become data rows with blank cells stored as missing. Numeric cells are
// stored as float64 and text cells as string, so downstream scoring can tell
// a numeric 0 apart from the literal text "0".
func (w *Workbook) Sheet(name string) (*Table, error) {
	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", name)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("col_%d", i)
		}
		header[i] = h
	}

	t := NewTable(header)
	for r, row := range rows[1:] {
		cells := make([]any, len(header))
		for i := range header {
			if i >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[i])
			if v == "" {
				continue
			}
			cells[i], err = w.typedCell(name, i, r+2, v)
			if err != nil {
				return nil, err
			}
		}
		t.AppendRow(cells)
	}

	slog.Debug("parsed sheet",
		slog.String("sheet", name),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))

	return t, nil
}

// typedCell converts one raw cell value according to the cell's stored type.
// String cells (shared, inline, formula results and errors) stay text even
// when their content looks numeric; boolean cells become bool; everything
// else is parsed as a number, falling back to text when parsing fails.
func (w *Workbook) typedCell(sheet string, col, row int, raw string) (any, error) {
	addr, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return nil, fmt.Errorf("cell address (%d,%d): %w", col+1, row, err)
	}
	ct, err := w.file.GetCellType(sheet, addr)
	if err != nil {
		return nil, fmt.Errorf("cell type %s!%s: %w", sheet, addr, err)
	}

	switch ct {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return raw, nil
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	default:
		// Number, date and untyped cells all carry numeric raw values.
		if f, perr := strconv.ParseFloat(raw, 64); perr == nil {
			return f, nil
		}
		return raw, nil
	}
}
