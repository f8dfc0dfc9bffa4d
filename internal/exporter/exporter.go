// Package exporter writes the final scored table as CSV or XLSX reports.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"itacli/internal/dataprocessing"
)

// Writer exports tables to report files.
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a report writer.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// CSV writes the table as UTF-8 CSV with a BOM so Excel renders the
// accented column names correctly.
func (w *Writer) CSV(out io.Writer, t *dataprocessing.Table) error {
	if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	record := make([]string, t.NumCols())
	for _, row := range t.Rows() {
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// XLSX writes the table as a single-sheet workbook.
func (w *Writer) XLSX(out io.Writer, t *dataprocessing.Table, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, t.NumCols())
	for i, name := range t.Columns() {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i, row := range t.Rows() {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			if v, ok := cell.(float64); ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
				continue
			}
			cells[j] = cell
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell address: %w", err)
		}
		if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteCSVFile writes the CSV report to path, creating parent directories.
func (w *Writer) WriteCSVFile(path string, t *dataprocessing.Table) error {
	return w.writeFile(path, func(f *os.File) error { return w.CSV(f, t) })
}

// WriteXLSXFile writes the XLSX report to path, creating parent directories.
func (w *Writer) WriteXLSXFile(path string, t *dataprocessing.Table, sheet string) error {
	return w.writeFile(path, func(f *os.File) error { return w.XLSX(f, t, sheet) })
}

func (w *Writer) writeFile(path string, write func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}

	w.logger.Info("report written", slog.String("path", path))
	return nil
}

// formatCell renders one cell for CSV output. Missing values become empty
// fields and floats keep their shortest exact representation.
func formatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return ""
		}
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		if c {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", c)
	}
}
