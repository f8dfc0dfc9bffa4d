package dataprocessing

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Table is a column-ordered record set parsed from one workbook sheet.
// Cells are string (raw spreadsheet text), float64 (derived values) or nil
// (missing). Tables are treated as immutable values between pipeline stages:
// every transforming method returns a new Table and leaves the receiver
// untouched.
type Table struct {
	cols []string
	idx  map[string]int
	rows [][]any
}

// NewTable creates an empty table with the given column names. Duplicate
// names are made unique with a numeric suffix so column lookup stays
// unambiguous.
func NewTable(columns []string) *Table {
	t := &Table{
		cols: make([]string, 0, len(columns)),
		idx:  make(map[string]int, len(columns)),
	}
	for _, name := range columns {
		t.appendColumnName(name)
	}
	return t
}

func (t *Table) appendColumnName(name string) {
	unique := name
	for n := 2; ; n++ {
		if _, exists := t.idx[unique]; !exists {
			break
		}
		unique = fmt.Sprintf("%s_%d", name, n)
	}
	t.idx[unique] = len(t.cols)
	t.cols = append(t.cols, unique)
}

// AppendRow adds one row, padding or truncating to the column count.
func (t *Table) AppendRow(cells []any) {
	row := make([]any, len(t.cols))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// HasColumn reports whether a column with the exact name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.idx[name]
	return ok
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.idx[name]; ok {
		return i
	}
	return -1
}

// Cell returns the value at the given row and column, nil when the column
// does not exist.
func (t *Table) Cell(row int, name string) any {
	i, ok := t.idx[name]
	if !ok || row < 0 || row >= len(t.rows) {
		return nil
	}
	return t.rows[row][i]
}

// Column returns a copy of the named column's cells, or nil when absent.
func (t *Table) Column(name string) []any {
	i, ok := t.idx[name]
	if !ok {
		return nil
	}
	out := make([]any, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out
}

// Rows returns a deep copy of all rows.
func (t *Table) Rows() [][]any {
	out := make([][]any, len(t.rows))
	for r, row := range t.rows {
		cp := make([]any, len(row))
		copy(cp, row)
		out[r] = cp
	}
	return out
}

func (t *Table) clone() *Table {
	out := NewTable(t.cols)
	for _, row := range t.rows {
		out.AppendRow(row)
	}
	return out
}

// WithColumn returns a new table with the named column set to the given
// values. An existing column is replaced in place; a new one is appended at
// the end, which keeps derived columns in creation order.
func (t *Table) WithColumn(name string, values []any) *Table {
	out := t.clone()
	i, exists := out.idx[name]
	if !exists {
		out.appendColumnName(name)
		i = out.idx[name]
		for r := range out.rows {
			out.rows[r] = append(out.rows[r], nil)
		}
	}
	for r := range out.rows {
		if r < len(values) {
			out.rows[r][i] = values[r]
		} else {
			out.rows[r][i] = nil
		}
	}
	return out
}

// WithFloatColumn is WithColumn for derived numeric columns. NaN values are
// stored as missing cells.
func (t *Table) WithFloatColumn(name string, values []float64) *Table {
	cells := make([]any, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			cells[i] = nil
		} else {
			cells[i] = v
		}
	}
	return t.WithColumn(name, cells)
}

// WithConstColumn sets every row of the named column to the same value.
func (t *Table) WithConstColumn(name string, value any) *Table {
	cells := make([]any, t.NumRows())
	for i := range cells {
		cells[i] = value
	}
	return t.WithColumn(name, cells)
}

// ForceColumns returns a new table guaranteed to contain every named column,
// synthesizing missing ones as all-missing.
func (t *Table) ForceColumns(names []string) *Table {
	out := t
	for _, name := range names {
		if !out.HasColumn(name) {
			out = out.WithColumn(name, make([]any, out.NumRows()))
		}
	}
	return out
}

// Select returns a new table containing only the named columns, in the order
// given. Names absent from the table are skipped.
func (t *Table) Select(names []string) *Table {
	var kept []string
	var srcIdx []int
	for _, name := range names {
		if i, ok := t.idx[name]; ok {
			kept = append(kept, name)
			srcIdx = append(srcIdx, i)
		}
	}
	out := NewTable(kept)
	for _, row := range t.rows {
		cells := make([]any, len(srcIdx))
		for j, i := range srcIdx {
			cells[j] = row[i]
		}
		out.AppendRow(cells)
	}
	return out
}

// Rename returns a new table with the column renamed. Renaming a missing
// column is a no-op.
func (t *Table) Rename(from, to string) *Table {
	out := t.clone()
	i, ok := out.idx[from]
	if !ok || from == to {
		return out
	}
	delete(out.idx, from)
	out.cols[i] = to
	out.idx[to] = i
	return out
}

// SortByFloatDesc returns a new table with rows sorted by the named numeric
// column in descending order. The sort is stable, so ties keep their input
// order. Rows whose value is missing or non-numeric sort last.
func (t *Table) SortByFloatDesc(name string) *Table {
	out := t.clone()
	i, ok := out.idx[name]
	if !ok {
		return out
	}
	sort.SliceStable(out.rows, func(a, b int) bool {
		va, aok := CellFloat(out.rows[a][i])
		vb, bok := CellFloat(out.rows[b][i])
		if aok != bok {
			return aok
		}
		if !aok {
			return false
		}
		return va > vb
	})
	return out
}

// DedupLastByKey drops duplicate rows on the key column, keeping the last
// occurrence of each key at its original position. Rows with a missing key
// are always kept.
func (t *Table) DedupLastByKey(key string) *Table {
	ki, ok := t.idx[key]
	if !ok {
		return t.clone()
	}
	last := make(map[string]int, len(t.rows))
	for r, row := range t.rows {
		if k, kok := cellKey(row[ki]); kok {
			last[k] = r
		}
	}
	out := NewTable(t.cols)
	for r, row := range t.rows {
		k, kok := cellKey(row[ki])
		if kok && last[k] != r {
			continue
		}
		out.AppendRow(row)
	}
	return out
}

// LeftJoin joins the right table onto the receiver on the key column. Every
// left row appears exactly once; unmatched rows get missing cells for the
// right-side columns. Missing keys never match. Clashing right-side column
// names are suffixed so both sides coexist. A receiver without the key
// column is returned unchanged.
func (t *Table) LeftJoin(right *Table, key string) *Table {
	lki, ok := t.idx[key]
	if !ok {
		return t.clone()
	}
	out, rightCols, rowsByKey := t.joinShell(right, key)
	for _, row := range t.rows {
		cells := make([]any, 0, out.NumCols())
		cells = append(cells, row...)
		if k, ok := cellKey(row[lki]); ok {
			if rr, found := rowsByKey[k]; found {
				for _, ci := range rightCols {
					cells = append(cells, right.rows[rr][ci])
				}
				out.AppendRow(cells)
				continue
			}
		}
		for range rightCols {
			cells = append(cells, nil)
		}
		out.AppendRow(cells)
	}
	return out
}

// OuterJoin unions the right table with the receiver on the key column: left
// rows come first (joined where keys match), then right rows whose key never
// matched a left row. A receiver without the key column is returned
// unchanged; a right table without it contributes no rows.
func (t *Table) OuterJoin(right *Table, key string) *Table {
	lki, ok := t.idx[key]
	if !ok {
		return t.clone()
	}
	out, rightCols, rowsByKey := t.joinShell(right, key)

	matched := make(map[int]bool, len(rowsByKey))
	for _, row := range t.rows {
		cells := make([]any, 0, out.NumCols())
		cells = append(cells, row...)
		if k, ok := cellKey(row[lki]); ok {
			if rr, found := rowsByKey[k]; found {
				matched[rr] = true
				for _, ci := range rightCols {
					cells = append(cells, right.rows[rr][ci])
				}
				out.AppendRow(cells)
				continue
			}
		}
		for range rightCols {
			cells = append(cells, nil)
		}
		out.AppendRow(cells)
	}

	rki := right.ColumnIndex(key)
	if rki < 0 {
		// No key column on the right: nothing can union in.
		return out
	}
	for rr, rrow := range right.rows {
		if k, ok := cellKey(rrow[rki]); ok {
			if rowsByKey[k] != rr {
				continue // superseded duplicate; only the last occurrence joins
			}
			if matched[rr] {
				continue
			}
		}
		// Keyed rows that never matched a left row, and rows with missing
		// keys, are appended with missing left-side cells.
		cells := make([]any, out.NumCols())
		cells[lki] = rrow[rki]
		base := t.NumCols()
		for j, ci := range rightCols {
			cells[base+j] = rrow[ci]
		}
		out.AppendRow(cells)
	}
	return out
}

// joinShell builds the joined table's column set and an index of right rows
// by key (last occurrence wins, matching the dedup policy).
func (t *Table) joinShell(right *Table, key string) (*Table, []int, map[string]int) {
	cols := make([]string, 0, t.NumCols()+right.NumCols())
	cols = append(cols, t.cols...)
	var rightCols []int
	for i, name := range right.cols {
		if name == key {
			continue
		}
		rightCols = append(rightCols, i)
		if t.HasColumn(name) {
			cols = append(cols, name+"_y")
		} else {
			cols = append(cols, name)
		}
	}
	out := NewTable(cols)

	rowsByKey := make(map[string]int, right.NumRows())
	if rki := right.ColumnIndex(key); rki >= 0 {
		for r, row := range right.rows {
			if k, ok := cellKey(row[rki]); ok {
				rowsByKey[k] = r
			}
		}
	}
	return out, rightCols, rowsByKey
}

// cellKey converts a cell into a join key. Missing and blank cells yield no
// key, so they never participate in joins.
func cellKey(v any) (string, bool) {
	switch c := v.(type) {
	case nil:
		return "", false
	case string:
		k := strings.TrimSpace(c)
		return k, k != ""
	case float64:
		if math.IsNaN(c) {
			return "", false
		}
		return strconv.FormatFloat(c, 'f', -1, 64), true
	default:
		return fmt.Sprint(c), true
	}
}

// CellFloat converts a cell to a numeric value. Strings are trimmed and
// parsed; thousands separators are removed the way the report parsers do.
func CellFloat(v any) (float64, bool) {
	switch c := v.(type) {
	case float64:
		if math.IsNaN(c) {
			return 0, false
		}
		return c, true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(c), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// CellString renders a cell as text. Missing cells are empty; derived floats
// use the shortest exact representation.
func CellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		if math.IsNaN(c) {
			return ""
		}
		return strconv.FormatFloat(c, 'f', -1, 64)
	default:
		return fmt.Sprint(c)
	}
}

// FloatColumn coerces the named column to numeric values. Cells matching one
// of the sentinel tokens are treated as missing before coercion, and missing
// or non-convertible cells become NaN. An absent column yields an all-NaN
// slice, so downstream calculators can substitute their defaults.
func (t *Table) FloatColumn(name string, sentinels []string) []float64 {
	out := make([]float64, t.NumRows())
	i, ok := t.idx[name]
	if !ok {
		for r := range out {
			out[r] = math.NaN()
		}
		return out
	}
	for r, row := range t.rows {
		out[r] = coerceFloat(row[i], sentinels)
	}
	return out
}

func coerceFloat(v any, sentinels []string) float64 {
	if s, ok := v.(string); ok {
		trimmed := strings.TrimSpace(s)
		for _, tok := range sentinels {
			if trimmed == tok {
				return math.NaN()
			}
		}
	}
	if f, ok := CellFloat(v); ok {
		return f
	}
	return math.NaN()
}
