package ita

import (
	"errors"
	"regexp"
	"strings"

	"itacli/internal/dataprocessing"
)

// ErrMissingKeyColumn is returned when a table carries no identifier column:
// nothing is named GRR and no column name contains the token.
var ErrMissingKeyColumn = errors.New(`no column containing "GRR" found`)

var digitRun = regexp.MustCompile(`\d+`)

// NormalizeKeys standardizes the student identifier column to the canonical
// "GRR" + digits form. The column is located by exact name or,
// case-insensitively, by the GRR token anywhere in a column name, and renamed
// to GRR. Each value is rewritten around its first run of digits, preserved
// as captured; values without digits become missing keys, which joins never
// match. Already-normalized values pass through unchanged, so the operation
// is idempotent.
func NormalizeKeys(t *dataprocessing.Table) (*dataprocessing.Table, error) {
	keyCol := ""
	if t.HasColumn(ColGRR) {
		keyCol = ColGRR
	} else {
		for _, name := range t.Columns() {
			if strings.Contains(strings.ToUpper(name), "GRR") {
				keyCol = name
				break
			}
		}
	}
	if keyCol == "" {
		return nil, ErrMissingKeyColumn
	}

	out := t.Rename(keyCol, ColGRR)
	values := out.Column(ColGRR)
	for i, v := range values {
		digits := digitRun.FindString(dataprocessing.CellString(v))
		if digits == "" {
			values[i] = nil
			continue
		}
		values[i] = "GRR" + digits
	}
	return out.WithColumn(ColGRR, values), nil
}
