package ita

import (
	"regexp"
	"strconv"
	"strings"

	"itacli/internal/dataprocessing"
)

var naoVariant = regexp.MustCompile(`\bNAO\b`)

func trimmed(s string) string { return strings.TrimSpace(s) }

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// normalizeYesNo canonicalizes a free-text compliance cell to "SIM" or "NÃO".
// Unaccented NAO variants are rewritten, blank and textual-null cells read as
// missing, and any other text passes through upper-cased so unexpected values
// end up on the fallback rule instead of a genuine outcome.
func normalizeYesNo(v any) (value string, ok bool) {
	s := strings.ToUpper(trimmed(dataprocessing.CellString(v)))
	s = naoVariant.ReplaceAllString(s, "NÃO")
	switch s {
	case "", "NAN", "NONE":
		return "", false
	}
	return s, true
}

// boolFromCell coerces a presence flag that upstream sheets record as a
// boolean, a number, or yes/no text. Missing reads as false; numeric cells are
// truncated to integer before the zero test.
func boolFromCell(v any) bool {
	switch c := v.(type) {
	case nil:
		return false
	case bool:
		return c
	case float64:
		return int(c) != 0
	case string:
		s := strings.ToUpper(trimmed(c))
		switch s {
		case "TRUE", "VERDADEIRO":
			return true
		case "FALSE", "FALSO", "":
			return false
		}
		if f, ok := parseFloat(s); ok {
			return int(f) != 0
		}
		norm, ok := normalizeYesNo(s)
		return ok && norm == "SIM"
	default:
		return false
	}
}

// adherenceInput is one record's view of the adherence rule table.
type adherenceInput struct {
	incoming      bool   // expected hours below the incoming-student mark
	present       bool   // attended the prior evaluation
	status        string // normalized compliance signal
	statusMissing bool
}

// adherenceRules is the ordered adherence scoring table. Incoming students
// take the first rule regardless of the other signals; the remaining six
// rules cover the presence × compliance grid, blanks included.
func adherenceRules() []Rule[adherenceInput] {
	return []Rule[adherenceInput]{
		{Name: "ingressante", Match: func(in adherenceInput) bool { return in.incoming },
			Outcome: Outcome{Score: 0.0, Label: "Sem risco / não pontua"}},
		{Name: "ausente-atende", Match: func(in adherenceInput) bool { return !in.present && in.status == "SIM" },
			Outcome: Outcome{Score: 0.2, Label: "Estável"}},
		{Name: "ausente-nao-atende", Match: func(in adherenceInput) bool { return !in.present && in.status == "NÃO" },
			Outcome: Outcome{Score: 0.6, Label: "Em alerta"}},
		{Name: "ausente-em-branco", Match: func(in adherenceInput) bool { return !in.present && in.statusMissing },
			Outcome: Outcome{Score: 0.8, Label: "Prioridade de inserção"}},
		{Name: "presente-atende", Match: func(in adherenceInput) bool { return in.present && in.status == "SIM" },
			Outcome: Outcome{Score: 0.1, Label: "Estável"}},
		{Name: "presente-nao-atende", Match: func(in adherenceInput) bool { return in.present && in.status == "NÃO" },
			Outcome: Outcome{Score: 1.0, Label: "Crítico / penalização máxima"}},
		{Name: "presente-em-branco", Match: func(in adherenceInput) bool { return in.present && in.statusMissing },
			Outcome: Outcome{Score: 0.9, Label: "Prioridade de convocação"}},
	}
}

// ApplyAdherenceRules adds the indicador-acomp-adesao score and its
// classification label to the table. Absent input columns degrade to their
// defaults (blank signal, not present, not incoming) instead of aborting.
func ApplyAdherenceRules(t *dataprocessing.Table) *dataprocessing.Table {
	n := t.NumRows()

	statusCells := t.Column(ColCriteriosAdesao)
	if statusCells == nil {
		statusCells = make([]any, n)
	}
	presentCells := t.Column(ColAvaliacao2024)
	if presentCells == nil {
		presentCells = make([]any, n)
	}
	expectedHours := t.FloatColumn(ColChMediaEsperada, sentinelTokens)

	rules := adherenceRules()
	fallback := unscored("Regra não classificada")

	scores := make([]float64, n)
	labels := make([]any, n)
	for i := 0; i < n; i++ {
		status, ok := normalizeYesNo(statusCells[i])
		in := adherenceInput{
			incoming:      expectedHours[i] < incomingStudentHours,
			present:       boolFromCell(presentCells[i]),
			status:        status,
			statusMissing: !ok,
		}
		out := Evaluate(rules, in, fallback)
		scores[i] = out.Score
		labels[i] = out.Label
	}

	return t.WithFloatColumn(ColIndicadorAdesao, scores).
		WithColumn(ColClassificacaoAdesao, labels)
}
