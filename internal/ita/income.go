package ita

import (
	"strings"

	"itacli/internal/dataprocessing"
)

// incomeInput is one record's view of the income rule table: the trimmed,
// upper-cased income class and the coerced income metric (NaN when missing).
type incomeInput struct {
	class  string
	metric float64
}

// incomeRules is the ordered income scoring table. Evaluation is
// first-match-wins; records matching no rule score 0. NaN metrics fail every
// comparison and fall through to the default.
func incomeRules() []Rule[incomeInput] {
	return []Rule[incomeInput]{
		{Name: "A-alta", Match: func(in incomeInput) bool { return in.class == "A" && in.metric > 25 }, Outcome: Outcome{Score: 30}},
		{Name: "A-media", Match: func(in incomeInput) bool { return in.class == "A" && in.metric >= 11 && in.metric <= 25 }, Outcome: Outcome{Score: 25}},
		{Name: "A-baixa", Match: func(in incomeInput) bool { return in.class == "A" && in.metric >= 1 && in.metric <= 10 }, Outcome: Outcome{Score: 20}},
		{Name: "B-alta", Match: func(in incomeInput) bool { return in.class == "B" && in.metric >= 11 }, Outcome: Outcome{Score: 15}},
		{Name: "B-baixa", Match: func(in incomeInput) bool { return in.class == "B" && in.metric >= 0 && in.metric <= 10 }, Outcome: Outcome{Score: 10}},
		{Name: "C-alta", Match: func(in incomeInput) bool { return in.class == "C" && in.metric >= 11 }, Outcome: Outcome{Score: 8}},
		{Name: "C-baixa", Match: func(in incomeInput) bool { return in.class == "C" && in.metric >= 0 && in.metric <= 10 }, Outcome: Outcome{Score: 5}},
		{Name: "C-negativa", Match: func(in incomeInput) bool { return in.class == "C" && in.metric < 0 }, Outcome: Outcome{Score: 2}},
	}
}

// ApplyIncomeRules adds the pontuacao-renda column to the table. When either
// input column is absent every record scores 0 — the pipeline never aborts on
// a missing non-key column.
func ApplyIncomeRules(t *dataprocessing.Table) *dataprocessing.Table {
	n := t.NumRows()
	scores := make([]float64, n)

	if !t.HasColumn(ColClasseRenda) || !t.HasColumn(ColNotaRenda) {
		return t.WithFloatColumn(ColPontuacaoRenda, scores)
	}

	classes := t.Column(ColClasseRenda)
	metrics := t.FloatColumn(ColNotaRenda, sentinelTokens)
	rules := incomeRules()

	for i := 0; i < n; i++ {
		in := incomeInput{
			class:  strings.ToUpper(strings.TrimSpace(dataprocessing.CellString(classes[i]))),
			metric: metrics[i],
		}
		scores[i] = Evaluate(rules, in, Outcome{Score: 0}).Score
	}
	return t.WithFloatColumn(ColPontuacaoRenda, scores)
}
