package ita

import (
	"itacli/internal/dataprocessing"
)

// classificationRules maps the final index to its risk tier. Rule order
// resolves the inclusive boundary overlaps: the strict low band is evaluated
// before the inclusive moderate band, so 0.3 and 0.6 classify as moderate.
func classificationRules() []Rule[float64] {
	return []Rule[float64]{
		{Name: "baixo", Match: func(v float64) bool { return v < thresholdLowRisk },
			Outcome: Outcome{Label: "baixo risco"}},
		{Name: "moderado", Match: func(v float64) bool { return v >= thresholdLowRisk && v <= thresholdModerateRisk },
			Outcome: Outcome{Label: "risco moderado"}},
		{Name: "alto", Match: func(v float64) bool { return v > thresholdModerateRisk },
			Outcome: Outcome{Label: "risco alto"}},
	}
}

// ComposeITA blends nota_final, the income score and the adherence indicator
// into the final index, classifies it and returns the table sorted by ITA
// descending (stable, missing values last). A missing component leaves the
// record's ITA missing and its classification on the explicit fallback label.
//
// The three components live on different scales (≈0–10, 0–30 and 0–1); the
// blend reproduces the original worksheet formula and must not be
// re-normalized without product sign-off.
func ComposeITA(t *dataprocessing.Table) *dataprocessing.Table {
	n := t.NumRows()
	notaFinal := t.FloatColumn(ColNotaFinal, sentinelTokens)
	renda := t.FloatColumn(ColPontuacaoRenda, sentinelTokens)
	adesao := t.FloatColumn(ColIndicadorAdesao, sentinelTokens)

	weightSum := blendNotaFinal + blendRenda + blendAdesao
	rules := classificationRules()
	fallback := unscored("não classificado")

	index := make([]float64, n)
	labels := make([]any, n)
	for i := 0; i < n; i++ {
		index[i] = (notaFinal[i]*blendNotaFinal + renda[i]*blendRenda + adesao[i]*blendAdesao) / weightSum
		labels[i] = Evaluate(rules, index[i], fallback).Label
	}

	return t.WithFloatColumn(ColITA, index).
		WithColumn(ColClassificacaoITA, labels).
		SortByFloatDesc(ColITA)
}
