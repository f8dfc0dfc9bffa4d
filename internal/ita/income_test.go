package ita

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itacli/internal/dataprocessing"
)

func incomeTable(rows ...[]any) *dataprocessing.Table {
	t := dataprocessing.NewTable([]string{ColGRR, ColClasseRenda, ColNotaRenda})
	for _, row := range rows {
		t.AppendRow(row)
	}
	return t
}

func TestApplyIncomeRules(t *testing.T) {
	tests := []struct {
		name   string
		class  any
		metric any
		want   float64
	}{
		{"class A above 25", "A", 30.0, 30},
		{"class A upper bound 25", "A", 25.0, 25},
		{"class A lower bound 11", "A", 11.0, 25},
		{"class A upper bound 10", "A", 10.0, 20},
		{"class A lower bound 1", "A", 1.0, 20},
		{"class A below 1 matches nothing", "A", 0.5, 0},
		{"class B at 11", "B", 11.0, 15},
		{"class B at zero", "B", 0.0, 10},
		{"class B negative matches nothing", "B", -1.0, 0},
		{"class C at 20", "C", 20.0, 8},
		{"class C at 10", "C", 10.0, 5},
		{"class C negative", "C", -3.0, 2},
		{"unknown class", "D", 30.0, 0},
		{"class is trimmed and upper-cased", " a ", 30.0, 30},
		{"metric given as text", "B", "12", 15},
		{"missing metric matches nothing", "A", nil, 0},
		{"sentinel metric matches nothing", "A", "#REF!", 0},
		{"missing class matches nothing", nil, 30.0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := ApplyIncomeRules(incomeTable([]any{"GRR1", tc.class, tc.metric}))

			require.True(t, out.HasColumn(ColPontuacaoRenda))
			assert.Equal(t, tc.want, out.Cell(0, ColPontuacaoRenda))
		})
	}
}

func TestApplyIncomeRulesMissingColumns(t *testing.T) {
	in := dataprocessing.NewTable([]string{ColGRR})
	in.AppendRow([]any{"GRR1"})
	in.AppendRow([]any{"GRR2"})

	out := ApplyIncomeRules(in)

	require.True(t, out.HasColumn(ColPontuacaoRenda))
	assert.Equal(t, 0.0, out.Cell(0, ColPontuacaoRenda))
	assert.Equal(t, 0.0, out.Cell(1, ColPontuacaoRenda))
}

func TestApplyIncomeRulesFirstMatchWins(t *testing.T) {
	// 11 sits inside both A bands' neighborhood; the higher band is listed
	// first and must win.
	out := ApplyIncomeRules(incomeTable(
		[]any{"GRR1", "A", 26.0},
		[]any{"GRR2", "A", 11.0},
	))

	assert.Equal(t, 30.0, out.Cell(0, ColPontuacaoRenda))
	assert.Equal(t, 25.0, out.Cell(1, ColPontuacaoRenda))
}
