package ita

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itacli/internal/dataprocessing"
)

func adherenceTable(rows ...[]any) *dataprocessing.Table {
	t := dataprocessing.NewTable([]string{
		ColGRR, ColChMediaEsperada, ColAvaliacao2024, ColCriteriosAdesao,
	})
	for _, row := range rows {
		t.AppendRow(row)
	}
	return t
}

func TestApplyAdherenceRules(t *testing.T) {
	tests := []struct {
		name      string
		expected  any // ch_media_esperada
		present   any
		status    any
		wantScore any
		wantLabel string
	}{
		{"incoming student never scores", 16.0, 1.0, "Não", 0.0, "Sem risco / não pontua"},
		{"absent and compliant", 48.0, 0.0, "Sim", 0.2, "Estável"},
		{"absent and non-compliant", 48.0, nil, "Não", 0.6, "Em alerta"},
		{"absent with blank signal", 48.0, 0.0, nil, 0.8, "Prioridade de inserção"},
		{"present and compliant", 48.0, 1.0, "sim", 0.1, "Estável"},
		{"present and non-compliant", 48.0, "VERDADEIRO", "não", 1.0, "Crítico / penalização máxima"},
		{"present with blank signal", 48.0, 1.0, "", 0.9, "Prioridade de convocação"},
		{"unaccented no variant", 48.0, 1.0, "NAO", 1.0, "Crítico / penalização máxima"},
		{"textual null reads as blank", 48.0, 1.0, "None", 0.9, "Prioridade de convocação"},
		{"unexpected text hits the fallback", 48.0, 1.0, "TALVEZ", nil, "Regra não classificada"},
		{"missing expected hours is not incoming", nil, 0.0, "Sim", 0.2, "Estável"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := ApplyAdherenceRules(adherenceTable([]any{"GRR1", tc.expected, tc.present, tc.status}))

			require.True(t, out.HasColumn(ColIndicadorAdesao))
			require.True(t, out.HasColumn(ColClassificacaoAdesao))
			assert.Equal(t, tc.wantScore, out.Cell(0, ColIndicadorAdesao))
			assert.Equal(t, tc.wantLabel, out.Cell(0, ColClassificacaoAdesao))
		})
	}
}

func TestApplyAdherenceRulesMissingColumns(t *testing.T) {
	in := dataprocessing.NewTable([]string{ColGRR})
	in.AppendRow([]any{"GRR1"})

	out := ApplyAdherenceRules(in)

	// Absent inputs degrade to "absent with blank signal".
	assert.Equal(t, 0.8, out.Cell(0, ColIndicadorAdesao))
	assert.Equal(t, "Prioridade de inserção", out.Cell(0, ColClassificacaoAdesao))
}

func TestNormalizeYesNo(t *testing.T) {
	tests := []struct {
		in     any
		want   string
		wantOK bool
	}{
		{"Sim", "SIM", true},
		{" não ", "NÃO", true},
		{"NAO", "NÃO", true},
		{"nao", "NÃO", true},
		{"", "", false},
		{nil, "", false},
		{"NaN", "", false},
		{"None", "", false},
		{"talvez", "TALVEZ", true},
	}
	for _, tc := range tests {
		got, ok := normalizeYesNo(tc.in)
		assert.Equal(t, tc.wantOK, ok, "input %v", tc.in)
		assert.Equal(t, tc.want, got, "input %v", tc.in)
	}
}

func TestBoolFromCell(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{true, true},
		{false, false},
		{1.0, true},
		{0.0, false},
		{0.4, false}, // truncated before the zero test
		{"1", true},
		{"0", false},
		{"TRUE", true},
		{"Verdadeiro", true},
		{"falso", false},
		{"", false},
		{"sim", true},
		{"não", false},
		{"x", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, boolFromCell(tc.in), "input %v", tc.in)
	}
}
