package ita

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itacli/internal/dataprocessing"
)

func buildTable(columns []string, rows ...[]any) *dataprocessing.Table {
	t := dataprocessing.NewTable(columns)
	for _, row := range rows {
		t.AppendRow(row)
	}
	return t
}

// calculatorFixture models two students: GRR1001 performs well (90% approval,
// nothing cancelled, class A income) and GRR1002 struggles (no approval data
// to speak of, attendance failures, class C income, non-compliant).
func calculatorFixture() Sources {
	main := buildTable(
		[]string{
			ColGRR, "NOME", ColAprovacao, ColMatriculada, ColCancelada,
			ColRepFrequencia, ColHistFrequencia, ColTempoSemestres,
			ColChIntegralizada, ColAvaliacaoAnterior, ColClasseRenda, ColNotaRenda,
		},
		[]any{"GRR1001", "Ana", 90.0, 5.0, 0.0, 0.0, 0.0, 4.0, 100.0, 0.0, "A", 5.0},
		[]any{"GRR1002", "Bruno", 40.0, 5.0, 3.0, 3.0, 0.6, 4.0, 0.0, "1", "C", -5.0},
	)
	social := buildTable(
		[]string{ColGRR, "atendimento-social"},
		[]any{"GRR1002", "registro antigo"},
		[]any{"GRR1002", "registro recente"},
	)
	psychology := buildTable(
		[]string{ColGRR, "atendimento-psicologico"},
		[]any{"GRR1001", "acompanhamento"},
	)
	general := buildTable(
		[]string{ColGRR, ColAvaliacao2024, ColCriteriosAdesao},
		[]any{"GRR1001", 1.0, "Sim"},
		[]any{"GRR1002", 1.0, "Não"},
		[]any{"GRR9999", 1.0, "Sim"},
	)
	form := buildTable(
		[]string{"Matrícula GRR", "respondeu-formulario"},
		[]any{"grr1002", "sim"},
	)
	return Sources{Main: main, Social: social, Psychology: psychology, General: general, Form: form}
}

func TestCalculate(t *testing.T) {
	calc := NewCalculator(DefaultWeights(), slog.Default())

	out, err := calc.Calculate(context.Background(), calculatorFixture())
	require.NoError(t, err)

	// Joins never multiply or shrink the main record set: the duplicate
	// social rows collapse and the unmatched GRR9999 criteria row is dropped.
	require.Equal(t, 2, out.NumRows())

	// Sorted by ITA descending: the well-performing student first.
	assert.Equal(t, "GRR1001", out.Cell(0, ColGRR))
	assert.Equal(t, "GRR1002", out.Cell(1, ColGRR))

	// nota_final: GRR1001 carries only the approval residue and the course
	// load band; GRR1002 accumulates every block.
	assert.InDelta(t, 0.54, out.Cell(0, ColNotaFinal), 1e-9)
	assert.InDelta(t, 4.99, out.Cell(1, ColNotaFinal), 1e-9)

	// ITA = (nota_final·6 + renda·3 + adesao·1) / 10.
	assert.InDelta(t, 6.334, out.Cell(0, ColITA), 1e-9)
	assert.InDelta(t, 3.694, out.Cell(1, ColITA), 1e-9)
	assert.Equal(t, "risco alto", out.Cell(0, ColClassificacaoITA))
	assert.Equal(t, "risco alto", out.Cell(1, ColClassificacaoITA))

	// Income and adherence components.
	assert.Equal(t, 20.0, out.Cell(0, ColPontuacaoRenda))
	assert.Equal(t, 2.0, out.Cell(1, ColPontuacaoRenda))
	assert.Equal(t, 0.1, out.Cell(0, ColIndicadorAdesao))
	assert.Equal(t, 1.0, out.Cell(1, ColIndicadorAdesao))
	assert.Equal(t, "Estável", out.Cell(0, ColClassificacaoAdesao))
	assert.Equal(t, "Crítico / penalização máxima", out.Cell(1, ColClassificacaoAdesao))
}

func TestCalculateMergesAuxiliarySources(t *testing.T) {
	calc := NewCalculator(DefaultWeights(), slog.Default())

	out, err := calc.Calculate(context.Background(), calculatorFixture())
	require.NoError(t, err)

	// Duplicate auxiliary keys keep their last occurrence.
	assert.Equal(t, "registro recente", out.Cell(1, "atendimento-social"))
	assert.Nil(t, out.Cell(0, "atendimento-social"))

	assert.Equal(t, "acompanhamento", out.Cell(0, "atendimento-psicologico"))
	assert.Nil(t, out.Cell(1, "atendimento-psicologico"))

	// The form identifier normalizes from "grr1002" and joins last.
	assert.Equal(t, "sim", out.Cell(1, "respondeu-formulario"))
	assert.Nil(t, out.Cell(0, "respondeu-formulario"))
}

func TestCalculateLayout(t *testing.T) {
	calc := NewCalculator(DefaultWeights(), slog.Default())

	out, err := calc.Calculate(context.Background(), calculatorFixture())
	require.NoError(t, err)

	cols := out.Columns()
	require.NotEmpty(t, cols)
	assert.Equal(t, ColGRR, cols[0])
	assert.Equal(t, "NOME", cols[1])

	// Identifier columns absent from the source are synthesized as missing.
	assert.True(t, out.HasColumn("CPF"))
	assert.Nil(t, out.Cell(0, "CPF"))

	// Each scored block exposes its risk, weight and partial score.
	for _, block := range []string{
		"aprovacao", "rep_freq", "hist_freq", "ch_integralizada", "historico", "ch_cursada",
	} {
		assert.True(t, out.HasColumn("risco_"+block), block)
		assert.True(t, out.HasColumn("peso_"+block), block)
		assert.True(t, out.HasColumn("nota_parcial_"+block), block)
	}
	assert.Equal(t, 4.0, out.Cell(0, "peso_aprovacao"))
	assert.Equal(t, 3.0, out.Cell(0, "peso_ch_integralizada"))

	// The cancellation fraction feeds the attendance screen but is not part
	// of the published layout.
	assert.False(t, out.HasColumn("risco_cancelamento"))

	// nota_final precedes the composed index.
	assert.Less(t, out.ColumnIndex(ColNotaFinal), out.ColumnIndex(ColITA))
}

func TestCalculateValidatesSources(t *testing.T) {
	calc := NewCalculator(DefaultWeights(), slog.Default())
	src := calculatorFixture()
	src.Psychology = nil

	_, err := calc.Calculate(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "psychology")
}

func TestCalculateRejectsInvalidWeights(t *testing.T) {
	calc := NewCalculator(Weights{Aprovacao: -1}, slog.Default())

	_, err := calc.Calculate(context.Background(), calculatorFixture())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights")
}

func TestCalculateFormWithoutKeyColumn(t *testing.T) {
	calc := NewCalculator(DefaultWeights(), slog.Default())
	src := calculatorFixture()
	src.Form = buildTable([]string{"pergunta"}, []any{"resposta"})

	_, err := calc.Calculate(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingKeyColumn)
}
