package ita

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"itacli/internal/dataprocessing"
)

// Sources bundles the five input tables of one pipeline invocation.
type Sources struct {
	Main       *dataprocessing.Table // sheet "PLANILHA COMPLETA"
	Social     *dataprocessing.Table // sheet "Serviço Social"
	Psychology *dataprocessing.Table // sheet "Psicologia"
	General    *dataprocessing.Table // sheet "Geral"
	Form       *dataprocessing.Table // sheet "Sheet1"
}

// identifierColumns open the output layout and are force-created as missing
// when the main sheet omits them.
var identifierColumns = []string{
	"GRR", "NOME", "SETOR", "proafe", "curso", "ano-ingresso",
	"TEMPO UFPR - SEM", "IRA SEM", "CPF", "renda-per-capta",
	"classe-da-renda", "nota-da-renda", "E-MAIL PESSOAL",
	"E-MAIL INSTITUCIONAL", "TELEFONE", "MOTIVO", "planilha_andre",
}

// riskBlock describes one scored block of the output layout: the raw input
// columns shown next to the block's risk value, weight and partial score.
// Raw columns absent from the source are simply not shown.
type riskBlock struct {
	key string
	raw []string
}

var riskBlocks = []riskBlock{
	{key: "aprovacao", raw: []string{ColAprovacao}},
	{key: "rep_freq", raw: []string{
		ColMatriculada, "qtd-reprovacao-por-nota", ColCancelada, "PORT 5 - CAN",
		ColRepFrequencia, "PORT 5 - FREQ", "BAIXA MAT"}},
	{key: "hist_freq", raw: []string{ColHistFrequencia}},
	{key: "ch_integralizada", raw: []string{
		ColChIntegralizada, ColTempoSemestres, ColChMediaEsperada,
		"CH REC SEM", "CH ABAIXO", "CH MTO ABAIXO"}},
	{key: "historico", raw: []string{ColAvaliacaoAnterior}},
	{key: "ch_cursada", raw: []string{
		"responsavel", ColTempoSemestres, "CH MAT TOTAL", "% Rep Freq 2024-2",
		"% Rep Freq 2024-1", "% Rep Freq 2023 -2", "Editais 2023",
		"AVALIAÇÃO 2024", "recebeu-probem-ano-anterior?"}},
}

func (w Weights) of(block string) float64 {
	switch block {
	case "aprovacao":
		return w.Aprovacao
	case "rep_freq":
		return w.RepFreq
	case "hist_freq":
		return w.HistFreq
	case "ch_integralizada":
		return w.ChIntegralizada
	case "historico":
		return w.Historico
	case "ch_cursada":
		return w.ChCursada
	default:
		return 0
	}
}

// Calculator orchestrates the whole scoring and data-fusion pipeline: key
// normalization, the seven sub-scores, weighted aggregation, the auxiliary
// merges, the income and adherence rule tables and the final composition.
// One Calculate call is a pure function of its input tables; no state is
// shared across invocations.
type Calculator struct {
	weights Weights
	logger  *slog.Logger
}

// NewCalculator creates a calculator with the given weight table.
func NewCalculator(weights Weights, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{weights: weights, logger: logger}
}

// Calculate runs the pipeline over the loaded sources and returns the final
// scored, classified, sorted table. The stage order is strict: sub-scores,
// aggregation, auxiliary merge, income rules, adherence rules, composition,
// form merge. Sub-score columns are mutually independent and computed
// concurrently.
func (c *Calculator) Calculate(ctx context.Context, src Sources) (*dataprocessing.Table, error) {
	start := time.Now()

	if err := c.validate(src); err != nil {
		return nil, fmt.Errorf("validate sources: %w", err)
	}

	c.logger.InfoContext(ctx, "starting ITA calculation",
		"students", src.Main.NumRows(),
		"social_rows", src.Social.NumRows(),
		"psychology_rows", src.Psychology.NumRows(),
		"general_rows", src.General.NumRows(),
		"form_rows", src.Form.NumRows(),
	)

	form, err := NormalizeKeys(src.Form)
	if err != nil {
		return nil, fmt.Errorf("normalize form keys: %w", err)
	}

	detail, err := c.scoreDetail(ctx, src.Main)
	if err != nil {
		return nil, fmt.Errorf("score detail table: %w", err)
	}

	services := dedupOnKey(src.Social).
		OuterJoin(dedupOnKey(src.Psychology), ColGRR).
		OuterJoin(dedupOnKey(src.General), ColGRR)

	merged := detail.LeftJoin(services, ColGRR)

	scored := ComposeITA(ApplyAdherenceRules(ApplyIncomeRules(merged)))

	final := scored.LeftJoin(form, ColGRR)

	c.logger.InfoContext(ctx, "ITA calculation completed",
		"duration", time.Since(start),
		"rows", final.NumRows(),
		"columns", final.NumCols(),
	)
	return final, nil
}

func (c *Calculator) validate(src Sources) error {
	if !c.weights.IsValid() {
		return fmt.Errorf("invalid block weights")
	}
	for name, t := range map[string]*dataprocessing.Table{
		"main": src.Main, "social": src.Social, "psychology": src.Psychology,
		"general": src.General, "form": src.Form,
	} {
		if t == nil {
			return fmt.Errorf("missing %s table", name)
		}
	}
	return nil
}

// dedupOnKey prepares an auxiliary record set for merging: the key column is
// synthesized when absent (missing keys never match) and duplicate keys keep
// their last occurrence.
func dedupOnKey(t *dataprocessing.Table) *dataprocessing.Table {
	return t.ForceColumns([]string{ColGRR}).DedupLastByKey(ColGRR)
}

// scoreDetail computes the seven sub-scores, the weighted partial scores and
// nota_final over the main sheet, then lays out the detail table: identifier
// columns first, then the risk blocks in fixed order, then nota_final, sorted
// by nota_final descending.
func (c *Calculator) scoreDetail(ctx context.Context, main *dataprocessing.Table) (*dataprocessing.Table, error) {
	n := main.NumRows()

	approvalRaw := main.FloatColumn(ColAprovacao, sentinelTokens)
	approval := fillNaN(approvalRaw, 0)
	cancelled := main.FloatColumn(ColCancelada, sentinelTokens)
	enrolled := main.FloatColumn(ColMatriculada, sentinelTokens)
	freqFailures := main.FloatColumn(ColRepFrequencia, sentinelTokens)
	histPct := main.FloatColumn(ColHistFrequencia, sentinelTokens)
	semesters := coerceSemesters(main.FloatColumn(ColTempoSemestres, sentinelTokens))
	completed := coerceCompletedHours(main.FloatColumn(ColChIntegralizada, sentinelTokens))
	flags := main.Column(ColAvaliacaoAnterior)
	if flags == nil {
		flags = make([]any, n)
	}

	var (
		riskApproval, riskCancellation, riskRepFreq, riskHistFreq []float64
		riskChInt, expectedHours, riskHistorico, riskChCursada    []float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { riskApproval = ApprovalRisk(approvalRaw); return gctx.Err() })
	g.Go(func() error { riskCancellation = CancellationRisk(cancelled, enrolled); return gctx.Err() })
	g.Go(func() error { riskRepFreq = AttendanceFailureRisk(enrolled, freqFailures); return gctx.Err() })
	g.Go(func() error { riskHistFreq = HistoricalFailureRisk(histPct); return gctx.Err() })
	g.Go(func() error { riskChInt, expectedHours = IntegralizedHoursRisk(semesters, completed, approval); return gctx.Err() })
	g.Go(func() error { riskHistorico = PriorEvaluationRisk(flags); return gctx.Err() })
	g.Go(func() error { riskChCursada = CourseLoadRisk(semesters); return gctx.Err() })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute sub-scores: %w", err)
	}

	// Coerced inputs replace their raw columns so the report shows the values
	// the scores were computed from.
	t := main.
		WithFloatColumn(ColRepFrequencia, round2Slice(freqFailures)).
		WithFloatColumn(ColMatriculada, round2Slice(enrolled)).
		WithFloatColumn(ColTempoSemestres, semesters).
		WithFloatColumn(ColChIntegralizada, completed).
		WithFloatColumn(ColChMediaEsperada, expectedHours).
		WithFloatColumn("risco_cancelamento", riskCancellation)

	risks := map[string][]float64{
		"aprovacao":        riskApproval,
		"rep_freq":         riskRepFreq,
		"hist_freq":        riskHistFreq,
		"ch_integralizada": riskChInt,
		"historico":        riskHistorico,
		"ch_cursada":       riskChCursada,
	}

	partials := make(map[string][]float64, len(riskBlocks))
	for _, b := range riskBlocks {
		weight := c.weights.of(b.key)
		partial := make([]float64, n)
		for i, r := range risks[b.key] {
			partial[i] = round2(r * weight)
		}
		partials[b.key] = partial

		t = t.WithFloatColumn("risco_"+b.key, risks[b.key]).
			WithConstColumn("peso_"+b.key, weight).
			WithFloatColumn("nota_parcial_"+b.key, partial)
	}

	// nota_final sums the partial scores, skipping missing values so every
	// record ends with a defined total.
	notaFinal := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for _, b := range riskBlocks {
			if p := partials[b.key][i]; !math.IsNaN(p) {
				sum += p
			}
		}
		notaFinal[i] = round2(sum)
	}
	t = t.WithFloatColumn(ColNotaFinal, notaFinal).ForceColumns(identifierColumns)

	ordered := make([]string, 0, t.NumCols())
	seen := make(map[string]bool)
	appendCol := func(name string) {
		if !seen[name] {
			seen[name] = true
			ordered = append(ordered, name)
		}
	}
	for _, name := range identifierColumns {
		appendCol(name)
	}
	for _, b := range riskBlocks {
		for _, name := range b.raw {
			if t.HasColumn(name) {
				appendCol(name)
			}
		}
		appendCol("risco_" + b.key)
		appendCol("peso_" + b.key)
		appendCol("nota_parcial_" + b.key)
	}
	appendCol(ColNotaFinal)

	return t.Select(ordered).SortByFloatDesc(ColNotaFinal), nil
}

func round2Slice(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = round2(v)
	}
	return out
}
