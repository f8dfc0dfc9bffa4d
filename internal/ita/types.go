package ita

// Raw column names of the main record sheet ("PLANILHA COMPLETA"). The
// Portuguese names are the data contract with the upstream spreadsheets and
// are kept verbatim.
const (
	ColGRR                = "GRR"
	ColAprovacao          = "porcentagem-aprovacao"
	ColMatriculada        = "qtd-matriculada"
	ColCancelada          = "qtd-matricula-cancelada"
	ColRepFrequencia      = "qtd-rep-frequencia"
	ColHistFrequencia     = "porcentagem-historica-de-reprovacao-frequencia"
	ColTempoSemestres     = "TEMPO UFPR - SEM"
	ColChIntegralizada    = "ch-integralizada"
	ColAvaliacaoAnterior  = "apareceu-na-avaliacao-semestre-anterior?"
	ColClasseRenda        = "classe-da-renda"
	ColNotaRenda          = "nota-da-renda"
	ColCriteriosAdesao    = "A/O ESTUDANTE ATENDE AOS CRITÉRIOS? (Sim ou Não)"
	ColAvaliacao2024      = "esteve-na-avaliacao-2024"
	ColChMediaEsperada    = "ch_media_esperada"
	ColNotaFinal          = "nota_final"
	ColPontuacaoRenda     = "pontuacao-renda"
	ColIndicadorAdesao    = "indicador-acomp-adesao"
	ColClassificacaoAdesao = "classificacao-acomp-adesao"
	ColITA                = "ITA"
	ColClassificacaoITA   = "classificacao_ita"
)

// sentinelTokens are the placeholder values upstream sheets use in numeric
// columns. They are stripped before coercion so they read as missing, never
// as zero.
var sentinelTokens = []string{"#REF!", "x"}

// Weights holds the fixed weights of the six academic risk blocks that feed
// nota_final. The shipped weights sum to 10.
type Weights struct {
	Aprovacao       float64 `json:"aprovacao"`
	RepFreq         float64 `json:"rep_freq"`
	HistFreq        float64 `json:"hist_freq"`
	ChIntegralizada float64 `json:"ch_integralizada"`
	Historico       float64 `json:"historico"`
	ChCursada       float64 `json:"ch_cursada"`
}

// DefaultWeights returns the production weight table.
func DefaultWeights() Weights {
	return Weights{
		Aprovacao:       4,
		RepFreq:         1.5,
		HistFreq:        0.5,
		ChIntegralizada: 3,
		Historico:       0.5,
		ChCursada:       0.5,
	}
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Aprovacao + w.RepFreq + w.HistFreq + w.ChIntegralizada + w.Historico + w.ChCursada
}

// IsValid checks that no weight is negative and that at least one is set.
func (w Weights) IsValid() bool {
	return w.Aprovacao >= 0 && w.RepFreq >= 0 && w.HistFreq >= 0 &&
		w.ChIntegralizada >= 0 && w.Historico >= 0 && w.ChCursada >= 0 &&
		w.Sum() > 0
}

// Blend weights of the final index: nota_final carries 6, the income score 3
// and the adherence indicator 1. The three inputs live on different scales;
// the blend reproduces the original worksheet formula on purpose and must not
// be re-normalized without product sign-off.
const (
	blendNotaFinal = 6.0
	blendRenda     = 3.0
	blendAdesao    = 1.0
)

// ITA classification thresholds. The 0.3 and 0.6 boundary overlaps are
// resolved by rule order: the strict "< 0.3" band is checked before the
// inclusive moderate band.
const (
	thresholdLowRisk      = 0.3
	thresholdModerateRisk = 0.6
)

// Expected hours below this mark a record as an incoming student for the
// adherence rules.
const incomingStudentHours = 24
