package ita

import "math"

// The seven sub-score calculators. Each consumes coerced numeric columns of
// the main record set (NaN marks a missing value after sentinel stripping)
// and produces one bounded risk value per record in a single pass. The
// calculators are mutually independent and safe to run concurrently.

// fillNaN returns a copy of values with NaN replaced by def.
func fillNaN(values []float64, def float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = def
		} else {
			out[i] = v
		}
	}
	return out
}

// ApprovalRisk computes ((100 − approval%)/100)², with missing approval
// treated as 0% (maximum risk of 1).
func ApprovalRisk(approvalPct []float64) []float64 {
	out := make([]float64, len(approvalPct))
	for i, p := range fillNaN(approvalPct, 0) {
		r := (100 - p) / 100
		out[i] = r * r
	}
	return out
}

// CancellationRisk computes the cancelled/enrolled fraction, rounded to two
// decimals; fractions of 0.5 or more saturate at 1.0, lower fractions are
// clipped at 0. Missing inputs propagate as missing; a zero enrolment with
// cancellations follows IEEE division and saturates.
func CancellationRisk(cancelled, enrolled []float64) []float64 {
	out := make([]float64, len(cancelled))
	for i := range cancelled {
		frac := round2(cancelled[i] / enrolled[i])
		if frac >= 0.5 {
			out[i] = 1.0
			continue
		}
		out[i] = round2(clipLower(frac, 0))
	}
	return out
}

// AttendanceFailureRisk flags records whose attendance failures exceed the
// tolerance for their enrolment count: any failure on up to 2 enrolments,
// more than one on 3 or 4, more than two on 5 or more. Missing inputs score 0.
func AttendanceFailureRisk(enrolled, freqFailures []float64) []float64 {
	out := make([]float64, len(enrolled))
	for i := range enrolled {
		e, f := enrolled[i], freqFailures[i]
		if (e <= 2 && f > 0) ||
			(e == 3 && f > 1) ||
			(e == 4 && f > 1) ||
			(e >= 5 && f > 2) {
			out[i] = 1
		}
	}
	return out
}

// HistoricalFailureRisk clips the historical attendance-failure percentage to
// [0,1], defaulting missing values to 0.
func HistoricalFailureRisk(histPct []float64) []float64 {
	out := make([]float64, len(histPct))
	for i, v := range fillNaN(histPct, 0) {
		out[i] = clipRange(v, 0, 1)
	}
	return out
}

// coerceSemesters applies the semester-count defaults: missing becomes 1 and
// the count is floored at 1.
func coerceSemesters(semesters []float64) []float64 {
	out := make([]float64, len(semesters))
	for i, v := range fillNaN(semesters, 1) {
		out[i] = clipLower(v, 1)
	}
	return out
}

// coerceCompletedHours applies the completed-hours defaults: missing becomes
// 0 and the value is clipped to [0,100].
func coerceCompletedHours(completed []float64) []float64 {
	out := make([]float64, len(completed))
	for i, v := range fillNaN(completed, 0) {
		out[i] = clipRange(v, 0, 100)
	}
	return out
}

// IntegralizedHoursRisk scores the gap between completed and expected credit
// hours. Expected hours are 8 per enrolled semester. Records whose expected
// hours exceed 110 while approval sits below 50% are "boosted": their
// semester multiplier is quintupled and their final risk forced to exactly
// 1.0. The remaining records are rescaled against their own 5th/95th
// percentile span and compressed into [0,0.25]. The two populations are
// normalized separately; a single global rescale would change outcomes.
//
// Inputs are the coerced semester counts (see coerceSemesters), coerced
// completed hours (see coerceCompletedHours) and approval percentages with
// missing values defaulted to 0. Returns the risk per record and the
// expected-hours column.
func IntegralizedHoursRisk(semesters, completedHours, approvalPct []float64) (risk, expected []float64) {
	n := len(semesters)
	risk = make([]float64, n)
	expected = make([]float64, n)
	boosted := make([]bool, n)

	for i := 0; i < n; i++ {
		expected[i] = 8 * semesters[i]
		boosted[i] = expected[i] > 110 && approvalPct[i] < 50

		multiplier := semesters[i]
		if boosted[i] {
			multiplier = 5 * semesters[i]
		}
		risk[i] = clipLower((1-completedHours[i]/expected[i])*multiplier, 0)
	}

	// Rescale the non-boosted population against its own percentile span.
	var nonBoosted []float64
	for i := 0; i < n; i++ {
		if !boosted[i] {
			nonBoosted = append(nonBoosted, risk[i])
		}
	}
	if len(nonBoosted) > 0 {
		robustRescale(nonBoosted)
	}

	j := 0
	for i := 0; i < n; i++ {
		if boosted[i] {
			risk[i] = 1.0
		} else {
			risk[i] = round2(nonBoosted[j] * 0.25)
			j++
		}
	}
	return risk, expected
}

// PriorEvaluationRisk flags records that appeared in the previous semester's
// evaluation. A numeric flag equal to 1 scores 1, and so does the literal
// text "0" — an upstream data-entry quirk that is preserved verbatim rather
// than corrected. Everything else scores 0.
func PriorEvaluationRisk(flags []any) []float64 {
	out := make([]float64, len(flags))
	for i, v := range flags {
		switch c := v.(type) {
		case float64:
			if c == 1 {
				out[i] = 1
			}
		case string:
			s := trimmed(c)
			if s == "0" {
				out[i] = 1
				continue
			}
			if f, ok := parseFloat(s); ok && f == 1 {
				out[i] = 1
			}
		}
	}
	return out
}

// CourseLoadRisk is a step function of the coerced semester counts: 300 or
// more scores 0, 200–299 scores 0.33, 100–199 scores 0.66, 0–99 scores 1.0.
// Values outside every band stay missing.
func CourseLoadRisk(semesters []float64) []float64 {
	out := make([]float64, len(semesters))
	for i, v := range fillNaN(semesters, 0) {
		switch {
		case v >= 300:
			out[i] = 0
		case v >= 200 && v <= 299:
			out[i] = 0.33
		case v >= 100 && v <= 199:
			out[i] = 0.66
		case v >= 0 && v <= 99:
			out[i] = 1.0
		default:
			out[i] = math.NaN()
		}
	}
	return out
}
