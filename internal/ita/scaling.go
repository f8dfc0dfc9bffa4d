package ita

import (
	"math"
	"sort"
)

// Percentile returns the value at percentile p of the sample using linear
// interpolation between order statistics (index = p·(n−1)), the same
// convention the source spreadsheets' tooling uses. NaN values are ignored.
func Percentile(values []float64, p float64) float64 {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return math.NaN()
	}
	sort.Float64s(valid)

	if p <= 0 {
		return valid[0]
	}
	if p >= 1 {
		return valid[len(valid)-1]
	}

	index := p * float64(len(valid)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return valid[lower]
	}
	weight := index - float64(lower)
	return valid[lower]*(1-weight) + valid[upper]*weight
}

// robustRescale maps values onto [0,1] using the 5th/95th percentile span of
// the sample itself: subtract the 5th percentile, divide by the span (span 1
// when the percentiles coincide), then clip. Values are rescaled in place and
// the receiver slice is returned.
func robustRescale(values []float64) []float64 {
	p5 := Percentile(values, 0.05)
	p95 := Percentile(values, 0.95)
	span := p95 - p5
	if span == 0 || math.IsNaN(span) {
		span = 1.0
	}
	for i, v := range values {
		values[i] = clip01((v - p5) / span)
	}
	return values
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clipLower(v, lo float64) float64 {
	if v < lo {
		return lo
	}
	return v
}

func clipRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round2 rounds to two decimals. NaN and infinities pass through.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*100) / 100
}
