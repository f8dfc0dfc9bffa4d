package ita

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalRisk(t *testing.T) {
	got := ApprovalRisk([]float64{100, 0, 50, 75, math.NaN()})

	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 1.0, got[1])
	assert.InDelta(t, 0.25, got[2], 1e-12)
	assert.InDelta(t, 0.0625, got[3], 1e-12)
	// Missing approval reads as 0% and scores maximum risk.
	assert.Equal(t, 1.0, got[4])
}

func TestCancellationRisk(t *testing.T) {
	tests := []struct {
		name      string
		cancelled float64
		enrolled  float64
		want      float64
	}{
		{"quarter cancelled", 1, 4, 0.25},
		{"half cancelled saturates", 1, 2, 1.0},
		{"above one saturates", 3, 2, 1.0},
		{"none cancelled", 0, 5, 0.0},
		{"division by zero saturates", 1, 0, 1.0},
		// 0.4999 rounds to 0.50, which sits on the saturation cut.
		{"rounding applies before the cut", 0.4999, 1, 1.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CancellationRisk([]float64{tc.cancelled}, []float64{tc.enrolled})
			assert.Equal(t, tc.want, got[0])
		})
	}

	t.Run("missing inputs propagate", func(t *testing.T) {
		got := CancellationRisk([]float64{math.NaN()}, []float64{4})
		assert.True(t, math.IsNaN(got[0]))

		got = CancellationRisk([]float64{0}, []float64{0})
		assert.True(t, math.IsNaN(got[0]))
	})
}

func TestAttendanceFailureRisk(t *testing.T) {
	tests := []struct {
		name     string
		enrolled float64
		failures float64
		want     float64
	}{
		{"two enrolments tolerate nothing", 2, 1, 1},
		{"two enrolments no failure", 2, 0, 0},
		{"single enrolment with failure", 1, 1, 1},
		{"three enrolments tolerate one", 3, 1, 0},
		{"three enrolments flag two", 3, 2, 1},
		{"four enrolments tolerate one", 4, 1, 0},
		{"four enrolments flag two", 4, 2, 1},
		{"five enrolments tolerate two", 5, 2, 0},
		{"five enrolments flag three", 5, 3, 1},
		{"eight enrolments flag three", 8, 3, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AttendanceFailureRisk([]float64{tc.enrolled}, []float64{tc.failures})
			assert.Equal(t, tc.want, got[0])
		})
	}

	t.Run("missing inputs score zero", func(t *testing.T) {
		got := AttendanceFailureRisk([]float64{math.NaN()}, []float64{math.NaN()})
		assert.Equal(t, 0.0, got[0])
	})
}

func TestHistoricalFailureRisk(t *testing.T) {
	got := HistoricalFailureRisk([]float64{0.5, 1.5, -0.2, math.NaN(), 1})

	assert.Equal(t, []float64{0.5, 1, 0, 0, 1}, got)
}

func TestCoerceSemesters(t *testing.T) {
	got := coerceSemesters([]float64{math.NaN(), 0, 0.5, 3})
	assert.Equal(t, []float64{1, 1, 1, 3}, got)
}

func TestCoerceCompletedHours(t *testing.T) {
	got := coerceCompletedHours([]float64{math.NaN(), -5, 50, 120})
	assert.Equal(t, []float64{0, 0, 50, 100}, got)
}

func TestIntegralizedHoursRisk(t *testing.T) {
	t.Run("non-boosted population compresses into the quarter band", func(t *testing.T) {
		// One semester each: expected hours 8, raw risks 1 and 0. The
		// two-point percentile span rescales them to the band's extremes.
		risk, expected := IntegralizedHoursRisk(
			[]float64{1, 1},
			[]float64{0, 100},
			[]float64{100, 100},
		)

		require.Equal(t, []float64{8, 8}, expected)
		assert.Equal(t, 0.25, risk[0])
		assert.Equal(t, 0.0, risk[1])
	})

	t.Run("boosted records score exactly one", func(t *testing.T) {
		// 15 semesters: expected hours 120 > 110 with approval below 50%.
		risk, expected := IntegralizedHoursRisk(
			[]float64{15, 1},
			[]float64{0, 0},
			[]float64{0, 100},
		)

		assert.Equal(t, 120.0, expected[0])
		assert.Equal(t, 1.0, risk[0])
		// The lone non-boosted record rescales against itself and lands on 0.
		assert.Equal(t, 0.0, risk[1])
	})

	t.Run("high expected hours with good approval is not boosted", func(t *testing.T) {
		risk, _ := IntegralizedHoursRisk(
			[]float64{15, 15},
			[]float64{0, 100},
			[]float64{80, 80},
		)
		assert.Equal(t, 0.25, risk[0])
		assert.Equal(t, 0.0, risk[1])
	})
}

func TestPriorEvaluationRisk(t *testing.T) {
	got := PriorEvaluationRisk([]any{
		float64(1),
		float64(0),
		"1",
		" 1 ",
		"0", // upstream data-entry quirk: the literal text "0" also flags
		"2",
		"",
		nil,
	})

	assert.Equal(t, []float64{1, 0, 1, 1, 1, 0, 0, 0}, got)
}

func TestCourseLoadRisk(t *testing.T) {
	got := CourseLoadRisk([]float64{300, 450, 250, 299, 150, 100, 99, 0, math.NaN()})

	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 0.0, got[1])
	assert.Equal(t, 0.33, got[2])
	assert.Equal(t, 0.33, got[3])
	assert.Equal(t, 0.66, got[4])
	assert.Equal(t, 0.66, got[5])
	assert.Equal(t, 1.0, got[6])
	assert.Equal(t, 1.0, got[7])
	// Missing reads as 0 and lands in the lowest band.
	assert.Equal(t, 1.0, got[8])

	t.Run("fractional values between bands stay missing", func(t *testing.T) {
		got := CourseLoadRisk([]float64{99.5, 199.5, 299.5})
		for i := range got {
			assert.True(t, math.IsNaN(got[i]), "index %d", i)
		}
	})
}
