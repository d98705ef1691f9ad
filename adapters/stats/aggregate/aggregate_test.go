package aggregate

import (
	"math"
	"testing"

	"carevisits/domain/survey"
	"carevisits/internal/testkit"
)

func TestSummarizeKnownSample(t *testing.T) {
	a := New()
	row := a.Summarize("Yes", []float64{0, 1, 2, 3, 4})

	if row.N != 5 {
		t.Fatalf("N = %d, want 5", row.N)
	}
	if row.Mean != 2.0 {
		t.Errorf("Mean = %v, want 2.0", row.Mean)
	}
	if row.Min != 0 || row.Max != 4 || row.Range != 4 {
		t.Errorf("Min/Max/Range = %v/%v/%v, want 0/4/4", row.Min, row.Max, row.Range)
	}
	if row.Median != 2 {
		t.Errorf("Median = %v, want 2", row.Median)
	}
	if row.Total != 10 {
		t.Errorf("Total = %v, want 10", row.Total)
	}
}

func TestQuartilesType7(t *testing.T) {
	a := New()
	// type-7 on {1,2,3,4}: Q1 = 1.75, median = 2.5, Q3 = 3.25
	row := a.Summarize("x", []float64{4, 2, 1, 3})
	if row.Lower != 1.75 {
		t.Errorf("Lower = %v, want 1.75", row.Lower)
	}
	if row.Median != 2.5 {
		t.Errorf("Median = %v, want 2.5", row.Median)
	}
	if row.Upper != 3.25 {
		t.Errorf("Upper = %v, want 3.25", row.Upper)
	}
}

func TestQuantileInvariant(t *testing.T) {
	a := New()
	samples := [][]float64{
		{7},
		{3, 3, 3},
		{0, 1, 1, 2, 8, 8, 30},
		{5, 2, 9, 2, 2, 7, 1, 0, 4},
	}
	for _, data := range samples {
		row := a.Summarize("g", data)
		if !(row.Min <= row.Lower && row.Lower <= row.Median && row.Median <= row.Upper && row.Upper <= row.Max) {
			t.Errorf("quantile ordering violated for %v: %+v", data, row)
		}
		if !(row.Min <= row.Mean && row.Mean <= row.Max) {
			t.Errorf("mean outside extrema for %v: %+v", data, row)
		}
	}
}

func TestModeSmallestWinsTies(t *testing.T) {
	a := New()
	// 2 and 3 both appear twice; the smaller value wins
	if row := a.Summarize("g", []float64{3, 2, 3, 2, 1}); row.Mode != 2 {
		t.Errorf("Mode = %v, want 2", row.Mode)
	}
	// all unique: everything ties at frequency one, minimum wins
	if row := a.Summarize("g", []float64{9, 4, 6}); row.Mode != 4 {
		t.Errorf("Mode = %v, want 4", row.Mode)
	}
}

func TestConfidenceInterval(t *testing.T) {
	a := New()
	// n=8, mean 5, sample sd sqrt(32/7); CI = t(0.975, df=7) * se
	row := a.Summarize("g", []float64{2, 4, 4, 4, 5, 5, 7, 9})
	if row.SD != 2.14 {
		t.Errorf("SD = %v, want 2.14", row.SD)
	}
	if row.SE != 0.756 {
		t.Errorf("SE = %v, want 0.756", row.SE)
	}
	if row.CI != 1.787 {
		t.Errorf("CI = %v, want 1.787", row.CI)
	}
}

func TestEmptyGroupReportsZeroN(t *testing.T) {
	a := New()
	row := a.Summarize("Yes", nil)
	if row.N != 0 {
		t.Fatalf("N = %d, want 0", row.N)
	}
	for name, v := range map[string]float64{
		"Min": row.Min, "Lower": row.Lower, "Median": row.Median, "Upper": row.Upper,
		"Mode": row.Mode, "Mean": row.Mean, "CI": row.CI, "Max": row.Max,
		"Range": row.Range, "Total": row.Total, "SD": row.SD, "SE": row.SE,
		"Skew": row.Skew, "Kurtosis": row.Kurtosis,
	} {
		if !math.IsNaN(v) {
			t.Errorf("%s = %v for empty group, want NaN", name, v)
		}
	}
}

func TestByLevelsCountsPerSubgroup(t *testing.T) {
	v := func(n int) *int { return &n }
	table := survey.Table{
		{Visits: v(1), Depression: survey.Yes},
		{Visits: v(2), Depression: survey.Yes},
		{Visits: v(3), Depression: survey.No},
		{Visits: nil, Depression: survey.Yes}, // missing outcome, not counted
		{Visits: v(4), Depression: ""},        // missing factor, in neither group
	}

	rows := New().ByLevels(table, survey.FieldDepression, []survey.YesNo{survey.Yes, survey.No})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Level != "Yes" || rows[0].N != 2 {
		t.Errorf("Yes row = %s N=%d, want Yes N=2", rows[0].Level, rows[0].N)
	}
	if rows[1].Level != "No" || rows[1].N != 1 {
		t.Errorf("No row = %s N=%d, want No N=1", rows[1].Level, rows[1].N)
	}
}

func TestByConditionRankedByMean(t *testing.T) {
	table := testkit.NewGenerator(11).Table(600)
	rows := New().ByCondition(table, survey.ConditionFields())
	if len(rows) != 12 {
		t.Fatalf("expected 12 condition rows, got %d", len(rows))
	}
	prev := math.Inf(1)
	for _, r := range rows {
		if math.IsNaN(r.Mean) {
			continue // empty groups sink to the bottom
		}
		if r.Mean > prev {
			t.Fatalf("ranking not non-increasing: %v after %v", r.Mean, prev)
		}
		prev = r.Mean
	}
}
