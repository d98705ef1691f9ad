package model

import (
	"errors"
	"math"
	"strings"
	"testing"

	"carevisits/domain/core"
	"carevisits/domain/survey"
	"carevisits/internal/testkit"
)

// balanced 2x2 design with two observations per cell and exact cell means
// 2, 6, 4, 10, so every quantity of the fit is known in closed form.
func balancedTable() survey.Table {
	return survey.Table{
		testkit.Obs(1, survey.No, survey.No),
		testkit.Obs(3, survey.No, survey.No),
		testkit.Obs(5, survey.Yes, survey.No),
		testkit.Obs(7, survey.Yes, survey.No),
		testkit.Obs(3, survey.No, survey.Yes),
		testkit.Obs(5, survey.No, survey.Yes),
		testkit.Obs(9, survey.Yes, survey.Yes),
		testkit.Obs(11, survey.Yes, survey.Yes),
	}
}

func TestFitKnownCellMeans(t *testing.T) {
	fit, err := New().Fit(balancedTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCoef := []struct {
		term     string
		estimate float64
		se       float64
	}{
		{"(Intercept)", 2, 1},
		{"depressionYes", 4, math.Sqrt2},
		{"chronicYes", 2, math.Sqrt2},
		{"depressionYes:chronicYes", 2, 2},
	}
	if len(fit.Coefficients) != len(wantCoef) {
		t.Fatalf("got %d coefficients, want %d", len(fit.Coefficients), len(wantCoef))
	}
	for i, w := range wantCoef {
		c := fit.Coefficients[i]
		if c.Term != w.term {
			t.Errorf("coefficient %d term = %q, want %q", i, c.Term, w.term)
		}
		if math.Abs(c.Estimate-w.estimate) > 1e-9 {
			t.Errorf("%s estimate = %v, want %v", w.term, c.Estimate, w.estimate)
		}
		if math.Abs(c.SE-w.se) > 1e-9 {
			t.Errorf("%s SE = %v, want %v", w.term, c.SE, w.se)
		}
		if math.Abs(c.TValue-c.Estimate/c.SE) > 1e-9 {
			t.Errorf("%s t-value inconsistent with estimate/SE", w.term)
		}
		if c.PValue < 0 || c.PValue > 1 {
			t.Errorf("%s p-value out of range: %v", w.term, c.PValue)
		}
	}

	if fit.ResidualDF != 4 {
		t.Errorf("residual df = %d, want 4", fit.ResidualDF)
	}
	if math.Abs(fit.RSquared-70.0/78.0) > 1e-9 {
		t.Errorf("R-squared = %v, want %v", fit.RSquared, 70.0/78.0)
	}
}

func TestFitSequentialAnova(t *testing.T) {
	fit, err := New().Fit(balancedTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct {
		term  string
		df    int
		sumSq float64
	}{
		{"depression", 1, 50},
		{"chronic", 1, 18},
		{"depression:chronic", 1, 2},
		{"Residuals", 4, 8},
	}
	if len(fit.Anova) != len(want) {
		t.Fatalf("got %d anova rows, want %d", len(fit.Anova), len(want))
	}
	var total float64
	for i, w := range want {
		r := fit.Anova[i]
		if r.Term != w.term || r.DF != w.df {
			t.Errorf("row %d = %s/%d, want %s/%d", i, r.Term, r.DF, w.term, w.df)
		}
		if math.Abs(r.SumSq-w.sumSq) > 1e-9 {
			t.Errorf("%s sum of squares = %v, want %v", w.term, r.SumSq, w.sumSq)
		}
		if math.Abs(r.MeanSq-r.SumSq/float64(r.DF)) > 1e-9 {
			t.Errorf("%s mean square inconsistent", w.term)
		}
		total += r.SumSq
	}
	// sequential decomposition must account for the total sum of squares
	if math.Abs(total-78) > 1e-9 {
		t.Errorf("anova sums of squares total %v, want 78", total)
	}

	resid := fit.Anova[len(fit.Anova)-1]
	if !math.IsNaN(resid.F) || !math.IsNaN(resid.PValue) {
		t.Errorf("residual row must carry NaN F and p, got F=%v p=%v", resid.F, resid.PValue)
	}

	// sigma2 = 2, so F(depression) = 50/2
	if math.Abs(fit.Anova[0].F-25) > 1e-9 {
		t.Errorf("depression F = %v, want 25", fit.Anova[0].F)
	}
}

func TestFitEmptyCellIsRankDeficient(t *testing.T) {
	table := survey.Table{
		testkit.Obs(1, survey.No, survey.No),
		testkit.Obs(3, survey.No, survey.No),
		testkit.Obs(5, survey.Yes, survey.No),
		testkit.Obs(7, survey.Yes, survey.No),
		testkit.Obs(3, survey.No, survey.Yes),
		testkit.Obs(5, survey.No, survey.Yes),
	}

	_, err := New().Fit(table)
	if !core.IsRankDeficientModelError(err) {
		t.Fatalf("expected rank-deficient model error, got %v", err)
	}
	// the failing cell is named so the caller can report it
	if got := err.Error(); !strings.Contains(got, "depression=Yes,chronic=Yes") {
		t.Errorf("error %q does not name the empty cell", got)
	}
}

func TestFitInsufficientRows(t *testing.T) {
	table := survey.Table{
		testkit.Obs(1, survey.No, survey.No),
		testkit.Obs(5, survey.Yes, survey.No),
		testkit.Obs(3, survey.No, survey.Yes),
		testkit.Obs(9, survey.Yes, survey.Yes),
	}

	_, err := New().Fit(table)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Fatalf("expected insufficient data error, got %v", err)
	}
}

func TestFitSkipsIncompleteRows(t *testing.T) {
	table := balancedTable()
	table = append(table,
		testkit.Obs(-1, survey.Yes, survey.Yes),
		testkit.Obs(4, "", survey.No),
		testkit.Obs(2, survey.No, ""),
	)

	fit, err := New().Fit(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// only the eight complete rows enter the fit
	if fit.ResidualDF != 4 {
		t.Errorf("residual df = %d, want 4", fit.ResidualDF)
	}
	if math.Abs(fit.Coefficients[0].Estimate-2) > 1e-9 {
		t.Errorf("intercept = %v, want 2", fit.Coefficients[0].Estimate)
	}
}
