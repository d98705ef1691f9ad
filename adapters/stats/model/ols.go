package model

import (
	"fmt"
	"math"

	"carevisits/domain/core"
	domainstats "carevisits/domain/stats"
	"carevisits/domain/survey"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Fitter fits visits ~ depression + chronic + depression:chronic by
// ordinary least squares with dummy-coded factors, reference level No for
// both. The ANOVA decomposition uses Type I (sequential) sums of squares
// in the model order given.
type Fitter struct{}

func New() *Fitter {
	return &Fitter{}
}

const numTerms = 4 // intercept, depression, chronic, interaction

// Fit runs the OLS fit over the complete-case rows of the table. A
// structurally empty factor-level cell makes the design matrix rank
// deficient and fails the fit with the cell named.
func (f *Fitter) Fit(t survey.Table) (domainstats.ModelFit, error) {
	var zero domainstats.ModelFit

	rows := t.Filter(survey.FieldVisits, survey.FieldDepression, survey.FieldChronic)
	n := len(rows)

	// cell occupancy check before any numerics
	cells := map[survey.InteractionLevel]int{}
	for _, o := range rows {
		l, _ := o.Interaction()
		cells[l]++
	}
	for _, l := range survey.InteractionLevels() {
		if cells[l] == 0 {
			cell := fmt.Sprintf("depression=%s,chronic=%s", depPart(l), chrPart(l))
			return zero, core.NewRankDeficientModelError(cell)
		}
	}
	if n <= numTerms {
		return zero, fmt.Errorf("%w: %d rows for %d model terms", core.ErrInsufficientData, n, numTerms)
	}

	y := make([]float64, n)
	dep := make([]float64, n)
	chr := make([]float64, n)
	inter := make([]float64, n)
	for i, o := range rows {
		y[i] = float64(*o.Visits)
		if o.Depression == survey.Yes {
			dep[i] = 1
		}
		if o.Chronic == survey.Yes {
			chr[i] = 1
		}
		inter[i] = dep[i] * chr[i]
	}
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}

	// sequential RSS along the additive model order
	rss0, err := rss(y, ones)
	if err != nil {
		return zero, err
	}
	rss1, err := rss(y, ones, dep)
	if err != nil {
		return zero, err
	}
	rss2, err := rss(y, ones, dep, chr)
	if err != nil {
		return zero, err
	}
	beta, rss3, err := fitOLS(y, ones, dep, chr, inter)
	if err != nil {
		return zero, err
	}

	residDF := n - numTerms
	sigma2 := rss3 / float64(residDF)

	ses, err := coefficientSEs(sigma2, ones, dep, chr, inter)
	if err != nil {
		return zero, err
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(residDF)}
	terms := []string{"(Intercept)", "depressionYes", "chronicYes", "depressionYes:chronicYes"}
	coeffs := make([]domainstats.Coefficient, numTerms)
	for i := range coeffs {
		tv := beta[i] / ses[i]
		coeffs[i] = domainstats.Coefficient{
			Term:     terms[i],
			Estimate: beta[i],
			SE:       ses[i],
			TValue:   tv,
			PValue:   2 * (1 - tDist.CDF(math.Abs(tv))),
		}
	}

	fDist := distuv.F{D1: 1, D2: float64(residDF)}
	anovaTerm := func(name string, ss float64) domainstats.AnovaRow {
		fStat := ss / sigma2
		return domainstats.AnovaRow{
			Term:   name,
			DF:     1,
			SumSq:  ss,
			MeanSq: ss,
			F:      fStat,
			PValue: 1 - fDist.CDF(fStat),
		}
	}
	anova := []domainstats.AnovaRow{
		anovaTerm("depression", rss0-rss1),
		anovaTerm("chronic", rss1-rss2),
		anovaTerm("depression:chronic", rss2-rss3),
		{
			Term:   "Residuals",
			DF:     residDF,
			SumSq:  rss3,
			MeanSq: sigma2,
			F:      math.NaN(),
			PValue: math.NaN(),
		},
	}

	return domainstats.ModelFit{
		Coefficients: coeffs,
		Anova:        anova,
		ResidualDF:   residDF,
		RSquared:     1 - rss3/rss0,
	}, nil
}

// fitOLS solves the least-squares problem over the given columns and
// returns the coefficients plus the residual sum of squares.
func fitOLS(y []float64, cols ...[]float64) (beta []float64, residSS float64, err error) {
	n := len(y)
	p := len(cols)

	x := mat.NewDense(n, p, nil)
	for j, col := range cols {
		x.SetCol(j, col)
	}
	yv := mat.NewDense(n, 1, append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(x)
	var b mat.Dense
	if err := qr.SolveTo(&b, false, yv); err != nil {
		// occupancy was checked upstream; a singular system here means
		// collinear columns, surfaced the same way
		return nil, 0, fmt.Errorf("%w: singular design matrix: %v", core.ErrRankDeficientModel, err)
	}

	beta = make([]float64, p)
	for j := 0; j < p; j++ {
		beta[j] = b.At(j, 0)
	}

	for i := 0; i < n; i++ {
		fitted := 0.0
		for j := 0; j < p; j++ {
			fitted += cols[j][i] * beta[j]
		}
		r := y[i] - fitted
		residSS += r * r
	}
	return beta, residSS, nil
}

func rss(y []float64, cols ...[]float64) (float64, error) {
	_, r, err := fitOLS(y, cols...)
	return r, err
}

// coefficientSEs computes sqrt(diag(sigma2 * (X'X)^-1)).
func coefficientSEs(sigma2 float64, cols ...[]float64) ([]float64, error) {
	p := len(cols)
	n := len(cols[0])

	x := mat.NewDense(n, p, nil)
	for j, col := range cols {
		x.SetCol(j, col)
	}
	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrRankDeficientModel, err)
	}

	ses := make([]float64, p)
	for j := 0; j < p; j++ {
		ses[j] = math.Sqrt(sigma2 * inv.At(j, j))
	}
	return ses, nil
}

func depPart(l survey.InteractionLevel) string {
	for i := 0; i < len(l); i++ {
		if l[i] == '.' {
			return string(l[:i])
		}
	}
	return string(l)
}

func chrPart(l survey.InteractionLevel) string {
	for i := 0; i < len(l); i++ {
		if l[i] == '.' {
			return string(l[i+1:])
		}
	}
	return ""
}
