package compare

import (
	domainstats "carevisits/domain/stats"

	"carevisits/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// KruskalWallis performs the omnibus k-sample rank test for equal
// distributions, generalizing the two-sample rank-sum test to k > 2
// groups. Empty groups are skipped; at least two non-empty groups are
// required. H is tie-corrected and compared against chi-squared with
// k-1 degrees of freedom.
func (e *Engine) KruskalWallis(name string, groups [][]float64) (domainstats.KruskalResult, error) {
	var zero domainstats.KruskalResult

	nonEmpty := make([][]float64, 0, len(groups))
	total := 0
	for _, g := range groups {
		if len(g) > 0 {
			nonEmpty = append(nonEmpty, g)
			total += len(g)
		}
	}
	if len(nonEmpty) < 2 {
		return zero, core.NewDegenerateSampleError(name, "groups", len(nonEmpty))
	}

	pooled := make([]float64, 0, total)
	for _, g := range nonEmpty {
		pooled = append(pooled, g...)
	}
	ranks, ties := midranks(pooled)

	nf := float64(total)
	h := 0.0
	offset := 0
	for _, g := range nonEmpty {
		var rankSum float64
		for i := range g {
			rankSum += ranks[offset+i]
		}
		h += rankSum * rankSum / float64(len(g))
		offset += len(g)
	}
	h = 12/(nf*(nf+1))*h - 3*(nf+1)

	correction := 1 - tieCorrection(ties)/(nf*nf*nf-nf)
	if correction <= 0 {
		// every pooled observation identical
		return zero, core.NewDegenerateSampleError(name, "pooled", total)
	}
	h /= correction

	df := len(nonEmpty) - 1
	p := 1 - distuv.ChiSquared{K: float64(df)}.CDF(h)
	return domainstats.KruskalResult{
		Statistic: h,
		DF:        df,
		PValue:    p,
	}, nil
}
