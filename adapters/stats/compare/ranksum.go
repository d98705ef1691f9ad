package compare

import (
	"math"
	"sort"

	"carevisits/domain/core"
	domainstats "carevisits/domain/stats"

	"gonum.org/v1/gonum/stat/distuv"
)

// Engine runs the distribution-comparison tests. All methods are pure; a
// test that cannot produce a meaningful statistic returns a degenerate
// sample error rather than a silent placeholder.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// RankSum performs the two-sample Wilcoxon rank-sum (Mann-Whitney) test
// with midranks, tie-corrected variance, and continuity correction. The point
// estimate is the Hodges-Lehmann median of pairwise differences (x - y)
// with a 95% confidence interval from the normal-approximation order
// statistics of the differences.
func (e *Engine) RankSum(name string, x, y []float64) (domainstats.RankSumResult, error) {
	var zero domainstats.RankSumResult
	if len(x) == 0 {
		return zero, core.NewDegenerateSampleError(name, "A", 0)
	}
	if len(y) == 0 {
		return zero, core.NewDegenerateSampleError(name, "B", 0)
	}

	n := float64(len(x))
	m := float64(len(y))
	pooled := append(append(make([]float64, 0, len(x)+len(y)), x...), y...)
	ranks, ties := midranks(pooled)

	var rankSumX float64
	for i := range x {
		rankSumX += ranks[i]
	}
	// Mann-Whitney statistic of sample A
	w := rankSumX - n*(n+1)/2

	mu := n * m / 2
	nm := n + m
	sigma2 := n * m / 12 * (nm + 1 - tieCorrection(ties)/(nm*(nm-1)))
	if sigma2 <= 0 {
		// every observation tied across both samples
		return zero, core.NewDegenerateSampleError(name, "pooled", len(pooled))
	}
	sigma := math.Sqrt(sigma2)

	// continuity-corrected two-sided p-value
	diff := w - mu
	correction := 0.0
	if diff > 0 {
		correction = 0.5
	} else if diff < 0 {
		correction = -0.5
	}
	z := (diff - correction) / sigma
	p := 2 * distuv.UnitNormal.Survival(math.Abs(z))
	if p > 1 {
		p = 1
	}

	est, lo, hi := hodgesLehmann(x, y, mu, sigma)

	return domainstats.RankSumResult{
		Statistic: w,
		PValue:    p,
		Estimate:  est,
		CILower:   lo,
		CIUpper:   hi,
	}, nil
}

// hodgesLehmann computes the median of the n*m pairwise differences and an
// approximate 95% CI from the order statistics at mu +/- z*sigma.
func hodgesLehmann(x, y []float64, mu, sigma float64) (est, lo, hi float64) {
	diffs := make([]float64, 0, len(x)*len(y))
	for _, xi := range x {
		for _, yj := range y {
			diffs = append(diffs, xi-yj)
		}
	}
	sort.Float64s(diffs)

	nd := len(diffs)
	if nd%2 == 1 {
		est = diffs[nd/2]
	} else {
		est = (diffs[nd/2-1] + diffs[nd/2]) / 2
	}

	zCrit := distuv.UnitNormal.Quantile(0.975)
	k := int(math.Floor(mu - zCrit*sigma))
	if k < 0 {
		k = 0
	}
	if k > nd-1 {
		k = nd - 1
	}
	lo = diffs[k]
	hi = diffs[nd-1-k]
	return est, lo, hi
}
