package compare

import (
	"math"
	"sort"

	"carevisits/domain/core"
	domainstats "carevisits/domain/stats"
)

// KolmogorovSmirnov performs the two-sample Kolmogorov-Smirnov test: the
// statistic is the maximum vertical distance between the two empirical
// CDFs, the p-value the asymptotic Kolmogorov distribution tail. Symmetric
// under sample swap.
func (e *Engine) KolmogorovSmirnov(name string, x, y []float64) (domainstats.KSResult, error) {
	var zero domainstats.KSResult
	if len(x) == 0 {
		return zero, core.NewDegenerateSampleError(name, "A", 0)
	}
	if len(y) == 0 {
		return zero, core.NewDegenerateSampleError(name, "B", 0)
	}

	a := make([]float64, len(x))
	b := make([]float64, len(y))
	copy(a, x)
	copy(b, y)
	sort.Float64s(a)
	sort.Float64s(b)

	n := float64(len(a))
	m := float64(len(b))
	var i, j int
	var d float64
	for i < len(a) && j < len(b) {
		va, vb := a[i], b[j]
		if va <= vb {
			i++
		}
		if vb <= va {
			j++
		}
		gap := math.Abs(float64(i)/n - float64(j)/m)
		if gap > d {
			d = gap
		}
	}

	ne := n * m / (n + m)
	lambda := (math.Sqrt(ne) + 0.12 + 0.11/math.Sqrt(ne)) * d
	return domainstats.KSResult{
		Statistic: d,
		PValue:    ksProbability(lambda),
	}, nil
}

// ksProbability evaluates the Kolmogorov distribution tail
// Q(lambda) = 2 * sum_{j>=1} (-1)^(j-1) exp(-2 j^2 lambda^2).
func ksProbability(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}
	const eps1 = 1e-6
	const eps2 = 1e-16
	a2 := -2 * lambda * lambda
	sign := 1.0
	var sum, prevTerm float64
	for j := 1; j <= 100; j++ {
		term := sign * 2 * math.Exp(a2*float64(j)*float64(j))
		sum += term
		if math.Abs(term) <= eps1*prevTerm || math.Abs(term) <= eps2*sum {
			break
		}
		sign = -sign
		prevTerm = math.Abs(term)
	}
	if sum < 0 {
		return 0
	}
	if sum > 1 {
		return 1
	}
	return sum
}
