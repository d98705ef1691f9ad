package aggregate

import (
	"math"
	"sort"

	"carevisits/domain/core"
	domainstats "carevisits/domain/stats"
	"carevisits/domain/survey"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Aggregator computes descriptive-statistics rows over the outcome variable
// within caller-defined groups. Group levels are supplied explicitly so the
// caller controls row ordering; levels with no observations still get a row
// with N=0 and NaN statistics.
type Aggregator struct{}

func New() *Aggregator {
	return &Aggregator{}
}

// Summarize computes one descriptive-statistics row for a subgroup.
func (a *Aggregator) Summarize(level string, data []float64) domainstats.GroupSummary {
	row := domainstats.GroupSummary{
		Level:    level,
		N:        len(data),
		Min:      math.NaN(),
		Lower:    math.NaN(),
		Median:   math.NaN(),
		Upper:    math.NaN(),
		Mode:     math.NaN(),
		Mean:     math.NaN(),
		CI:       math.NaN(),
		Max:      math.NaN(),
		Range:    math.NaN(),
		Total:    math.NaN(),
		SD:       math.NaN(),
		SE:       math.NaN(),
		Skew:     math.NaN(),
		Kurtosis: math.NaN(),
	}
	if len(data) == 0 {
		return row
	}

	mean, _ := stats.Mean(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	total, _ := stats.Sum(data)

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	row.Min = min
	row.Max = max
	row.Range = max - min
	row.Total = total
	row.Mean = round2(mean)
	row.Lower = quantileType7(sorted, 0.25)
	row.Median = quantileType7(sorted, 0.50)
	row.Upper = quantileType7(sorted, 0.75)
	row.Mode = mode(sorted)

	if len(data) >= 2 {
		sd, _ := stats.StandardDeviationSample(data)
		se := sd / math.Sqrt(float64(len(data)))
		tCrit := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(len(data) - 1)}.Quantile(0.975)
		row.SD = round2(sd)
		row.SE = round3(se)
		row.CI = round3(tCrit * se)
	}

	row.Skew = round2(skewness(data, mean))
	row.Kurtosis = round2(excessKurtosis(data, mean))
	return row
}

// ByLevels produces one row per requested level of a binary factor, in the
// given order, over the non-missing outcome values of the table.
func (a *Aggregator) ByLevels(t survey.Table, field core.FieldKey, levels []survey.YesNo) []domainstats.GroupSummary {
	rows := make([]domainstats.GroupSummary, 0, len(levels))
	for _, level := range levels {
		rows = append(rows, a.Summarize(level.String(), t.VisitsByLevel(field, level)))
	}
	return rows
}

// ByInteraction produces one row per requested interaction level, in order.
func (a *Aggregator) ByInteraction(t survey.Table, levels []survey.InteractionLevel) []domainstats.GroupSummary {
	rows := make([]domainstats.GroupSummary, 0, len(levels))
	for _, level := range levels {
		rows = append(rows, a.Summarize(level.String(), t.VisitsByInteraction(level)))
	}
	return rows
}

// ByCondition produces one row per condition field, summarizing outcome
// values of respondents diagnosed with that condition, ranked in descending
// order of mean outcome. One data-driven loop replaces a per-condition block.
func (a *Aggregator) ByCondition(t survey.Table, conditions []core.FieldKey) []domainstats.GroupSummary {
	rows := make([]domainstats.GroupSummary, 0, len(conditions))
	for _, cond := range conditions {
		sub := t.Filter(survey.FieldVisits, cond)
		rows = append(rows, a.Summarize(cond.String(), sub.VisitsByLevel(cond, survey.Yes)))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		mi, mj := rows[i].Mean, rows[j].Mean
		// NaN means (empty groups) sink to the bottom.
		if math.IsNaN(mj) {
			return !math.IsNaN(mi)
		}
		if math.IsNaN(mi) {
			return false
		}
		return mi > mj
	})
	return rows
}

// quantileType7 computes the type-7 quantile estimator (linear interpolation
// between order statistics, the default of common statistical software).
// Input must be sorted and non-empty.
func quantileType7(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// mode returns the most frequent value; ties break to the smallest such
// value. When every value is unique the whole sample ties at frequency one,
// so the minimum wins. Input must be sorted and non-empty.
func mode(sorted []float64) float64 {
	modes, err := stats.Mode(sorted)
	if err != nil || len(modes) == 0 {
		return sorted[0]
	}
	best := modes[0]
	for _, m := range modes[1:] {
		if m < best {
			best = m
		}
	}
	return best
}

// skewness computes the Fisher (moment-based) skewness g1 = m3 / m2^1.5.
func skewness(data []float64, mean float64) float64 {
	n := float64(len(data))
	if n < 3 {
		return math.NaN()
	}
	var m2, m3 float64
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return math.NaN()
	}
	return m3 / math.Pow(m2, 1.5)
}

// excessKurtosis computes the moment-based excess kurtosis g2 = m4/m2^2 - 3.
func excessKurtosis(data []float64, mean float64) float64 {
	n := float64(len(data))
	if n < 4 {
		return math.NaN()
	}
	var m2, m4 float64
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return math.NaN()
	}
	return m4/(m2*m2) - 3
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
