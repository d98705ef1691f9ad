package stats

import (
	"encoding/json"
	"math"

	"carevisits/domain/core"
	"carevisits/domain/survey"
)

// Float marshals NaN as null so result bundles stay valid JSON. Summary
// rows for empty subgroups and the residual anova row carry NaN by
// contract, which encoding/json refuses to emit as a bare float64.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

// ============================================================================
// STABLE PRIMITIVES (canonical result records, immutable once computed)
// ============================================================================

// GroupSummary is one descriptive-statistics row for a single factor level.
// INVARIANTS:
// - N equals the count of non-missing outcome values in the subgroup
// - Min <= Lower <= Median <= Upper <= Max whenever N > 0
// - Min <= Mean <= Max whenever N > 0
// - all statistics other than N are NaN when N == 0
type GroupSummary struct {
	Level    string  `json:"level"`
	N        int     `json:"n"`
	Min      float64 `json:"min"`
	Lower    float64 `json:"lower"`  // 25th percentile, type-7 estimator
	Median   float64 `json:"median"` // 50th percentile, type-7 estimator
	Upper    float64 `json:"upper"`  // 75th percentile, type-7 estimator
	Mode     float64 `json:"mode"`   // smallest value wins ties
	Mean     float64 `json:"mean"`   // rounded to 2 decimals
	CI       float64 `json:"ci"`     // 95% CI half-width of the mean, 3 decimals
	Max      float64 `json:"max"`
	Range    float64 `json:"range"`
	Total    float64 `json:"total"`
	SD       float64 `json:"sd"`       // sample standard deviation, 2 decimals
	SE       float64 `json:"se"`       // standard error of the mean, 3 decimals
	Skew     float64 `json:"skew"`     // Fisher skewness, 2 decimals
	Kurtosis float64 `json:"kurtosis"` // excess kurtosis, 2 decimals
}

func (g GroupSummary) MarshalJSON() ([]byte, error) {
	type row struct {
		Level    string `json:"level"`
		N        int    `json:"n"`
		Min      Float  `json:"min"`
		Lower    Float  `json:"lower"`
		Median   Float  `json:"median"`
		Upper    Float  `json:"upper"`
		Mode     Float  `json:"mode"`
		Mean     Float  `json:"mean"`
		CI       Float  `json:"ci"`
		Max      Float  `json:"max"`
		Range    Float  `json:"range"`
		Total    Float  `json:"total"`
		SD       Float  `json:"sd"`
		SE       Float  `json:"se"`
		Skew     Float  `json:"skew"`
		Kurtosis Float  `json:"kurtosis"`
	}
	return json.Marshal(row{
		Level:    g.Level,
		N:        g.N,
		Min:      Float(g.Min),
		Lower:    Float(g.Lower),
		Median:   Float(g.Median),
		Upper:    Float(g.Upper),
		Mode:     Float(g.Mode),
		Mean:     Float(g.Mean),
		CI:       Float(g.CI),
		Max:      Float(g.Max),
		Range:    Float(g.Range),
		Total:    Float(g.Total),
		SD:       Float(g.SD),
		SE:       Float(g.SE),
		Skew:     Float(g.Skew),
		Kurtosis: Float(g.Kurtosis),
	})
}

// RankSumResult is the outcome of the two-sample rank-based location test:
// Wilcoxon rank-sum statistic, two-sided p-value, and the Hodges-Lehmann
// shift estimate with its confidence interval.
type RankSumResult struct {
	Statistic float64 `json:"statistic"` // W, Mann-Whitney statistic of sample A
	PValue    float64 `json:"p_value"`
	Estimate  float64 `json:"estimate"` // Hodges-Lehmann location shift (A - B)
	CILower   float64 `json:"ci_lower"`
	CIUpper   float64 `json:"ci_upper"`
}

// KSResult is the outcome of the two-sample Kolmogorov-Smirnov test,
// used as the distribution-shape effect proxy.
type KSResult struct {
	Statistic float64 `json:"statistic"` // D, max vertical ECDF distance
	PValue    float64 `json:"p_value"`
}

// KruskalResult is the omnibus k-sample rank test over the interaction factor.
type KruskalResult struct {
	Statistic float64 `json:"statistic"` // H, tie-corrected
	DF        int     `json:"df"`
	PValue    float64 `json:"p_value"`
}

// PairwiseComparison is one row of the fixed pairwise table over the
// interaction factor. Levels are split into their factor parts so
// downstream consumers never re-parse the "Yes.No" encoding.
type PairwiseComparison struct {
	Test        string  `json:"test"`
	DepressionA string  `json:"depression_a"`
	ChronicA    string  `json:"chronic_a"`
	DepressionB string  `json:"depression_b"`
	ChronicB    string  `json:"chronic_b"`
	Statistic   float64 `json:"statistic"`
	PValue      float64 `json:"p_value"`
	Estimate    float64 `json:"estimate"`
	CILower     float64 `json:"ci_lower"`
	CIUpper     float64 `json:"ci_upper"`
	EffectStat  float64 `json:"effect_statistic"` // KS D between the two groups
}

// Coefficient is one estimated term of the linear model.
type Coefficient struct {
	Term     string  `json:"term"`
	Estimate float64 `json:"estimate"`
	SE       float64 `json:"se"`
	TValue   float64 `json:"t_value"`
	PValue   float64 `json:"p_value"`
}

// a saturated fit has zero residual variance and infinite t-values
func (c Coefficient) MarshalJSON() ([]byte, error) {
	type row struct {
		Term     string `json:"term"`
		Estimate Float  `json:"estimate"`
		SE       Float  `json:"se"`
		TValue   Float  `json:"t_value"`
		PValue   Float  `json:"p_value"`
	}
	return json.Marshal(row{
		Term:     c.Term,
		Estimate: Float(c.Estimate),
		SE:       Float(c.SE),
		TValue:   Float(c.TValue),
		PValue:   Float(c.PValue),
	})
}

// AnovaRow is one line of the Type I (sequential) analysis-of-variance table.
type AnovaRow struct {
	Term   string  `json:"term"`
	DF     int     `json:"df"`
	SumSq  float64 `json:"sum_sq"`
	MeanSq float64 `json:"mean_sq"`
	F      float64 `json:"f"`       // NaN on the residual row
	PValue float64 `json:"p_value"` // NaN on the residual row
}

func (r AnovaRow) MarshalJSON() ([]byte, error) {
	type row struct {
		Term   string `json:"term"`
		DF     int    `json:"df"`
		SumSq  Float  `json:"sum_sq"`
		MeanSq Float  `json:"mean_sq"`
		F      Float  `json:"f"`
		PValue Float  `json:"p_value"`
	}
	return json.Marshal(row{
		Term:   r.Term,
		DF:     r.DF,
		SumSq:  Float(r.SumSq),
		MeanSq: Float(r.MeanSq),
		F:      Float(r.F),
		PValue: Float(r.PValue),
	})
}

// ModelFit packages the OLS fit of visits ~ depression * chronic.
type ModelFit struct {
	Coefficients []Coefficient `json:"coefficients"`
	Anova        []AnovaRow    `json:"anova"`
	ResidualDF   int           `json:"residual_df"`
	RSquared     float64       `json:"r_squared"`
}

// ============================================================================
// RESULT BUNDLE (sole output of one analysis invocation)
// ============================================================================

// DataFrames holds the three filtered sub-tables.
type DataFrames struct {
	DepressionData  survey.Table `json:"depressionData"`
	ChronicData     survey.Table `json:"chronicData"`
	InteractionData survey.Table `json:"interactionData"`
}

// Summaries holds the grouped descriptive statistics. AllChronic is ranked
// in strictly non-increasing order of mean outcome across the twelve
// conditions.
type Summaries struct {
	Depression  []GroupSummary `json:"depression"`
	Chronic     []GroupSummary `json:"chronic"`
	Interaction []GroupSummary `json:"interaction"`
	AllChronic  []GroupSummary `json:"allChronic"`
}

// Tests holds the comparative test results and the model fit.
type Tests struct {
	DepressionTest   RankSumResult        `json:"depressionTest"`
	DepressionEffect KSResult             `json:"depressionEffect"`
	ChronicTest      RankSumResult        `json:"chronicTest"`
	ChronicEffect    KSResult             `json:"chronicEffect"`
	InteractionTest  KruskalResult        `json:"interactionTest"`
	InteractionModel ModelFit             `json:"interactionModel"`
	Pairwise         []PairwiseComparison `json:"pairwise"`
}

// ChartHandle is an opaque reference to a rendered chart. The core never
// inspects chart contents.
type ChartHandle struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Sheet string `json:"sheet"`
}

// Bundle is the single structured return value of one analysis invocation.
// Created once, never mutated afterward.
type Bundle struct {
	RunID      core.RunID             `json:"run_id"`
	CreatedAt  core.Timestamp         `json:"created_at"`
	DataFrames DataFrames             `json:"dataFrames"`
	Stats      Summaries              `json:"stats"`
	Plots      map[string]ChartHandle `json:"plots"`
	Tests      Tests                  `json:"tests"`
}
