package compare

import (
	"fmt"
	"strings"

	domainstats "carevisits/domain/stats"
	"carevisits/domain/survey"
)

// InteractionPairs is the fixed, non-exhaustive subset of pairwise
// comparisons run over the four-level interaction factor. The asymmetric
// choice of three of the six possible pairs follows the original research
// narrative (depressed-and-chronic vs chronic-only, chronic-only vs
// depressed-only, depressed-only vs neither) and is preserved exactly.
var InteractionPairs = [][2]survey.InteractionLevel{
	{survey.YesYes, survey.NoYes},
	{survey.NoYes, survey.YesNo_},
	{survey.YesNo_, survey.NoNo},
}

// PairwiseInteraction runs the rank-sum test plus the KS effect statistic
// for each fixed pair, given the outcome samples per interaction level.
func (e *Engine) PairwiseInteraction(samples map[survey.InteractionLevel][]float64) ([]domainstats.PairwiseComparison, error) {
	rows := make([]domainstats.PairwiseComparison, 0, len(InteractionPairs))
	for i, pair := range InteractionPairs {
		a, b := pair[0], pair[1]
		name := fmt.Sprintf("pairwise-%d (%s vs %s)", i+1, a, b)

		rs, err := e.RankSum(name, samples[a], samples[b])
		if err != nil {
			return nil, err
		}
		ks, err := e.KolmogorovSmirnov(name, samples[a], samples[b])
		if err != nil {
			return nil, err
		}

		depA, chrA := splitLevel(a)
		depB, chrB := splitLevel(b)
		rows = append(rows, domainstats.PairwiseComparison{
			Test:        fmt.Sprintf("W%d", i+1),
			DepressionA: depA,
			ChronicA:    chrA,
			DepressionB: depB,
			ChronicB:    chrB,
			Statistic:   rs.Statistic,
			PValue:      rs.PValue,
			Estimate:    rs.Estimate,
			CILower:     rs.CILower,
			CIUpper:     rs.CIUpper,
			EffectStat:  ks.Statistic,
		})
	}
	return rows, nil
}

func splitLevel(l survey.InteractionLevel) (depression, chronic string) {
	parts := strings.SplitN(l.String(), ".", 2)
	if len(parts) != 2 {
		return l.String(), ""
	}
	return parts[0], parts[1]
}
