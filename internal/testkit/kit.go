package testkit

import (
	"math"
	"math/rand"

	"carevisits/domain/survey"
)

// Generator produces synthetic tidy survey tables with known group
// structure for tests and demos. Deterministic for a given seed.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Obs builds one observation with the two main factors set. Visits may be
// negative to mean missing.
func Obs(visits int, depression, chronic survey.YesNo) survey.Observation {
	o := survey.Observation{Depression: depression, Chronic: chronic}
	if visits >= 0 {
		o.Visits = &visits
	}
	return o
}

// Table generates n observations. Depressed and chronically ill
// respondents draw visit counts from higher-rate Poisson distributions, so
// the group differences the analysis should detect are actually present.
// Roughly 5% of each field is missing.
func (g *Generator) Table(n int) survey.Table {
	table := make(survey.Table, 0, n)
	for i := 0; i < n; i++ {
		dep := g.yesNo(0.2, 0.05)
		chr := g.yesNo(0.35, 0.05)

		rate := 1.5
		if dep == survey.Yes {
			rate += 2.0
		}
		if chr == survey.Yes {
			rate += 1.5
		}
		o := survey.Observation{Depression: dep, Chronic: chr}
		if g.rng.Float64() >= 0.05 {
			v := g.poisson(rate)
			o.Visits = &v
		}

		o.HeartAttack = g.yesNo(0.06, 0.05)
		o.AnginaOrCHD = g.yesNo(0.06, 0.05)
		o.Stroke = g.yesNo(0.04, 0.05)
		o.Asthma = g.yesNo(0.14, 0.05)
		o.SkinCancer = g.yesNo(0.09, 0.05)
		o.OtherCancer = g.yesNo(0.10, 0.05)
		o.COPD = g.yesNo(0.08, 0.05)
		o.Arthritis = g.yesNo(0.30, 0.05)
		o.Diabetes = g.yesNo(0.13, 0.05)
		o.KidneyDisease = g.yesNo(0.03, 0.05)
		table = append(table, o)
	}
	return table
}

// poisson draws a Poisson count by Knuth's method; the rates used here are
// small enough that the multiplication never underflows.
func (g *Generator) poisson(lambda float64) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= g.rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

func (g *Generator) yesNo(pYes, pMissing float64) survey.YesNo {
	r := g.rng.Float64()
	if r < pMissing {
		return ""
	}
	if g.rng.Float64() < pYes {
		return survey.Yes
	}
	return survey.No
}
