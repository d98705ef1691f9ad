package app

import (
	"context"
	"log"
	"time"

	"carevisits/adapters/stats/aggregate"
	"carevisits/adapters/stats/compare"
	"carevisits/adapters/stats/model"
	"carevisits/domain/core"
	"carevisits/domain/stats"
	"carevisits/domain/survey"
	"carevisits/ports"

	"golang.org/x/sync/errgroup"
)

// AnalysisService runs the one-shot depression / chronic-illness / visits
// analysis: data subsetting, grouped descriptive statistics, distribution
// comparison tests, the two-factor linear model, and chart rendering,
// bundled into a single immutable result.
//
// Failure policy is fail fast: any component error aborts the whole call.
// The computation is deterministic and pure, so a retry would fail
// identically.
type AnalysisService struct {
	aggregator *aggregate.Aggregator
	comparer   *compare.Engine
	fitter     *model.Fitter
	renderer   ports.ChartRenderer
}

// NewAnalysisService creates the analysis service. The chart renderer is
// the external plotting collaborator; pass nil to skip chart rendering.
func NewAnalysisService(renderer ports.ChartRenderer) *AnalysisService {
	return &AnalysisService{
		aggregator: aggregate.New(),
		comparer:   compare.New(),
		fitter:     model.New(),
		renderer:   renderer,
	}
}

// Analyze is the single entry point: it consumes the tidy survey table and
// returns the complete result bundle. The input is never mutated; every
// entity in the bundle is created fresh for this invocation.
func (s *AnalysisService) Analyze(ctx context.Context, observations survey.Table) (*stats.Bundle, error) {
	start := time.Now()

	bundle := &stats.Bundle{
		RunID:     core.RunID(core.NewID()),
		CreatedAt: core.Now(),
		Plots:     map[string]stats.ChartHandle{},
	}

	// filtered sub-tables, one per analysis axis
	depressionData := observations.Filter(survey.FieldVisits, survey.FieldDepression)
	chronicData := observations.Filter(survey.FieldVisits, survey.FieldChronic)
	interactionData := observations.Filter(survey.FieldVisits, survey.FieldDepression, survey.FieldChronic)
	bundle.DataFrames = stats.DataFrames{
		DepressionData:  depressionData,
		ChronicData:     chronicData,
		InteractionData: interactionData,
	}

	yesNo := []survey.YesNo{survey.Yes, survey.No}
	depYes := depressionData.VisitsByLevel(survey.FieldDepression, survey.Yes)
	depNo := depressionData.VisitsByLevel(survey.FieldDepression, survey.No)
	chrYes := chronicData.VisitsByLevel(survey.FieldChronic, survey.Yes)
	chrNo := chronicData.VisitsByLevel(survey.FieldChronic, survey.No)

	interactionSamples := map[survey.InteractionLevel][]float64{}
	interactionGroups := make([][]float64, 0, 4)
	for _, level := range survey.InteractionLevels() {
		sample := interactionData.VisitsByInteraction(level)
		interactionSamples[level] = sample
		interactionGroups = append(interactionGroups, sample)
	}

	// the per-axis computations are independent and embarrassingly
	// parallel; correctness does not depend on the concurrency
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		bundle.Stats.Depression = s.aggregator.ByLevels(depressionData, survey.FieldDepression, yesNo)
		bundle.Stats.Chronic = s.aggregator.ByLevels(chronicData, survey.FieldChronic, yesNo)
		bundle.Stats.Interaction = s.aggregator.ByInteraction(interactionData, survey.InteractionLevels())
		bundle.Stats.AllChronic = s.aggregator.ByCondition(observations, survey.ConditionFields())
		return nil
	})

	g.Go(func() error {
		var err error
		if bundle.Tests.DepressionTest, err = s.comparer.RankSum("depression", depYes, depNo); err != nil {
			return err
		}
		if bundle.Tests.DepressionEffect, err = s.comparer.KolmogorovSmirnov("depression", depYes, depNo); err != nil {
			return err
		}
		if bundle.Tests.ChronicTest, err = s.comparer.RankSum("chronic", chrYes, chrNo); err != nil {
			return err
		}
		bundle.Tests.ChronicEffect, err = s.comparer.KolmogorovSmirnov("chronic", chrYes, chrNo)
		return err
	})

	g.Go(func() error {
		var err error
		if bundle.Tests.InteractionTest, err = s.comparer.KruskalWallis("interaction", interactionGroups); err != nil {
			return err
		}
		if bundle.Tests.Pairwise, err = s.comparer.PairwiseInteraction(interactionSamples); err != nil {
			return err
		}
		bundle.Tests.InteractionModel, err = s.fitter.Fit(interactionData)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.renderer != nil {
		if err := s.renderPlots(bundle, depressionData); err != nil {
			return nil, err
		}
	}

	log.Printf("[AnalysisService] run %s complete in %.1fms (%d/%d/%d filtered rows)",
		bundle.RunID, float64(time.Since(start).Microseconds())/1000,
		len(depressionData), len(chronicData), len(interactionData))
	return bundle, nil
}

// renderPlots attaches the requested visualizations. The renderer mutates a
// shared workbook, so charts are built sequentially after the statistics.
func (s *AnalysisService) renderPlots(bundle *stats.Bundle, depressionData survey.Table) error {
	type plot struct {
		name string
		run  func() (stats.ChartHandle, error)
	}
	r := s.renderer
	plots := []plot{
		{"visitsHistogram", func() (stats.ChartHandle, error) {
			return r.Histogram("visitsHistogram", "Doctor visits, all complete cases", depressionData.Visits())
		}},
		{"heavyUtilizerHistogram", func() (stats.ChartHandle, error) {
			return r.Histogram("heavyUtilizerHistogram", "Doctor visits, more than 4 visits", depressionData.HeavyUtilizers().Visits())
		}},
		{"depressionYesHistogram", func() (stats.ChartHandle, error) {
			return r.Histogram("depressionYesHistogram", "Visits, depression diagnosis", depressionData.VisitsByLevel(survey.FieldDepression, survey.Yes))
		}},
		{"depressionNoHistogram", func() (stats.ChartHandle, error) {
			return r.Histogram("depressionNoHistogram", "Visits, no depression diagnosis", depressionData.VisitsByLevel(survey.FieldDepression, survey.No))
		}},
		{"depressionViolin", func() (stats.ChartHandle, error) {
			return r.GroupViolin("depressionViolin", "Visits by depression", bundle.Stats.Depression)
		}},
		{"depressionBox", func() (stats.ChartHandle, error) {
			return r.GroupBox("depressionBox", "Visits by depression", bundle.Stats.Depression)
		}},
		{"depressionMeanBar", func() (stats.ChartHandle, error) {
			return r.GroupBar("depressionMeanBar", "Mean visits by depression", bundle.Stats.Depression)
		}},
		{"chronicViolin", func() (stats.ChartHandle, error) {
			return r.GroupViolin("chronicViolin", "Visits by chronic illness", bundle.Stats.Chronic)
		}},
		{"chronicBox", func() (stats.ChartHandle, error) {
			return r.GroupBox("chronicBox", "Visits by chronic illness", bundle.Stats.Chronic)
		}},
		{"chronicMeanBar", func() (stats.ChartHandle, error) {
			return r.GroupBar("chronicMeanBar", "Mean visits by chronic illness", bundle.Stats.Chronic)
		}},
		{"interactionViolin", func() (stats.ChartHandle, error) {
			return r.GroupViolin("interactionViolin", "Visits by depression x chronic", bundle.Stats.Interaction)
		}},
		{"interactionBox", func() (stats.ChartHandle, error) {
			return r.GroupBox("interactionBox", "Visits by depression x chronic", bundle.Stats.Interaction)
		}},
		{"interactionMeanBar", func() (stats.ChartHandle, error) {
			return r.GroupBar("interactionMeanBar", "Mean visits by depression x chronic", bundle.Stats.Interaction)
		}},
		{"allChronicMeanBar", func() (stats.ChartHandle, error) {
			return r.GroupBar("allChronicMeanBar", "Mean visits by condition, ranked", bundle.Stats.AllChronic)
		}},
	}

	for _, p := range plots {
		handle, err := p.run()
		if err != nil {
			return err
		}
		bundle.Plots[p.name] = handle
	}
	return nil
}
