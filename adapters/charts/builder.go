package charts

import (
	"fmt"
	"math"
	"sort"

	"carevisits/domain/stats"
	"carevisits/ports"

	"github.com/xuri/excelize/v2"
)

// Builder renders charts onto sheets of an in-memory excelize workbook.
// One sheet per chart: the grouped data lands in columns A.., the chart is
// anchored beside it. Violin and box charts are drawn as stacked quartile
// bands (lower quartile, lower-to-median, median-to-upper), the closest
// shape the workbook chart engine offers.
type Builder struct {
	file  *excelize.File
	count int
}

var _ ports.ChartRenderer = (*Builder)(nil)

func NewBuilder() *Builder {
	return &Builder{file: excelize.NewFile()}
}

// Workbook exposes the rendered workbook so callers can save it. The
// analysis core never touches this; it only carries the handles.
func (b *Builder) Workbook() *excelize.File {
	return b.file
}

// Histogram renders the frequency of each distinct outcome value.
func (b *Builder) Histogram(name, title string, values []float64) (stats.ChartHandle, error) {
	freq := map[float64]int{}
	for _, v := range values {
		freq[v]++
	}
	keys := make([]float64, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	cats := make([]string, len(keys))
	counts := make([]float64, len(keys))
	for i, k := range keys {
		cats[i] = fmt.Sprintf("%g", k)
		counts[i] = float64(freq[k])
	}
	return b.render(name, "histogram", title, excelize.Col, cats, []series{{name: "count", values: counts}})
}

// GroupBar renders one bar of mean outcome per group row.
func (b *Builder) GroupBar(name, title string, rows []stats.GroupSummary) (stats.ChartHandle, error) {
	cats, means := levelsAnd(rows, func(r stats.GroupSummary) float64 { return r.Mean })
	return b.render(name, "bar", title, excelize.Col, cats, []series{{name: "mean", values: means}})
}

// GroupBox renders stacked quartile bands per group row.
func (b *Builder) GroupBox(name, title string, rows []stats.GroupSummary) (stats.ChartHandle, error) {
	return b.quartileBands(name, "box", title, rows)
}

// GroupViolin renders the same quartile-band view labeled as the
// distribution-shape chart.
func (b *Builder) GroupViolin(name, title string, rows []stats.GroupSummary) (stats.ChartHandle, error) {
	return b.quartileBands(name, "violin", title, rows)
}

type series struct {
	name   string
	values []float64
}

func (b *Builder) quartileBands(name, kind, title string, rows []stats.GroupSummary) (stats.ChartHandle, error) {
	cats, lower := levelsAnd(rows, func(r stats.GroupSummary) float64 { return r.Lower })
	_, toMedian := levelsAnd(rows, func(r stats.GroupSummary) float64 { return r.Median - r.Lower })
	_, toUpper := levelsAnd(rows, func(r stats.GroupSummary) float64 { return r.Upper - r.Median })
	return b.render(name, kind, title, excelize.ColStacked, cats, []series{
		{name: "lower quartile", values: lower},
		{name: "to median", values: toMedian},
		{name: "to upper quartile", values: toUpper},
	})
}

func (b *Builder) render(name, kind, title string, chartType excelize.ChartType, categories []string, ss []series) (stats.ChartHandle, error) {
	var zero stats.ChartHandle

	b.count++
	sheet := sheetName(name, b.count)
	if _, err := b.file.NewSheet(sheet); err != nil {
		return zero, fmt.Errorf("failed to create chart sheet %s: %w", sheet, err)
	}

	// categories in column A, one series per following column
	for i, c := range categories {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := b.file.SetCellValue(sheet, cell, c); err != nil {
			return zero, err
		}
	}
	for j, s := range ss {
		head, _ := excelize.CoordinatesToCellName(j+2, 1)
		if err := b.file.SetCellValue(sheet, head, s.name); err != nil {
			return zero, err
		}
		for i, v := range s.values {
			cell, _ := excelize.CoordinatesToCellName(j+2, i+2)
			if math.IsNaN(v) {
				continue
			}
			if err := b.file.SetCellValue(sheet, cell, v); err != nil {
				return zero, err
			}
		}
	}

	chartSeries := make([]excelize.ChartSeries, len(ss))
	lastRow := len(categories) + 1
	for j := range ss {
		col, _ := excelize.ColumnNumberToName(j + 2)
		head, _ := excelize.CoordinatesToCellName(j+2, 1)
		chartSeries[j] = excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!%s", sheet, head),
			Categories: fmt.Sprintf("%s!A2:A%d", sheet, lastRow),
			Values:     fmt.Sprintf("%s!%s2:%s%d", sheet, col, col, lastRow),
		}
	}
	chart := excelize.Chart{
		Type:   chartType,
		Series: chartSeries,
		Title:  []excelize.RichTextRun{{Text: title}},
	}
	anchor, _ := excelize.CoordinatesToCellName(len(ss)+3, 2)
	if err := b.file.AddChart(sheet, anchor, &chart); err != nil {
		return zero, fmt.Errorf("failed to add chart %s: %w", name, err)
	}

	return stats.ChartHandle{Name: name, Kind: kind, Sheet: sheet}, nil
}

func levelsAnd(rows []stats.GroupSummary, pick func(stats.GroupSummary) float64) ([]string, []float64) {
	levels := make([]string, len(rows))
	vals := make([]float64, len(rows))
	for i, r := range rows {
		levels[i] = r.Level
		vals[i] = pick(r)
	}
	return levels, vals
}

// sheetName keeps names unique and within the 31-character sheet limit.
func sheetName(name string, n int) string {
	s := fmt.Sprintf("%02d %s", n, name)
	if len(s) > 31 {
		s = s[:31]
	}
	return s
}
