package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"carevisits/domain/stats"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Generator turns a result bundle into a human-readable analysis report:
// markdown first, optionally rendered to HTML.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Markdown renders the bundle as a markdown document.
func (g *Generator) Markdown(b *stats.Bundle) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Doctor visits, depression and chronic illness\n\n")
	fmt.Fprintf(&sb, "Run `%s`, %s. Filtered rows: depression %d, chronic %d, interaction %d.\n\n",
		b.RunID, b.CreatedAt.Time().Format("2006-01-02 15:04"),
		len(b.DataFrames.DepressionData), len(b.DataFrames.ChronicData), len(b.DataFrames.InteractionData))

	writeSummaryTable(&sb, "Visits by depression", b.Stats.Depression)
	writeSummaryTable(&sb, "Visits by chronic illness", b.Stats.Chronic)
	writeSummaryTable(&sb, "Visits by depression x chronic", b.Stats.Interaction)
	writeSummaryTable(&sb, "Visits by condition, ranked by mean", b.Stats.AllChronic)

	sb.WriteString("## Comparative tests\n\n")
	writeRankSum(&sb, "Depression (Yes vs No)", b.Tests.DepressionTest, b.Tests.DepressionEffect)
	writeRankSum(&sb, "Chronic illness (Yes vs No)", b.Tests.ChronicTest, b.Tests.ChronicEffect)
	fmt.Fprintf(&sb, "- Interaction omnibus (Kruskal-Wallis): H = %.3f, df = %d, p = %s\n\n",
		b.Tests.InteractionTest.Statistic, b.Tests.InteractionTest.DF, fmtP(b.Tests.InteractionTest.PValue))

	sb.WriteString("## Pairwise interaction comparisons\n\n")
	sb.WriteString("| Test | A | B | W | p | estimate | 95% CI | KS D |\n")
	sb.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, pc := range b.Tests.Pairwise {
		fmt.Fprintf(&sb, "| %s | %s.%s | %s.%s | %.1f | %s | %.2f | [%.2f, %.2f] | %.3f |\n",
			pc.Test, pc.DepressionA, pc.ChronicA, pc.DepressionB, pc.ChronicB,
			pc.Statistic, fmtP(pc.PValue), pc.Estimate, pc.CILower, pc.CIUpper, pc.EffectStat)
	}
	sb.WriteString("\n")

	sb.WriteString("## Linear model: visits ~ depression * chronic\n\n")
	sb.WriteString("| Term | Estimate | SE | t | p |\n|---|---|---|---|---|\n")
	for _, c := range b.Tests.InteractionModel.Coefficients {
		fmt.Fprintf(&sb, "| %s | %.3f | %.3f | %.2f | %s |\n", c.Term, c.Estimate, c.SE, c.TValue, fmtP(c.PValue))
	}
	sb.WriteString("\n### ANOVA (Type I)\n\n| Term | df | Sum Sq | Mean Sq | F | p |\n|---|---|---|---|---|---|\n")
	for _, a := range b.Tests.InteractionModel.Anova {
		fmt.Fprintf(&sb, "| %s | %d | %.2f | %.2f | %s | %s |\n",
			a.Term, a.DF, a.SumSq, a.MeanSq, fmtStat(a.F), fmtP(a.PValue))
	}
	fmt.Fprintf(&sb, "\nR-squared: %.4f, residual df: %d.\n\n",
		b.Tests.InteractionModel.RSquared, b.Tests.InteractionModel.ResidualDF)

	if len(b.Plots) > 0 {
		sb.WriteString("## Charts\n\n")
		names := make([]string, 0, len(b.Plots))
		for name := range b.Plots {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			h := b.Plots[name]
			fmt.Fprintf(&sb, "- %s (%s) on workbook sheet %q\n", h.Name, h.Kind, h.Sheet)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// HTML renders the markdown report to a standalone HTML fragment.
func (g *Generator) HTML(b *stats.Bundle) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(g.Markdown(b)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

func writeSummaryTable(sb *strings.Builder, title string, rows []stats.GroupSummary) {
	fmt.Fprintf(sb, "## %s\n\n", title)
	sb.WriteString("| Level | N | Min | Q1 | Median | Q3 | Max | Mode | Mean | CI | SD | SE | Skew | Kurtosis | Total |\n")
	sb.WriteString("|---|---|---|---|---|---|---|---|---|---|---|---|---|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(sb, "| %s | %d | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			r.Level, r.N,
			fmtStat(r.Min), fmtStat(r.Lower), fmtStat(r.Median), fmtStat(r.Upper), fmtStat(r.Max),
			fmtStat(r.Mode), fmtStat(r.Mean), fmtStat(r.CI), fmtStat(r.SD), fmtStat(r.SE),
			fmtStat(r.Skew), fmtStat(r.Kurtosis), fmtStat(r.Total))
	}
	sb.WriteString("\n")
}

func writeRankSum(sb *strings.Builder, title string, rs stats.RankSumResult, ks stats.KSResult) {
	fmt.Fprintf(sb, "- %s: W = %.1f, p = %s, shift = %.2f [%.2f, %.2f]; KS D = %.3f, p = %s\n",
		title, rs.Statistic, fmtP(rs.PValue), rs.Estimate, rs.CILower, rs.CIUpper,
		ks.Statistic, fmtP(ks.PValue))
}

func fmtStat(x float64) string {
	if math.IsNaN(x) {
		return "NA"
	}
	return fmt.Sprintf("%.2f", x)
}

func fmtP(p float64) string {
	if math.IsNaN(p) {
		return "NA"
	}
	if p < 0.001 {
		return "<0.001"
	}
	return fmt.Sprintf("%.3f", p)
}
