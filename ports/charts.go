package ports

import (
	"carevisits/domain/stats"
)

// ChartRenderer is the external plotting collaborator. The analysis core
// hands over grouped data plus an aesthetic mapping and receives an opaque
// handle; it never inspects chart contents.
type ChartRenderer interface {
	// Histogram renders the frequency distribution of raw outcome values.
	Histogram(name, title string, values []float64) (stats.ChartHandle, error)
	// GroupBar renders one bar of mean outcome per group row.
	GroupBar(name, title string, rows []stats.GroupSummary) (stats.ChartHandle, error)
	// GroupBox renders quartile boxes per group row.
	GroupBox(name, title string, rows []stats.GroupSummary) (stats.ChartHandle, error)
	// GroupViolin renders the distribution-shape view per group row.
	GroupViolin(name, title string, rows []stats.GroupSummary) (stats.ChartHandle, error)
}
