package survey

import (
	"carevisits/domain/core"
)

// Table is an ordered sequence of observations. Filters never reorder rows
// and never mutate the receiver.
type Table []Observation

// Filter returns the complete-case sub-table: rows where every required
// field is non-missing, in original order. Filtering an already-filtered
// table by the same fields yields an identical table.
func (t Table) Filter(required ...core.FieldKey) Table {
	out := make(Table, 0, len(t))
	for _, o := range t {
		keep := true
		for _, f := range required {
			if !o.Has(f) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, o)
		}
	}
	return out
}

// HeavyUtilizers restricts to rows with more than four reported visits.
// Rows with a missing visit count are excluded.
func (t Table) HeavyUtilizers() Table {
	out := make(Table, 0, len(t))
	for _, o := range t {
		if o.Visits != nil && *o.Visits > 4 {
			out = append(out, o)
		}
	}
	return out
}

// Visits projects the non-missing outcome values, in row order.
func (t Table) Visits() []float64 {
	out := make([]float64, 0, len(t))
	for _, o := range t {
		if o.Visits != nil {
			out = append(out, float64(*o.Visits))
		}
	}
	return out
}

// VisitsByLevel projects the non-missing outcome values of rows whose
// binary field matches the given level.
func (t Table) VisitsByLevel(f core.FieldKey, level YesNo) []float64 {
	out := make([]float64, 0, len(t))
	for _, o := range t {
		if o.Visits == nil {
			continue
		}
		v, ok := o.Binary(f)
		if ok && v == level {
			out = append(out, float64(*o.Visits))
		}
	}
	return out
}

// VisitsByInteraction projects the non-missing outcome values of rows at
// the given interaction level.
func (t Table) VisitsByInteraction(level InteractionLevel) []float64 {
	out := make([]float64, 0, len(t))
	for _, o := range t {
		if o.Visits == nil {
			continue
		}
		l, ok := o.Interaction()
		if ok && l == level {
			out = append(out, float64(*o.Visits))
		}
	}
	return out
}
