package compare

import (
	"sort"
)

// midranks assigns ranks 1..n to the pooled sample, averaging ranks within
// tied runs. Returns the ranks (in input order) and the tie-run sizes.
func midranks(pooled []float64) (ranks []float64, ties []int) {
	n := len(pooled)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return pooled[idx[a]] < pooled[idx[b]] })

	ranks = make([]float64, n)
	i := 0
	for i < n {
		j := i
		for j+1 < n && pooled[idx[j+1]] == pooled[idx[i]] {
			j++
		}
		// tied run [i, j]; each member gets the average rank
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		if j > i {
			ties = append(ties, j-i+1)
		}
		i = j + 1
	}
	return ranks, ties
}

// tieCorrection computes the sum of (t^3 - t) over tie runs.
func tieCorrection(ties []int) float64 {
	var sum float64
	for _, t := range ties {
		tf := float64(t)
		sum += tf*tf*tf - tf
	}
	return sum
}
