package stats

import (
	"sort"

	"ordstat/domain/analysis"
)

// BHCorrector applies the Benjamini-Hochberg false discovery rate procedure
// over the full family of tested pairs.
type BHCorrector struct {
	q float64
}

// NewBHCorrector creates a corrector for control level q.
func NewBHCorrector(q float64) *BHCorrector {
	return &BHCorrector{q: q}
}

// Apply adjusts every tested result in place and assigns confidence tiers.
// Insufficient-sample rows pass through untouched: they were never part of the
// test family, so they must not inflate m.
//
// Adjusted p for rank i of m is min over j >= i of (p_j * m / j), which makes
// the adjusted values non-decreasing in rank and always >= the raw value.
func (c *BHCorrector) Apply(results []analysis.SignificanceResult) {
	tested := make([]int, 0, len(results))
	for i := range results {
		if !results[i].InsufficientSample {
			tested = append(tested, i)
		}
	}
	m := len(tested)
	if m == 0 {
		return
	}

	// Ascending raw p-value; ties resolved by pair identity for determinism.
	sort.Slice(tested, func(a, b int) bool {
		ra, rb := results[tested[a]], results[tested[b]]
		if ra.PValue != rb.PValue {
			return ra.PValue < rb.PValue
		}
		if ra.CapabilityA != rb.CapabilityA {
			return ra.CapabilityA < rb.CapabilityA
		}
		return ra.CapabilityB < rb.CapabilityB
	})

	// Walk from the largest rank downward, enforcing monotonicity.
	running := 1.0
	adjusted := make([]float64, m)
	for rank := m; rank >= 1; rank-- {
		idx := tested[rank-1]
		candidate := results[idx].PValue * float64(m) / float64(rank)
		if candidate < running {
			running = candidate
		}
		adjusted[rank-1] = running
	}

	for rank := 1; rank <= m; rank++ {
		idx := tested[rank-1]
		results[idx].AdjustedP = adjusted[rank-1]
		results[idx].Significant = adjusted[rank-1] <= c.q
		results[idx].Tier = analysis.AssignTier(adjusted[rank-1], results[idx].EffectSize)
	}
}
