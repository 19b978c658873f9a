package stats

import (
	"math"
	"testing"

	"ordstat/domain/analysis"
)

func testedResult(a, b string, p, effect float64) analysis.SignificanceResult {
	return analysis.SignificanceResult{
		CapabilityA: a,
		CapabilityB: b,
		PValue:      p,
		AdjustedP:   p,
		EffectSize:  effect,
		SampleSize:  50,
		Tier:        analysis.TierNone,
	}
}

func TestBHCorrector(t *testing.T) {
	t.Run("adjusted values dominate raw and stay monotone", func(t *testing.T) {
		results := []analysis.SignificanceResult{
			testedResult("A", "B", 0.001, 0.7),
			testedResult("C", "D", 0.04, 0.5),
			testedResult("E", "F", 0.03, 0.3),
			testedResult("G", "H", 0.9, 0.1),
		}
		NewBHCorrector(0.05).Apply(results)

		for _, r := range results {
			if r.AdjustedP < r.PValue {
				t.Fatalf("adjusted %v below raw %v for (%s, %s)", r.AdjustedP, r.PValue, r.CapabilityA, r.CapabilityB)
			}
			if r.AdjustedP > 1 {
				t.Fatalf("adjusted p above one: %v", r.AdjustedP)
			}
		}

		// m=4. Ranked raw p: 0.001, 0.03, 0.04, 0.9.
		// Adjusted: 0.004, min(0.06, 0.04*4/3=0.0533..)=0.0533.., 0.0533.., 0.9.
		if math.Abs(results[0].AdjustedP-0.004) > 1e-12 {
			t.Fatalf("rank 1 adjusted = %v, want 0.004", results[0].AdjustedP)
		}
		if math.Abs(results[2].AdjustedP-0.04*4/3) > 1e-12 {
			t.Fatalf("rank 2 adjusted = %v, want the monotone cap 0.0533..", results[2].AdjustedP)
		}
		if math.Abs(results[1].AdjustedP-0.04*4/3) > 1e-12 {
			t.Fatalf("rank 3 adjusted = %v, want 0.0533..", results[1].AdjustedP)
		}
	})

	t.Run("significance and tiers follow the adjusted value", func(t *testing.T) {
		results := []analysis.SignificanceResult{
			testedResult("A", "B", 0.00001, 0.7),
			testedResult("C", "D", 0.5, 0.6),
		}
		NewBHCorrector(0.05).Apply(results)

		if !results[0].Significant || results[1].Significant {
			t.Fatalf("significance flags wrong: %+v", results)
		}
		if results[0].Tier != analysis.TierHigh {
			t.Fatalf("tier = %s, want high (adjusted %v, effect 0.7)", results[0].Tier, results[0].AdjustedP)
		}
		if results[1].Tier != analysis.TierNone {
			t.Fatalf("tier = %s, want none", results[1].Tier)
		}
	})

	t.Run("insufficient rows never join the family", func(t *testing.T) {
		insufficient := analysis.SignificanceResult{
			CapabilityA:        "X",
			CapabilityB:        "Y",
			InsufficientSample: true,
			Tier:               analysis.TierNone,
		}
		results := []analysis.SignificanceResult{
			testedResult("A", "B", 0.02, 0.5),
			insufficient,
		}
		NewBHCorrector(0.05).Apply(results)

		if results[1] != insufficient {
			t.Fatalf("insufficient row was modified: %+v", results[1])
		}
		// m=1, so the single tested row keeps its raw p.
		if math.Abs(results[0].AdjustedP-0.02) > 1e-15 {
			t.Fatalf("adjusted = %v, want raw 0.02 with m=1", results[0].AdjustedP)
		}
	})

	t.Run("empty family is a no-op", func(t *testing.T) {
		var results []analysis.SignificanceResult
		NewBHCorrector(0.05).Apply(results)
	})
}
