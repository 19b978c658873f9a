package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"ordstat/domain/analysis"
	"ordstat/domain/pairs"
)

// SignificanceTester runs the per-pair directional binomial test across the
// corpus-wide adjacency table.
type SignificanceTester struct {
	minSample int
}

// NewSignificanceTester creates a tester with the configured minimum sample
// threshold. Pairs below the threshold are excluded from testing entirely and
// reported as insufficient sample; this covers the n=1 single-occurrence case
// with the same explicit policy.
func NewSignificanceTester(minSample int) *SignificanceTester {
	return &SignificanceTester{minSample: minSample}
}

// TestAll tests every observed unordered pair in the global adjacency table.
// Results come back in deterministic pair order; raw p-values are not yet
// corrected for multiple testing.
func (t *SignificanceTester) TestAll(global *pairs.Table) []analysis.SignificanceResult {
	keys := global.UnorderedKeys()
	out := make([]analysis.SignificanceResult, 0, len(keys))
	for _, u := range keys {
		d := global.Directions(u)
		out = append(out, t.TestPair(u, d))
	}
	return out
}

// TestPair runs the two-sided exact binomial test for one unordered pair
// against a null proportion of 0.5.
func (t *SignificanceTester) TestPair(u pairs.UnorderedKey, d pairs.DirectionCounts) analysis.SignificanceResult {
	n := d.Total()
	res := analysis.SignificanceResult{
		CapabilityA: u.A,
		CapabilityB: u.B,
		Forward:     d.Forward,
		Reverse:     d.Reverse,
		SampleSize:  n,
		Tier:        analysis.TierNone,
	}

	if n < t.minSample {
		res.InsufficientSample = true
		return res
	}

	res.PValue = TwoSidedBinomialPValue(d.Forward, n)
	res.AdjustedP = res.PValue // replaced by the FDR corrector
	res.EffectSize = EffectSize(d.Forward, d.Reverse)
	return res
}

// TwoSidedBinomialPValue is the probability, under Binomial(n, 0.5), of a
// split at least as extreme as the observed one: twice the smaller tail,
// capped at 1. The null is symmetric, so the doubled-tail form is exact.
func TwoSidedBinomialPValue(successes, trials int) float64 {
	if trials <= 0 {
		return 1.0
	}
	k := float64(successes)
	dist := distuv.Binomial{N: float64(trials), P: 0.5}

	lower := dist.CDF(k)
	upper := 1.0
	if successes > 0 {
		upper = 1 - dist.CDF(k-1)
	}

	p := 2 * math.Min(lower, upper)
	if p > 1 {
		p = 1
	}
	return p
}

// EffectSize is the normalized directional imbalance |n_f - n_r| / n. It is
// symmetric under label swap and independent of sample count.
func EffectSize(forward, reverse int) float64 {
	n := forward + reverse
	if n == 0 {
		return 0
	}
	return math.Abs(float64(forward)-float64(reverse)) / float64(n)
}
