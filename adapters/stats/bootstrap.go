package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"ordstat/domain/analysis"
	"ordstat/domain/core"
	"ordstat/domain/pairs"
	"ordstat/ports"
)

// bootstrapStage names the RNG stream family for bootstrap draws.
const bootstrapStage = "bootstrap"

// BootstrapEstimator computes percentile confidence intervals for pair
// direction ratios by repository-level resampling with replacement.
type BootstrapEstimator struct {
	resamples  int
	confidence float64
	rng        ports.RNGPort
}

// NewBootstrapEstimator creates an estimator. The RNG port supplies one
// pre-split stream per pair, so estimates are reproducible in isolation and
// safe to compute concurrently.
func NewBootstrapEstimator(resamples int, confidence float64, rng ports.RNGPort) *BootstrapEstimator {
	return &BootstrapEstimator{resamples: resamples, confidence: confidence, rng: rng}
}

// Estimate resamples the repositories contributing to one unordered pair. Each
// draw picks len(repos) repositories with replacement, re-aggregates the
// directed counts, and records the forward ratio; the interval is the
// percentile band of the sorted draws.
func (e *BootstrapEstimator) Estimate(
	ctx context.Context,
	u pairs.UnorderedKey,
	byRepo map[core.RepositoryID]pairs.DirectionCounts,
	seed int64,
) (analysis.BootstrapInterval, error) {
	interval := analysis.BootstrapInterval{
		CapabilityA:  u.A,
		CapabilityB:  u.B,
		Confidence:   e.confidence,
		Resamples:    e.resamples,
		Repositories: len(byRepo),
	}
	if len(byRepo) == 0 {
		return interval, core.ErrInsufficientSample
	}

	// Deterministic repository order: map iteration must not leak into draws.
	repos := make([]core.RepositoryID, 0, len(byRepo))
	var totalF, totalR int
	for id, d := range byRepo {
		repos = append(repos, id)
		totalF += d.Forward
		totalR += d.Reverse
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i] < repos[j] })
	interval.PointEstimate = float64(totalF) / float64(totalF+totalR)

	pairKey := fmt.Sprintf("%s|%s", u.A, u.B)
	rng, err := e.rng.Stream(ctx, bootstrapStage, pairKey, seed)
	if err != nil {
		return interval, fmt.Errorf("bootstrap stream for pair %s: %w", pairKey, err)
	}

	ratios := make([]float64, e.resamples)
	for b := 0; b < e.resamples; b++ {
		var f, r int
		for i := 0; i < len(repos); i++ {
			d := byRepo[repos[rng.Intn(len(repos))]]
			f += d.Forward
			r += d.Reverse
		}
		// Every contributing repository has at least one observation, so the
		// resampled total is never zero.
		ratios[b] = float64(f) / float64(f+r)
	}

	alpha := 1.0 - e.confidence
	lower, err := stats.Percentile(ratios, 100*alpha/2)
	if err != nil {
		return interval, fmt.Errorf("lower percentile: %w", err)
	}
	upper, err := stats.Percentile(ratios, 100*(1-alpha/2))
	if err != nil {
		return interval, fmt.Errorf("upper percentile: %w", err)
	}

	interval.Lower = lower
	interval.Upper = upper
	return interval, nil
}
