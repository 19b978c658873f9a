package stats

import (
	"math"

	"ordstat/domain/analysis"
	"ordstat/domain/core"
	"ordstat/domain/pairs"
)

// ConsistencyScorer computes the entropy-based ordering consistency score for
// one repository's adjacency table.
type ConsistencyScorer struct{}

// NewConsistencyScorer creates a consistency scorer.
func NewConsistencyScorer() *ConsistencyScorer {
	return &ConsistencyScorer{}
}

// Score computes 1 - H/H_max over the observed directed keys.
// Degenerate cases, resolved explicitly so no NaN reaches downstream:
// - total = 0: score undefined (Defined=false), excluded from aggregates
// - a single observed key (which total = 1 implies): H_max is defined as 0,
//   normalized entropy as 0, score = 1
func (s *ConsistencyScorer) Score(repo core.RepositoryID, adjacency *pairs.Table) analysis.ConsistencyScore {
	total := adjacency.Total()
	if total == 0 {
		return analysis.ConsistencyScore{RepositoryID: repo, Defined: false}
	}

	distinct := adjacency.DistinctKeys()
	entropy := 0.0
	for _, dc := range adjacency.Counts() {
		p := float64(dc.Count) / float64(total)
		entropy -= p * math.Log2(p)
	}

	score := 1.0
	if distinct > 1 {
		normalized := entropy / math.Log2(float64(distinct))
		score = 1.0 - normalized
	}
	// Guard against float drift at the boundaries.
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return analysis.ConsistencyScore{
		RepositoryID: repo,
		Score:        score,
		EntropyBits:  entropy,
		Observations: total,
		DistinctKeys: distinct,
		Defined:      true,
	}
}
