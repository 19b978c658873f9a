package analysis

import (
	"ordstat/domain/core"
)

// ============================================================================
// RESULT TABLES (the four exported tables plus the corpus summary)
// ============================================================================

// ConsistencyScore is one repository's entropy-based ordering consistency.
// INVARIANTS:
// - Defined implies Score in [0.0, 1.0] and Observations > 0
// - !Defined implies the repository had zero adjacency observations; such rows
//   are excluded from every downstream aggregate (never emitted as NaN)
type ConsistencyScore struct {
	RepositoryID core.RepositoryID `json:"repository_id"`
	Score        float64           `json:"score"`
	EntropyBits  float64           `json:"entropy_bits"`
	Observations int               `json:"observations"`
	DistinctKeys int               `json:"distinct_directed_keys"`
	Defined      bool              `json:"defined"`
}

// ConfidenceTier classifies a significance result after FDR correction.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
	TierNone   ConfidenceTier = "none"
)

// AssignTier applies the tier table to an FDR-adjusted p-value and effect size.
func AssignTier(adjustedP, effectSize float64) ConfidenceTier {
	switch {
	case adjustedP < 0.001 && effectSize > 0.6:
		return TierHigh
	case adjustedP < 0.05 && effectSize > 0.4:
		return TierMedium
	case adjustedP < 0.05 && effectSize > 0.2:
		return TierLow
	default:
		return TierNone
	}
}

// SignificanceResult is the corpus-wide directional test for one unordered
// capability pair. CapabilityA < CapabilityB; Forward counts A-before-B.
// InsufficientSample rows carry no p-values: reporting an untestable pair as
// tested would be misleading.
type SignificanceResult struct {
	CapabilityA string `json:"capability_a"`
	CapabilityB string `json:"capability_b"`

	Forward    int `json:"forward"`
	Reverse    int `json:"reverse"`
	SampleSize int `json:"sample_size"`

	PValue     float64        `json:"p_value"`
	AdjustedP  float64        `json:"adjusted_p"`
	EffectSize float64        `json:"effect_size"`
	Tier       ConfidenceTier `json:"tier"`

	Significant        bool `json:"significant"`
	InsufficientSample bool `json:"insufficient_sample"`
}

// BootstrapInterval is the resampled confidence interval for one pair's
// forward-direction ratio.
type BootstrapInterval struct {
	CapabilityA string `json:"capability_a"`
	CapabilityB string `json:"capability_b"`

	PointEstimate float64 `json:"point_estimate"`
	Lower         float64 `json:"lower"`
	Upper         float64 `json:"upper"`

	Confidence   float64 `json:"confidence"`
	Resamples    int     `json:"resamples"`
	Repositories int     `json:"repositories"`
}

// DomainStat is one domain group's descriptive statistics over defined
// consistency scores.
type DomainStat struct {
	Domain       string  `json:"domain"`
	Repositories int     `json:"repositories"`
	MeanScore    float64 `json:"mean_score"`
	Variance     float64 `json:"variance"`
}

// DomainComparison is the one-way ANOVA of consistency scores across domains.
// Domains with fewer than two scored repositories never enter the test; they
// are listed under Insufficient.
type DomainComparison struct {
	Tested     bool    `json:"tested"`
	FStatistic float64 `json:"f_statistic"`
	PValue     float64 `json:"p_value"`
	BetweenDF  int     `json:"between_df"`
	WithinDF   int     `json:"within_df"`

	Domains      []DomainStat `json:"domains"`
	Insufficient []DomainStat `json:"insufficient"`

	// Unclassified counts repositories absent from the domain mapping; they
	// are retained in all other analyses but excluded here.
	Unclassified int `json:"unclassified"`
}

// ============================================================================
// CORPUS SUMMARY (raw frequency reporting from the combination view)
// ============================================================================

// CooccurrenceCount is a raw unordered co-occurrence frequency.
type CooccurrenceCount struct {
	CapabilityA string `json:"capability_a"`
	CapabilityB string `json:"capability_b"`
	Count       int    `json:"count"`
}

// CapabilityCount is a raw per-capability usage frequency.
type CapabilityCount struct {
	Capability string `json:"capability"`
	Count      int    `json:"count"`
}

// RepositoryRecordCount is one repository's ingestion tally.
type RepositoryRecordCount struct {
	RepositoryID     core.RepositoryID `json:"repository_id"`
	Records          int               `json:"records"`
	SingleAnnotation int               `json:"single_annotation_records"`
}

// CorpusSummary reports corpus-level frequencies. It is descriptive output
// only; nothing here feeds the consistency or significance statistics.
type CorpusSummary struct {
	TotalRecords            int `json:"total_records"`
	TotalRepositories       int `json:"total_repositories"`
	SingleAnnotationRecords int `json:"single_annotation_records"`
	SkippedRecords          int `json:"skipped_records"`

	TopCooccurrences  []CooccurrenceCount     `json:"top_cooccurrences"`
	TopCapabilities   []CapabilityCount       `json:"top_capabilities"`
	RepositoryRecords []RepositoryRecordCount `json:"repository_records"`
}

// ResultTables bundles the exported tables for one run. Each table is keyed so
// it can be serialized independently.
type ResultTables struct {
	Scores       []ConsistencyScore   `json:"consistency_scores"`
	Significance []SignificanceResult `json:"significance_results"`
	Bootstrap    []BootstrapInterval  `json:"bootstrap_intervals"`
	Domains      DomainComparison     `json:"domain_comparison"`
	Summary      CorpusSummary        `json:"summary"`
}
