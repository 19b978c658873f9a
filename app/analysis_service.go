package app

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"ordstat/adapters/stats"
	"ordstat/domain/analysis"
	"ordstat/domain/core"
	"ordstat/domain/pairs"
	"ordstat/domain/record"
	"ordstat/ports"
)

// summaryTopN bounds the frequency lists in the corpus summary.
const summaryTopN = 20

// AnalysisService runs the full ordering-consistency analysis over one batch
// of pre-extracted records. Phases execute in strict order with a hard
// synchronization point after aggregation: the merged tables are immutable
// before any significance, bootstrap, or domain work begins.
type AnalysisService struct {
	cfg        analysis.Config
	rngPort    ports.RNGPort
	scorer     *stats.ConsistencyScorer
	tester     *stats.SignificanceTester
	corrector  *stats.BHCorrector
	bootstrap  *stats.BootstrapEstimator
	comparator *stats.DomainComparator

	// aggregateRepo builds one repository's pair tables; indirected so the
	// repository-failure path stays testable.
	aggregateRepo func(core.RepositoryID, []record.AnnotationRecord) *pairs.RepositoryTables
}

// NewAnalysisService validates the configuration and wires the engines.
// Configuration errors fail here, before any data is touched.
func NewAnalysisService(cfg analysis.Config, rngPort ports.RNGPort) (*AnalysisService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &AnalysisService{
		cfg:           cfg,
		rngPort:       rngPort,
		scorer:        stats.NewConsistencyScorer(),
		tester:        stats.NewSignificanceTester(cfg.MinSampleSize),
		corrector:     stats.NewBHCorrector(cfg.FDRLevel),
		bootstrap:     stats.NewBootstrapEstimator(cfg.BootstrapResamples, cfg.ConfidenceLevel, rngPort),
		comparator:    stats.NewDomainComparator(),
		aggregateRepo: pairs.AggregateRecords,
	}, nil
}

// RunRequest carries one batch of records plus the external domain mapping.
type RunRequest struct {
	Records []record.AnnotationRecord
	Domains map[core.RepositoryID]string
	RunID   core.RunID // optional, generated if empty
}

// RunResult is the complete output of one analysis run.
type RunResult struct {
	RunID       core.RunID            `json:"run_id"`
	Tables      analysis.ResultTables `json:"tables"`
	Diagnostics []record.Diagnostic   `json:"diagnostics"`
	Manifest    RunManifest           `json:"manifest"`
}

// RunManifest captures the determinism metadata for a run: identical inputs,
// configuration, and seed reproduce the identical fingerprint.
type RunManifest struct {
	RunID      core.RunID `json:"run_id"`
	Seed       int64      `json:"seed"`
	ConfigEcho string     `json:"config"`

	RecordCount        int `json:"record_count"`
	SkippedRecords     int `json:"skipped_records"`
	RepositoryCount    int `json:"repository_count"`
	ScoredRepositories int `json:"scored_repositories"`
	TestedPairs        int `json:"tested_pairs"`
	InsufficientPairs  int `json:"insufficient_pairs"`

	RuntimeMs       int64            `json:"runtime_ms"`
	PhaseRuntimesMs map[string]int64 `json:"phase_runtimes_ms"`
	Fingerprint     core.Hash        `json:"fingerprint"`
	CreatedAt       core.Timestamp   `json:"created_at"`
}

// Run executes the batch. Per-record and per-repository defects are skipped
// with diagnostics; only configuration errors (caught at construction) and a
// total absence of usable input are fatal.
func (s *AnalysisService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	startedAt := time.Now()

	runID := req.RunID
	if runID == "" {
		runID = core.RunID(core.NewID())
	}

	// Phase 1: ingestion. Malformed entries become diagnostics, never failures.
	byRepo, capCounts, diagnostics := partitionRecords(req.Records)
	if len(byRepo) == 0 {
		return nil, core.ErrNoUsableInput
	}
	log.Printf("[AnalysisService] run %s: %d records across %d repositories (%d skipped)",
		runID, len(req.Records)-len(diagnostics), len(byRepo), len(diagnostics))

	phases := make(map[string]int64)
	phaseStart := time.Now()
	markPhase := func(name string) {
		phases[name] = time.Since(phaseStart).Milliseconds()
		phaseStart = time.Now()
	}

	// Phase 2: per-repository aggregation and scoring, fanned out across
	// workers. Each worker owns its accumulator; the associative table merge
	// makes fan-in order irrelevant. A failed repository becomes a diagnostic
	// alongside the per-record ones.
	aggregate, scores, repoDiagnostics, err := s.aggregateAndScore(ctx, byRepo)
	if err != nil {
		return nil, err
	}
	diagnostics = append(diagnostics, repoDiagnostics...)
	markPhase("aggregate")

	// Phase boundary: aggregate is sealed. Everything after reads it only.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 3: significance testing with FDR correction.
	significance := s.tester.TestAll(aggregate.GlobalAdjacency)
	s.corrector.Apply(significance)
	markPhase("significance")

	tested, insufficient := 0, 0
	for _, r := range significance {
		if r.InsufficientSample {
			insufficient++
		} else {
			tested++
		}
	}
	log.Printf("[AnalysisService] run %s: %d pairs tested, %d insufficient sample", runID, tested, insufficient)

	// Phase 4: bootstrap intervals for every tested pair.
	intervals, err := s.bootstrapIntervals(ctx, aggregate, significance)
	if err != nil {
		return nil, err
	}
	markPhase("bootstrap")

	// Phase 5: domain comparison.
	comparison := s.comparator.Compare(scores, req.Domains)
	markPhase("domains")

	tables := analysis.ResultTables{
		Scores:       scores,
		Significance: significance,
		Bootstrap:    intervals,
		Domains:      comparison,
		Summary:      buildSummary(aggregate, capCounts, len(diagnostics)),
	}

	scored := 0
	for _, sc := range scores {
		if sc.Defined {
			scored++
		}
	}

	manifest := RunManifest{
		RunID:              runID,
		Seed:               s.cfg.Seed,
		ConfigEcho:         s.cfg.Echo(),
		RecordCount:        aggregate.RecordCount,
		SkippedRecords:     len(diagnostics),
		RepositoryCount:    len(byRepo),
		ScoredRepositories: scored,
		TestedPairs:        tested,
		InsufficientPairs:  insufficient,
		RuntimeMs:          time.Since(startedAt).Milliseconds(),
		PhaseRuntimesMs:    phases,
		CreatedAt:          core.Now(),
	}
	manifest.Fingerprint = core.ComputeRunFingerprint(s.cfg.Seed, s.cfg.Echo(), map[string]int{
		"records":      manifest.RecordCount,
		"repositories": manifest.RepositoryCount,
		"scored":       manifest.ScoredRepositories,
		"tested":       manifest.TestedPairs,
		"insufficient": manifest.InsufficientPairs,
		"skipped":      manifest.SkippedRecords,
	})

	return &RunResult{
		RunID:       runID,
		Tables:      tables,
		Diagnostics: diagnostics,
		Manifest:    manifest,
	}, nil
}

// partitionRecords validates every record and groups the valid ones by
// repository. Capability usage counts are tallied here for the summary.
func partitionRecords(records []record.AnnotationRecord) (
	map[core.RepositoryID][]record.AnnotationRecord,
	map[string]int,
	[]record.Diagnostic,
) {
	byRepo := make(map[core.RepositoryID][]record.AnnotationRecord)
	capCounts := make(map[string]int)
	var diagnostics []record.Diagnostic

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			diagnostics = append(diagnostics, record.NewDiagnostic(rec, err))
			continue
		}
		byRepo[rec.RepositoryID] = append(byRepo[rec.RepositoryID], rec)
		for _, name := range rec.Capabilities {
			capCounts[name]++
		}
	}
	return byRepo, capCounts, diagnostics
}

// aggregateAndScore fans per-repository work across a bounded pool and merges
// the results. A panicking repository is skipped with a recorded diagnostic;
// it must not abort the batch.
func (s *AnalysisService) aggregateAndScore(
	ctx context.Context,
	byRepo map[core.RepositoryID][]record.AnnotationRecord,
) (*pairs.Aggregate, []analysis.ConsistencyScore, []record.Diagnostic, error) {
	workers := s.cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	repoIDs := make([]core.RepositoryID, 0, len(byRepo))
	for id := range byRepo {
		repoIDs = append(repoIDs, id)
	}
	sort.Slice(repoIDs, func(i, j int) bool { return repoIDs[i] < repoIDs[j] })

	sem := semaphore.NewWeighted(int64(workers))
	var mu sync.Mutex
	aggregator := pairs.NewAggregator()
	scores := make([]analysis.ConsistencyScore, 0, len(repoIDs))
	var diagnostics []record.Diagnostic

	for _, repoID := range repoIDs {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, nil, nil, err
		}
		go func(id core.RepositoryID, recs []record.AnnotationRecord) {
			defer sem.Release(1)
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[AnalysisService] repository %s skipped: %v", id, r)
					mu.Lock()
					diagnostics = append(diagnostics, record.Diagnostic{
						RepositoryID: id,
						Reason:       fmt.Sprintf("repository skipped: %v", r),
					})
					mu.Unlock()
				}
			}()

			rt := s.aggregateRepo(id, recs)
			score := s.scorer.Score(id, rt.Adjacency)

			mu.Lock()
			defer mu.Unlock()
			if err := aggregator.MergeRepository(rt); err != nil {
				log.Printf("[AnalysisService] repository %s merge failed: %v", id, err)
				diagnostics = append(diagnostics, record.Diagnostic{
					RepositoryID: id,
					Reason:       fmt.Sprintf("repository skipped: %v", err),
				})
				return
			}
			scores = append(scores, score)
		}(repoID, byRepo[repoID])
	}

	// Drain the pool: acquiring the full weight blocks until every worker is
	// done. This is the hard phase boundary.
	if err := sem.Acquire(ctx, int64(workers)); err != nil {
		return nil, nil, nil, err
	}

	sort.Slice(scores, func(i, j int) bool { return scores[i].RepositoryID < scores[j].RepositoryID })
	sort.Slice(diagnostics, func(i, j int) bool { return diagnostics[i].RepositoryID < diagnostics[j].RepositoryID })

	aggregate, err := aggregator.Finalize()
	if err != nil {
		return nil, nil, nil, err
	}
	return aggregate, scores, diagnostics, nil
}

// bootstrapIntervals estimates intervals for every sufficiently sampled pair.
// Pairs run concurrently; each one draws from its own pre-split stream keyed
// by pair and seed alone, so neither the schedule nor the run identity can
// change any estimate.
func (s *AnalysisService) bootstrapIntervals(
	ctx context.Context,
	aggregate *pairs.Aggregate,
	significance []analysis.SignificanceResult,
) ([]analysis.BootstrapInterval, error) {
	workers := s.cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	sem := semaphore.NewWeighted(int64(workers))
	var mu sync.Mutex
	intervals := make([]analysis.BootstrapInterval, 0, len(significance))

	for _, res := range significance {
		if res.InsufficientSample {
			continue
		}
		u := pairs.NewUnorderedKey(res.CapabilityA, res.CapabilityB)

		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		go func(u pairs.UnorderedKey) {
			defer sem.Release(1)

			byRepo := aggregate.DirectionsByRepository(u)
			interval, err := s.bootstrap.Estimate(ctx, u, byRepo, s.cfg.Seed)
			if err != nil {
				log.Printf("[AnalysisService] bootstrap for pair (%s, %s) skipped: %v", u.A, u.B, err)
				return
			}

			mu.Lock()
			intervals = append(intervals, interval)
			mu.Unlock()
		}(u)
	}

	if err := sem.Acquire(ctx, int64(workers)); err != nil {
		return nil, err
	}

	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].CapabilityA != intervals[j].CapabilityA {
			return intervals[i].CapabilityA < intervals[j].CapabilityA
		}
		return intervals[i].CapabilityB < intervals[j].CapabilityB
	})
	return intervals, nil
}

// buildSummary reports raw frequencies from the combination view and the
// ingestion tallies.
func buildSummary(aggregate *pairs.Aggregate, capCounts map[string]int, skipped int) analysis.CorpusSummary {
	summary := analysis.CorpusSummary{
		TotalRecords:            aggregate.RecordCount,
		TotalRepositories:       len(aggregate.PerRepository),
		SingleAnnotationRecords: aggregate.SingleAnnotation,
		SkippedRecords:          skipped,
	}

	// Co-occurrence merges both directions: direction is an ordering signal,
	// not a co-occurrence one.
	merged := make(map[pairs.UnorderedKey]int)
	for _, dc := range aggregate.GlobalCombination.Counts() {
		merged[dc.Key.Unordered()] += dc.Count
	}
	cooc := make([]analysis.CooccurrenceCount, 0, len(merged))
	for u, n := range merged {
		cooc = append(cooc, analysis.CooccurrenceCount{CapabilityA: u.A, CapabilityB: u.B, Count: n})
	}
	sort.Slice(cooc, func(i, j int) bool {
		if cooc[i].Count != cooc[j].Count {
			return cooc[i].Count > cooc[j].Count
		}
		if cooc[i].CapabilityA != cooc[j].CapabilityA {
			return cooc[i].CapabilityA < cooc[j].CapabilityA
		}
		return cooc[i].CapabilityB < cooc[j].CapabilityB
	})
	if len(cooc) > summaryTopN {
		cooc = cooc[:summaryTopN]
	}
	summary.TopCooccurrences = cooc

	caps := make([]analysis.CapabilityCount, 0, len(capCounts))
	for name, n := range capCounts {
		caps = append(caps, analysis.CapabilityCount{Capability: name, Count: n})
	}
	sort.Slice(caps, func(i, j int) bool {
		if caps[i].Count != caps[j].Count {
			return caps[i].Count > caps[j].Count
		}
		return caps[i].Capability < caps[j].Capability
	})
	if len(caps) > summaryTopN {
		caps = caps[:summaryTopN]
	}
	summary.TopCapabilities = caps

	for _, id := range aggregate.RepositoryIDs() {
		rt := aggregate.PerRepository[id]
		summary.RepositoryRecords = append(summary.RepositoryRecords, analysis.RepositoryRecordCount{
			RepositoryID:     id,
			Records:          rt.RecordCount,
			SingleAnnotation: rt.SingleAnnotation,
		})
	}

	return summary
}

// Describe returns a one-line configuration description for logging.
func (s *AnalysisService) Describe() string {
	return fmt.Sprintf("AnalysisService: %s", s.cfg.Echo())
}
