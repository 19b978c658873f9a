package pairs

import (
	"sort"

	"ordstat/domain/core"
	"ordstat/domain/record"
)

// AdjacentPairs emits the k-1 directed pairs formed by consecutive capability
// names. This is the view used for ordering analysis: it captures the author's
// literal local transitions without inflating counts for long lists.
func AdjacentPairs(capabilities []string) []PairKey {
	if len(capabilities) < 2 {
		return nil
	}
	out := make([]PairKey, 0, len(capabilities)-1)
	for i := 0; i+1 < len(capabilities); i++ {
		if capabilities[i] == capabilities[i+1] {
			continue
		}
		out = append(out, PairKey{First: capabilities[i], Second: capabilities[i+1]})
	}
	return out
}

// CombinationPairs emits all k*(k-1)/2 pairs, direction taken from relative
// position within the list. Used only for raw co-occurrence frequency
// reporting, never for consistency scoring.
func CombinationPairs(capabilities []string) []PairKey {
	if len(capabilities) < 2 {
		return nil
	}
	out := make([]PairKey, 0, len(capabilities)*(len(capabilities)-1)/2)
	for i := 0; i < len(capabilities); i++ {
		for j := i + 1; j < len(capabilities); j++ {
			if capabilities[i] == capabilities[j] {
				continue
			}
			out = append(out, PairKey{First: capabilities[i], Second: capabilities[j]})
		}
	}
	return out
}

// AggregateRecords builds one repository's tables from its records. Records
// are assumed validated; every record here must belong to the same repository.
func AggregateRecords(repo core.RepositoryID, records []record.AnnotationRecord) *RepositoryTables {
	rt := NewRepositoryTables(repo)
	for _, rec := range records {
		rt.RecordCount++
		if len(rec.Capabilities) == 1 {
			rt.SingleAnnotation++
			continue
		}
		for _, k := range AdjacentPairs(rec.Capabilities) {
			rt.Adjacency.Add(k, 1)
		}
		for _, k := range CombinationPairs(rec.Capabilities) {
			rt.Combination.Add(k, 1)
		}
	}
	return rt
}

// Aggregator accumulates per-repository tables and finalizes them once into an
// immutable Aggregate. Lifecycle: constructed empty, fed repository tables
// (possibly from concurrent workers via external synchronization), finalized
// exactly once. Finalize replaces the notebook-style implicit global state of
// the source methodology with an explicit phase boundary.
type Aggregator struct {
	repositories map[core.RepositoryID]*RepositoryTables
	finalized    bool
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{repositories: make(map[core.RepositoryID]*RepositoryTables)}
}

// MergeRepository folds one repository's tables into the aggregator. Repeated
// merges for the same repository sum matching keys, so partial per-file tables
// may arrive in any order.
func (a *Aggregator) MergeRepository(rt *RepositoryTables) error {
	if a.finalized {
		return core.ErrRunFinalized
	}
	existing, ok := a.repositories[rt.RepositoryID]
	if !ok {
		a.repositories[rt.RepositoryID] = rt
		return nil
	}
	existing.Adjacency.Merge(rt.Adjacency)
	existing.Combination.Merge(rt.Combination)
	existing.SingleAnnotation += rt.SingleAnnotation
	existing.RecordCount += rt.RecordCount
	return nil
}

// Finalize seals the aggregator and produces the immutable global views. The
// returned Aggregate is shared read-only across downstream phases.
func (a *Aggregator) Finalize() (*Aggregate, error) {
	if a.finalized {
		return nil, core.ErrRunFinalized
	}
	a.finalized = true

	agg := &Aggregate{
		GlobalAdjacency:   NewTable(),
		GlobalCombination: NewTable(),
		PerRepository:     a.repositories,
	}
	for _, rt := range a.repositories {
		agg.GlobalAdjacency.Merge(rt.Adjacency)
		agg.GlobalCombination.Merge(rt.Combination)
		agg.SingleAnnotation += rt.SingleAnnotation
		agg.RecordCount += rt.RecordCount
	}
	return agg, nil
}

// Aggregate is the finalized, read-only output of the aggregation phase.
// Nothing mutates it after Finalize, so downstream phases share it without
// locking.
type Aggregate struct {
	GlobalAdjacency   *Table
	GlobalCombination *Table
	PerRepository     map[core.RepositoryID]*RepositoryTables

	SingleAnnotation int
	RecordCount      int
}

// RepositoryIDs returns the aggregated repositories in deterministic order.
func (a *Aggregate) RepositoryIDs() []core.RepositoryID {
	out := make([]core.RepositoryID, 0, len(a.PerRepository))
	for id := range a.PerRepository {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DirectionsByRepository returns, for one unordered pair, each contributing
// repository's directed counts from the adjacency view. This is the input unit
// for repository-level bootstrap resampling.
func (a *Aggregate) DirectionsByRepository(u UnorderedKey) map[core.RepositoryID]DirectionCounts {
	out := make(map[core.RepositoryID]DirectionCounts)
	for id, rt := range a.PerRepository {
		d := rt.Adjacency.Directions(u)
		if d.Total() > 0 {
			out[id] = d
		}
	}
	return out
}
