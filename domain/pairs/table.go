package pairs

import (
	"sort"

	"ordstat/domain/core"
)

// PairKey is a directed ordering observation: First appeared before Second in
// some annotation list. (A,B) and (B,A) are distinct keys and are never merged.
type PairKey struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// Reversed returns the opposite direction of the same unordered pair.
func (k PairKey) Reversed() PairKey {
	return PairKey{First: k.Second, Second: k.First}
}

// Unordered returns the canonical unordered identity of the pair.
func (k PairKey) Unordered() UnorderedKey {
	return NewUnorderedKey(k.First, k.Second)
}

// UnorderedKey identifies a capability pair independent of direction.
// INVARIANT: A < B lexicographically.
type UnorderedKey struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NewUnorderedKey canonicalizes two capability names into an UnorderedKey.
func NewUnorderedKey(x, y string) UnorderedKey {
	if x <= y {
		return UnorderedKey{A: x, B: y}
	}
	return UnorderedKey{A: y, B: x}
}

// Forward returns the directed key for "A before B".
func (u UnorderedKey) Forward() PairKey {
	return PairKey{First: u.A, Second: u.B}
}

// DirectionCounts holds both directed counts of one unordered pair. Forward is
// the count of the canonical direction (UnorderedKey.A before UnorderedKey.B).
type DirectionCounts struct {
	Forward int `json:"forward"`
	Reverse int `json:"reverse"`
}

// Total returns the combined observation count.
func (d DirectionCounts) Total() int {
	return d.Forward + d.Reverse
}

// Table accumulates directed pair counts. A zero count is represented by key
// absence, never by an explicit zero entry; only observed keys carry
// probability mass in downstream entropy computations.
type Table struct {
	counts map[PairKey]int
	total  int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{counts: make(map[PairKey]int)}
}

// Add increments a directed key by n. Non-positive n and self-pairs are
// ignored; A != B is a table invariant.
func (t *Table) Add(k PairKey, n int) {
	if n <= 0 || k.First == k.Second {
		return
	}
	t.counts[k] += n
	t.total += n
}

// Merge sums another table into this one. Merging is associative and
// commutative over the key space, so parallel fan-in may combine
// per-repository tables in any order.
func (t *Table) Merge(other *Table) {
	if other == nil {
		return
	}
	for k, n := range other.counts {
		t.counts[k] += n
		t.total += n
	}
}

// Count returns the observed count for a directed key (zero when unobserved).
func (t *Table) Count(k PairKey) int {
	return t.counts[k]
}

// Total returns the sum of all directed counts.
func (t *Table) Total() int {
	return t.total
}

// DistinctKeys returns the number of observed directed keys.
func (t *Table) DistinctKeys() int {
	return len(t.counts)
}

// Counts returns the observed directed keys and counts in deterministic order.
func (t *Table) Counts() []DirectedCount {
	out := make([]DirectedCount, 0, len(t.counts))
	for k, n := range t.counts {
		out = append(out, DirectedCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.First != out[j].Key.First {
			return out[i].Key.First < out[j].Key.First
		}
		return out[i].Key.Second < out[j].Key.Second
	})
	return out
}

// DirectedCount is one observed directed key with its count.
type DirectedCount struct {
	Key   PairKey `json:"key"`
	Count int     `json:"count"`
}

// Directions returns both directed counts of an unordered pair.
func (t *Table) Directions(u UnorderedKey) DirectionCounts {
	fwd := u.Forward()
	return DirectionCounts{
		Forward: t.counts[fwd],
		Reverse: t.counts[fwd.Reversed()],
	}
}

// UnorderedKeys returns every unordered pair with at least one observation, in
// deterministic order.
func (t *Table) UnorderedKeys() []UnorderedKey {
	seen := make(map[UnorderedKey]struct{}, len(t.counts))
	for k := range t.counts {
		seen[k.Unordered()] = struct{}{}
	}
	out := make([]UnorderedKey, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// RepositoryTables holds one repository's independent aggregation views.
type RepositoryTables struct {
	RepositoryID core.RepositoryID

	// Adjacency feeds ordering, consistency, and significance analysis.
	Adjacency *Table
	// Combination feeds raw co-occurrence frequency reporting only.
	Combination *Table

	// SingleAnnotation tallies records with exactly one capability name;
	// they contribute to no pair view.
	SingleAnnotation int
	RecordCount      int
}

// NewRepositoryTables creates empty per-repository tables.
func NewRepositoryTables(repo core.RepositoryID) *RepositoryTables {
	return &RepositoryTables{
		RepositoryID: repo,
		Adjacency:    NewTable(),
		Combination:  NewTable(),
	}
}
