package pairs

import (
	"errors"
	"reflect"
	"testing"

	"ordstat/domain/core"
	"ordstat/domain/record"
)

func TestAdjacentPairs(t *testing.T) {
	t.Run("emits consecutive pairs only", func(t *testing.T) {
		got := AdjacentPairs([]string{"Debug", "Clone", "PartialEq"})
		want := []PairKey{{"Debug", "Clone"}, {"Clone", "PartialEq"}}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("adjacent pairs = %v, want %v", got, want)
		}
	})

	t.Run("single capability emits nothing", func(t *testing.T) {
		if got := AdjacentPairs([]string{"Debug"}); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})

	t.Run("repeated adjacent names are skipped", func(t *testing.T) {
		got := AdjacentPairs([]string{"Debug", "Debug", "Clone"})
		want := []PairKey{{"Debug", "Clone"}}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("adjacent pairs = %v, want %v", got, want)
		}
	})
}

func TestCombinationPairs(t *testing.T) {
	got := CombinationPairs([]string{"Debug", "Clone", "PartialEq", "Eq"})
	want := []PairKey{
		{"Debug", "Clone"}, {"Debug", "PartialEq"}, {"Debug", "Eq"},
		{"Clone", "PartialEq"}, {"Clone", "Eq"},
		{"PartialEq", "Eq"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("combination pairs = %v, want %v", got, want)
	}
	if len(got) != 4*3/2 {
		t.Fatalf("expected k(k-1)/2 pairs, got %d", len(got))
	}
}

func TestAggregateRecords(t *testing.T) {
	repo := core.RepositoryID("serde")
	records := []record.AnnotationRecord{
		{RepositoryID: repo, Kind: record.KindStruct, Capabilities: []string{"Debug", "Clone", "Copy"}},
		{RepositoryID: repo, Kind: record.KindStruct, Capabilities: []string{"Debug", "Clone"}},
		{RepositoryID: repo, Kind: record.KindEnum, Capabilities: []string{"Serialize"}},
	}

	rt := AggregateRecords(repo, records)

	if rt.RecordCount != 3 {
		t.Fatalf("record count = %d, want 3", rt.RecordCount)
	}
	if rt.SingleAnnotation != 1 {
		t.Fatalf("single-annotation count = %d, want 1", rt.SingleAnnotation)
	}
	if got := rt.Adjacency.Count(PairKey{"Debug", "Clone"}); got != 2 {
		t.Fatalf("adjacency Debug->Clone = %d, want 2", got)
	}
	// (Debug, Copy) is positional, not adjacent.
	if got := rt.Adjacency.Count(PairKey{"Debug", "Copy"}); got != 0 {
		t.Fatalf("adjacency Debug->Copy = %d, want 0", got)
	}
	if got := rt.Combination.Count(PairKey{"Debug", "Copy"}); got != 1 {
		t.Fatalf("combination Debug->Copy = %d, want 1", got)
	}
}

func TestAggregatorLifecycle(t *testing.T) {
	repo := core.RepositoryID("tokio")

	t.Run("repeated merges for one repository sum", func(t *testing.T) {
		agg := NewAggregator()

		first := NewRepositoryTables(repo)
		first.Adjacency.Add(PairKey{"Debug", "Clone"}, 2)
		first.RecordCount = 2

		second := NewRepositoryTables(repo)
		second.Adjacency.Add(PairKey{"Debug", "Clone"}, 3)
		second.SingleAnnotation = 1
		second.RecordCount = 4

		if err := agg.MergeRepository(first); err != nil {
			t.Fatalf("first merge: %v", err)
		}
		if err := agg.MergeRepository(second); err != nil {
			t.Fatalf("second merge: %v", err)
		}

		result, err := agg.Finalize()
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if got := result.GlobalAdjacency.Count(PairKey{"Debug", "Clone"}); got != 5 {
			t.Fatalf("merged count = %d, want 5", got)
		}
		if result.RecordCount != 6 || result.SingleAnnotation != 1 {
			t.Fatalf("tallies = %d records, %d single, want 6 and 1", result.RecordCount, result.SingleAnnotation)
		}
	})

	t.Run("merge after finalize fails", func(t *testing.T) {
		agg := NewAggregator()
		if _, err := agg.Finalize(); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		err := agg.MergeRepository(NewRepositoryTables(repo))
		if !errors.Is(err, core.ErrRunFinalized) {
			t.Fatalf("expected ErrRunFinalized, got %v", err)
		}
	})

	t.Run("finalize is one-shot", func(t *testing.T) {
		agg := NewAggregator()
		if _, err := agg.Finalize(); err != nil {
			t.Fatalf("first finalize: %v", err)
		}
		if _, err := agg.Finalize(); !errors.Is(err, core.ErrRunFinalized) {
			t.Fatalf("expected ErrRunFinalized, got %v", err)
		}
	})
}

func TestDirectionsByRepository(t *testing.T) {
	agg := NewAggregator()

	a := NewRepositoryTables("repo_a")
	a.Adjacency.Add(PairKey{"Clone", "Debug"}, 4)
	b := NewRepositoryTables("repo_b")
	b.Adjacency.Add(PairKey{"Debug", "Clone"}, 2)
	c := NewRepositoryTables("repo_c")
	c.Adjacency.Add(PairKey{"Eq", "Hash"}, 9)

	for _, rt := range []*RepositoryTables{a, b, c} {
		if err := agg.MergeRepository(rt); err != nil {
			t.Fatalf("merge: %v", err)
		}
	}
	result, err := agg.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	byRepo := result.DirectionsByRepository(NewUnorderedKey("Clone", "Debug"))
	if len(byRepo) != 2 {
		t.Fatalf("contributing repositories = %d, want 2", len(byRepo))
	}
	if d := byRepo["repo_a"]; d.Forward != 4 || d.Reverse != 0 {
		t.Fatalf("repo_a directions = %+v", d)
	}
	if d := byRepo["repo_b"]; d.Forward != 0 || d.Reverse != 2 {
		t.Fatalf("repo_b directions = %+v", d)
	}
	if _, ok := byRepo["repo_c"]; ok {
		t.Fatal("repo_c never observed the pair and must not contribute")
	}
}
