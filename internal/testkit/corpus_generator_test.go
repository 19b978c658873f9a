package testkit

import (
	"reflect"
	"testing"
)

func TestCorpusGeneratorDeterminism(t *testing.T) {
	cfg := DefaultCorpusConfig()
	first := NewCorpusGenerator(cfg).GenerateRecords()
	second := NewCorpusGenerator(cfg).GenerateRecords()

	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical config must generate identical corpora")
	}
	if len(first) != cfg.RepositoryCount*cfg.RecordsPerRepo {
		t.Fatalf("record count = %d, want %d", len(first), cfg.RepositoryCount*cfg.RecordsPerRepo)
	}
}

func TestCorpusGeneratorValidity(t *testing.T) {
	gen := NewCorpusGenerator(DefaultCorpusConfig())
	for _, r := range gen.GenerateRecords() {
		if err := r.Validate(); err != nil {
			t.Fatalf("generated record invalid: %v (%+v)", err, r)
		}
	}
}

func TestCorpusGeneratorDomains(t *testing.T) {
	cfg := DefaultCorpusConfig()
	domains := NewCorpusGenerator(cfg).GenerateDomains()

	if len(domains) != cfg.RepositoryCount {
		t.Fatalf("domain mapping size = %d, want %d", len(domains), cfg.RepositoryCount)
	}
	seen := make(map[string]int)
	for _, label := range domains {
		seen[label]++
	}
	if len(seen) != len(cfg.Domains) {
		t.Fatalf("labels used = %d, want all %d configured domains", len(seen), len(cfg.Domains))
	}
}
