package testkit

import (
	"fmt"
	"math/rand"

	"ordstat/domain/core"
	"ordstat/domain/record"
)

// CorpusGeneratorConfig configures the synthetic annotation corpus generator.
type CorpusGeneratorConfig struct {
	RepositoryCount int      `json:"repository_count"`
	RecordsPerRepo  int      `json:"records_per_repo"`
	Capabilities    []string `json:"capabilities"`
	DisorderRate    float64  `json:"disorder_rate"`
	SingleRate      float64  `json:"single_rate"`
	Domains         []string `json:"domains"`
	Seed            int64    `json:"seed"`
}

// DefaultCorpusConfig returns a small, fully deterministic corpus: repositories
// mostly follow one canonical ordering with a configurable disorder rate.
func DefaultCorpusConfig() CorpusGeneratorConfig {
	return CorpusGeneratorConfig{
		RepositoryCount: 12,
		RecordsPerRepo:  40,
		Capabilities:    []string{"Debug", "Clone", "Copy", "PartialEq", "Eq", "Hash", "Serialize", "Deserialize"},
		DisorderRate:    0.15,
		SingleRate:      0.1,
		Domains:         []string{"web", "systems", "data"},
		Seed:            42,
	}
}

// CorpusGenerator produces synthetic annotation records with a known planted
// ordering convention, used by service-level tests and the dev command.
type CorpusGenerator struct {
	config CorpusGeneratorConfig
	rng    *rand.Rand
}

// NewCorpusGenerator creates a generator seeded from the config.
func NewCorpusGenerator(config CorpusGeneratorConfig) *CorpusGenerator {
	return &CorpusGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRecords produces the full corpus. The canonical capability order is
// the configured slice order; a record is disordered by swapping one adjacent
// pair, which perturbs the adjacency view without changing co-occurrence.
func (g *CorpusGenerator) GenerateRecords() []record.AnnotationRecord {
	var records []record.AnnotationRecord
	for i := 0; i < g.config.RepositoryCount; i++ {
		repoID := core.RepositoryID(fmt.Sprintf("repo_%03d", i+1))
		for j := 0; j < g.config.RecordsPerRepo; j++ {
			records = append(records, g.generateRecord(repoID, j))
		}
	}
	return records
}

// GenerateDomains assigns repositories round-robin across the configured
// domain labels.
func (g *CorpusGenerator) GenerateDomains() map[core.RepositoryID]string {
	out := make(map[core.RepositoryID]string, g.config.RepositoryCount)
	if len(g.config.Domains) == 0 {
		return out
	}
	for i := 0; i < g.config.RepositoryCount; i++ {
		repoID := core.RepositoryID(fmt.Sprintf("repo_%03d", i+1))
		out[repoID] = g.config.Domains[i%len(g.config.Domains)]
	}
	return out
}

func (g *CorpusGenerator) generateRecord(repoID core.RepositoryID, ordinal int) record.AnnotationRecord {
	kind := record.KindStruct
	if g.rng.Float64() < 0.3 {
		kind = record.KindEnum
	}

	caps := g.sampleCapabilities()
	if g.rng.Float64() < g.config.DisorderRate && len(caps) > 1 {
		i := g.rng.Intn(len(caps) - 1)
		caps[i], caps[i+1] = caps[i+1], caps[i]
	}

	return record.AnnotationRecord{
		RepositoryID: repoID,
		FilePath:     fmt.Sprintf("src/file_%02d.rs", ordinal%8),
		Kind:         kind,
		Capabilities: caps,
		Line:         10 + ordinal*7,
	}
}

// sampleCapabilities draws a contiguous run of the canonical order, preserving
// the planted convention. A configurable fraction of records carry a single
// capability and therefore contribute no pairs.
func (g *CorpusGenerator) sampleCapabilities() []string {
	canonical := g.config.Capabilities
	if g.rng.Float64() < g.config.SingleRate {
		return []string{canonical[g.rng.Intn(len(canonical))]}
	}
	length := 2 + g.rng.Intn(len(canonical)-1)
	start := g.rng.Intn(len(canonical) - length + 1)
	return append([]string(nil), canonical[start:start+length]...)
}
