package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"ordstat/domain/analysis"
	"ordstat/domain/core"
	"ordstat/ports"
)

// ResultsRepository persists analysis result tables to Postgres, implementing
// ports.ResultSink. Rows are keyed by run id so multiple runs coexist.
type ResultsRepository struct {
	db *sqlx.DB
}

var _ ports.ResultSink = (*ResultsRepository)(nil)

// NewResultsRepository creates a results repository.
func NewResultsRepository(db *sqlx.DB) *ResultsRepository {
	return &ResultsRepository{db: db}
}

// Connect opens a Postgres connection for the repository.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the result tables if they do not exist. double
// precision preserves float64 exactly, keeping the lossless round-trip
// guarantee of the output contract.
func (r *ResultsRepository) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS consistency_scores (
		run_id TEXT NOT NULL,
		repository_id TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		entropy_bits DOUBLE PRECISION NOT NULL,
		observations INTEGER NOT NULL,
		distinct_directed_keys INTEGER NOT NULL,
		defined BOOLEAN NOT NULL,
		PRIMARY KEY (run_id, repository_id)
	);
	CREATE TABLE IF NOT EXISTS significance_results (
		run_id TEXT NOT NULL,
		capability_a TEXT NOT NULL,
		capability_b TEXT NOT NULL,
		forward_count INTEGER NOT NULL,
		reverse_count INTEGER NOT NULL,
		sample_size INTEGER NOT NULL,
		p_value DOUBLE PRECISION NOT NULL,
		adjusted_p DOUBLE PRECISION NOT NULL,
		effect_size DOUBLE PRECISION NOT NULL,
		tier TEXT NOT NULL,
		significant BOOLEAN NOT NULL,
		insufficient_sample BOOLEAN NOT NULL,
		PRIMARY KEY (run_id, capability_a, capability_b)
	);
	CREATE TABLE IF NOT EXISTS bootstrap_intervals (
		run_id TEXT NOT NULL,
		capability_a TEXT NOT NULL,
		capability_b TEXT NOT NULL,
		point_estimate DOUBLE PRECISION NOT NULL,
		lower_bound DOUBLE PRECISION NOT NULL,
		upper_bound DOUBLE PRECISION NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		resamples INTEGER NOT NULL,
		repositories INTEGER NOT NULL,
		PRIMARY KEY (run_id, capability_a, capability_b)
	);
	CREATE TABLE IF NOT EXISTS domain_comparisons (
		run_id TEXT NOT NULL,
		domain TEXT NOT NULL,
		repositories INTEGER NOT NULL,
		mean_score DOUBLE PRECISION NOT NULL,
		variance DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL,
		f_statistic DOUBLE PRECISION NOT NULL,
		p_value DOUBLE PRECISION NOT NULL,
		tested BOOLEAN NOT NULL,
		PRIMARY KEY (run_id, domain)
	);`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure results schema: %w", err)
	}
	return nil
}

// SaveTables writes all four tables in one transaction.
func (r *ResultsRepository) SaveTables(ctx context.Context, runID core.RunID, tables analysis.ResultTables) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin results transaction: %w", err)
	}
	defer tx.Rollback()

	for _, s := range tables.Scores {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO consistency_scores (
				run_id, repository_id, score, entropy_bits,
				observations, distinct_directed_keys, defined
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			runID.String(), s.RepositoryID.String(), s.Score, s.EntropyBits,
			s.Observations, s.DistinctKeys, s.Defined,
		)
		if err != nil {
			return fmt.Errorf("failed to insert consistency score: %w", err)
		}
	}

	for _, sig := range tables.Significance {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO significance_results (
				run_id, capability_a, capability_b, forward_count, reverse_count,
				sample_size, p_value, adjusted_p, effect_size, tier,
				significant, insufficient_sample
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			runID.String(), sig.CapabilityA, sig.CapabilityB, sig.Forward, sig.Reverse,
			sig.SampleSize, sig.PValue, sig.AdjustedP, sig.EffectSize, string(sig.Tier),
			sig.Significant, sig.InsufficientSample,
		)
		if err != nil {
			return fmt.Errorf("failed to insert significance result: %w", err)
		}
	}

	for _, b := range tables.Bootstrap {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bootstrap_intervals (
				run_id, capability_a, capability_b, point_estimate,
				lower_bound, upper_bound, confidence, resamples, repositories
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			runID.String(), b.CapabilityA, b.CapabilityB, b.PointEstimate,
			b.Lower, b.Upper, b.Confidence, b.Resamples, b.Repositories,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bootstrap interval: %w", err)
		}
	}

	if err := insertDomainRows(ctx, tx, runID, tables.Domains); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results transaction: %w", err)
	}
	return nil
}

func insertDomainRows(ctx context.Context, tx *sqlx.Tx, runID core.RunID, c analysis.DomainComparison) error {
	insert := func(d analysis.DomainStat, status string) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO domain_comparisons (
				run_id, domain, repositories, mean_score, variance,
				status, f_statistic, p_value, tested
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			runID.String(), d.Domain, d.Repositories, d.MeanScore, d.Variance,
			status, c.FStatistic, c.PValue, c.Tested,
		)
		if err != nil {
			return fmt.Errorf("failed to insert domain row %s: %w", d.Domain, err)
		}
		return nil
	}

	for _, d := range c.Domains {
		if err := insert(d, "tested"); err != nil {
			return err
		}
	}
	for _, d := range c.Insufficient {
		if err := insert(d, "insufficient"); err != nil {
			return err
		}
	}
	return nil
}
