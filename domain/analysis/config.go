package analysis

import (
	"fmt"

	"ordstat/domain/core"
)

// Config is the per-run analysis configuration. All knobs have defaults except
// the bootstrap seed, which must be set explicitly: reproducibility is part of
// the output contract and a silent default would hide nondeterminism.
type Config struct {
	// MinSampleSize is the minimum total observation count for a pair to be
	// significance-tested. Pairs below it are reported as insufficient sample.
	MinSampleSize int `json:"min_sample_size"`

	// BootstrapResamples is the number of repository-level resampling draws.
	BootstrapResamples int `json:"bootstrap_resamples"`

	// ConfidenceLevel is the bootstrap interval coverage, e.g. 0.95.
	ConfidenceLevel float64 `json:"confidence_level"`

	// FDRLevel is the Benjamini-Hochberg control level q.
	FDRLevel float64 `json:"fdr_level"`

	// Seed drives every bootstrap stream for the run.
	Seed int64 `json:"seed"`

	// Workers bounds per-repository aggregation concurrency. Zero means one
	// worker per CPU.
	Workers int `json:"workers"`

	seedSet bool
}

// Default configuration values.
const (
	DefaultMinSampleSize      = 10
	DefaultBootstrapResamples = 1000
	DefaultConfidenceLevel    = 0.95
	DefaultFDRLevel           = 0.05
)

// NewConfig returns the default configuration with an explicit seed.
func NewConfig(seed int64) Config {
	return Config{
		MinSampleSize:      DefaultMinSampleSize,
		BootstrapResamples: DefaultBootstrapResamples,
		ConfidenceLevel:    DefaultConfidenceLevel,
		FDRLevel:           DefaultFDRLevel,
		Seed:               seed,
		seedSet:            true,
	}
}

// Validate checks the configuration at startup. A violation fails the whole
// run: it indicates a misconfigured analysis, not a data issue.
func (c Config) Validate() error {
	if !c.seedSet {
		return core.ErrSeedRequired
	}
	if c.MinSampleSize < 2 {
		return core.NewConfigError("min_sample_size", fmt.Sprintf("must be >= 2, got %d", c.MinSampleSize))
	}
	if c.BootstrapResamples <= 0 {
		return core.NewConfigError("bootstrap_resamples", fmt.Sprintf("must be positive, got %d", c.BootstrapResamples))
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return core.NewConfigError("confidence_level", fmt.Sprintf("must be in (0, 1), got %g", c.ConfidenceLevel))
	}
	if c.FDRLevel <= 0 || c.FDRLevel > 1 {
		return core.NewConfigError("fdr_level", fmt.Sprintf("must be in (0, 1], got %g", c.FDRLevel))
	}
	if c.Workers < 0 {
		return core.NewConfigError("workers", fmt.Sprintf("must be non-negative, got %d", c.Workers))
	}
	return nil
}

// Echo returns a deterministic one-line rendering of the configuration, used
// in run fingerprints and manifests.
func (c Config) Echo() string {
	return fmt.Sprintf("min_sample=%d|resamples=%d|confidence=%g|fdr_q=%g|seed=%d",
		c.MinSampleSize, c.BootstrapResamples, c.ConfidenceLevel, c.FDRLevel, c.Seed)
}
