package analysis

import (
	"errors"
	"testing"

	"ordstat/domain/core"
)

func TestConfigValidate(t *testing.T) {
	t.Run("defaults with explicit seed pass", func(t *testing.T) {
		if err := NewConfig(42).Validate(); err != nil {
			t.Fatalf("default config invalid: %v", err)
		}
	})

	t.Run("zero value fails on the missing seed", func(t *testing.T) {
		var cfg Config
		if err := cfg.Validate(); !errors.Is(err, core.ErrSeedRequired) {
			t.Fatalf("expected ErrSeedRequired, got %v", err)
		}
	})

	t.Run("seed zero is a valid explicit seed", func(t *testing.T) {
		if err := NewConfig(0).Validate(); err != nil {
			t.Fatalf("explicit zero seed rejected: %v", err)
		}
	})

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"min sample below two", func(c *Config) { c.MinSampleSize = 1 }},
		{"zero resamples", func(c *Config) { c.BootstrapResamples = 0 }},
		{"confidence at one", func(c *Config) { c.ConfidenceLevel = 1.0 }},
		{"confidence at zero", func(c *Config) { c.ConfidenceLevel = 0 }},
		{"fdr level above one", func(c *Config) { c.FDRLevel = 1.5 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig(42)
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a configuration error")
			}
			if !core.IsConfigError(err) {
				t.Fatalf("expected a config error, got %v", err)
			}
		})
	}
}

func TestConfigEchoDeterministic(t *testing.T) {
	a, b := NewConfig(42), NewConfig(42)
	if a.Echo() != b.Echo() {
		t.Fatalf("identical configs echo differently: %q vs %q", a.Echo(), b.Echo())
	}
	c := NewConfig(43)
	if a.Echo() == c.Echo() {
		t.Fatal("seed change must alter the echo")
	}
}
