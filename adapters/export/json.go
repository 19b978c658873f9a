package export

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"ordstat/app"
)

// Exporter writes a run's result tables to an output directory. Each table is
// serialized independently; JSON float encoding preserves exact float64
// round-trips, which the output contract requires.
type Exporter struct {
	dir string
}

// NewExporter creates an exporter rooted at dir (created if missing).
func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Exporter{dir: dir}, nil
}

// ExportJSON writes one JSON file per table plus the manifest, summary, and
// diagnostics.
func (e *Exporter) ExportJSON(result *app.RunResult) error {
	files := map[string]any{
		"consistency_scores.json":   result.Tables.Scores,
		"significance_results.json": result.Tables.Significance,
		"bootstrap_intervals.json":  result.Tables.Bootstrap,
		"domain_comparison.json":    result.Tables.Domains,
		"summary.json":              result.Tables.Summary,
		"manifest.json":             result.Manifest,
		"diagnostics.json":          result.Diagnostics,
	}
	for name, payload := range files {
		if err := e.writeJSON(name, payload); err != nil {
			return err
		}
	}
	log.Printf("[Exporter] wrote %d JSON files to %s", len(files), e.dir)
	return nil
}

func (e *Exporter) writeJSON(name string, payload any) error {
	path := filepath.Join(e.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
