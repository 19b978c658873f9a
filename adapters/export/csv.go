package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"ordstat/domain/analysis"
)

// ExportCSV writes the three row-shaped tables as CSV files. Floats use the
// shortest representation that round-trips float64 exactly.
func (e *Exporter) ExportCSV(tables analysis.ResultTables) error {
	if err := e.writeCSV("consistency_scores.csv",
		[]string{"repository_id", "score", "entropy_bits", "observations", "distinct_directed_keys", "defined"},
		func(w *csv.Writer) error {
			for _, s := range tables.Scores {
				row := []string{
					s.RepositoryID.String(),
					formatFloat(s.Score),
					formatFloat(s.EntropyBits),
					strconv.Itoa(s.Observations),
					strconv.Itoa(s.DistinctKeys),
					strconv.FormatBool(s.Defined),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
		return err
	}

	if err := e.writeCSV("significance_results.csv",
		[]string{"capability_a", "capability_b", "forward", "reverse", "sample_size",
			"p_value", "adjusted_p", "effect_size", "tier", "significant", "insufficient_sample"},
		func(w *csv.Writer) error {
			for _, r := range tables.Significance {
				row := []string{
					r.CapabilityA, r.CapabilityB,
					strconv.Itoa(r.Forward), strconv.Itoa(r.Reverse), strconv.Itoa(r.SampleSize),
					formatFloat(r.PValue), formatFloat(r.AdjustedP), formatFloat(r.EffectSize),
					string(r.Tier),
					strconv.FormatBool(r.Significant), strconv.FormatBool(r.InsufficientSample),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
		return err
	}

	return e.writeCSV("bootstrap_intervals.csv",
		[]string{"capability_a", "capability_b", "point_estimate", "lower", "upper",
			"confidence", "resamples", "repositories"},
		func(w *csv.Writer) error {
			for _, b := range tables.Bootstrap {
				row := []string{
					b.CapabilityA, b.CapabilityB,
					formatFloat(b.PointEstimate), formatFloat(b.Lower), formatFloat(b.Upper),
					formatFloat(b.Confidence),
					strconv.Itoa(b.Resamples), strconv.Itoa(b.Repositories),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
			return nil
		})
}

func (e *Exporter) writeCSV(name string, header []string, writeRows func(*csv.Writer) error) error {
	path := filepath.Join(e.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header for %s: %w", path, err)
	}
	if err := writeRows(w); err != nil {
		return fmt.Errorf("write rows for %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
