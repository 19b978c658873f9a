package export

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"ordstat/domain/analysis"
)

// Workbook sheet names, one per exported table.
const (
	sheetScores       = "Consistency"
	sheetSignificance = "Significance"
	sheetBootstrap    = "Bootstrap"
	sheetDomains      = "Domains"
)

// ExportWorkbook writes all four tables into one Excel workbook for manual
// review alongside the machine-readable JSON/CSV exports.
func (e *Exporter) ExportWorkbook(name string, tables analysis.ResultTables) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetScores); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	for _, sheet := range []string{sheetSignificance, sheetBootstrap, sheetDomains} {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}

	if err := writeRows(f, sheetScores, scoreRows(tables.Scores)); err != nil {
		return err
	}
	if err := writeRows(f, sheetSignificance, significanceRows(tables.Significance)); err != nil {
		return err
	}
	if err := writeRows(f, sheetBootstrap, bootstrapRows(tables.Bootstrap)); err != nil {
		return err
	}
	if err := writeRows(f, sheetDomains, domainRows(tables.Domains)); err != nil {
		return err
	}

	path := filepath.Join(e.dir, name)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("cell coordinates (%d, %d): %w", j+1, i+1, err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func scoreRows(scores []analysis.ConsistencyScore) [][]any {
	rows := [][]any{{"repository_id", "score", "entropy_bits", "observations", "distinct_directed_keys", "defined"}}
	for _, s := range scores {
		rows = append(rows, []any{s.RepositoryID.String(), s.Score, s.EntropyBits, s.Observations, s.DistinctKeys, s.Defined})
	}
	return rows
}

func significanceRows(results []analysis.SignificanceResult) [][]any {
	rows := [][]any{{"capability_a", "capability_b", "forward", "reverse", "sample_size",
		"p_value", "adjusted_p", "effect_size", "tier", "significant", "insufficient_sample"}}
	for _, r := range results {
		rows = append(rows, []any{r.CapabilityA, r.CapabilityB, r.Forward, r.Reverse, r.SampleSize,
			r.PValue, r.AdjustedP, r.EffectSize, string(r.Tier), r.Significant, r.InsufficientSample})
	}
	return rows
}

func bootstrapRows(intervals []analysis.BootstrapInterval) [][]any {
	rows := [][]any{{"capability_a", "capability_b", "point_estimate", "lower", "upper",
		"confidence", "resamples", "repositories"}}
	for _, b := range intervals {
		rows = append(rows, []any{b.CapabilityA, b.CapabilityB, b.PointEstimate, b.Lower, b.Upper,
			b.Confidence, b.Resamples, b.Repositories})
	}
	return rows
}

func domainRows(c analysis.DomainComparison) [][]any {
	rows := [][]any{
		{"tested", c.Tested},
		{"f_statistic", c.FStatistic},
		{"p_value", c.PValue},
		{"between_df", c.BetweenDF},
		{"within_df", c.WithinDF},
		{"unclassified_repositories", c.Unclassified},
		{},
		{"domain", "repositories", "mean_score", "variance", "status"},
	}
	for _, d := range c.Domains {
		rows = append(rows, []any{d.Domain, d.Repositories, d.MeanScore, d.Variance, "tested"})
	}
	for _, d := range c.Insufficient {
		rows = append(rows, []any{d.Domain, d.Repositories, d.MeanScore, d.Variance, "insufficient"})
	}
	return rows
}
