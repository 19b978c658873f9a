package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ordstat/adapters/export"
	"ordstat/adapters/ingest"
	"ordstat/adapters/postgres"
	"ordstat/adapters/rng"
	"ordstat/app"
	"ordstat/domain/analysis"
	"ordstat/internal/testkit"
	"ordstat/ports"
)

func main() {
	// Optional .env for local development; DATABASE_URL etc.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "ordstat-cli",
		Short: "Ordering-consistency analysis over capability annotation corpora",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var (
		recordsPath string
		domainsPath string
		outDir      string
		seed        int64
		minSample   int
		resamples   int
		confidence  float64
		fdrQ        float64
		workers     int
		xlsx        bool
		toPostgres  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full analysis over one extracted record batch",
		Long: `Run consistency scoring, directional significance testing with FDR
correction, bootstrap interval estimation, and domain comparison over one
batch of pre-extracted annotation records.

The seed is required: identical inputs, configuration, and seed reproduce
bit-identical results.

Example: ordstat-cli analyze --records corpus.json --domains domains.json --out results --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				return fmt.Errorf("--seed is required for reproducible runs")
			}

			cfg := analysis.NewConfig(seed)
			cfg.MinSampleSize = minSample
			cfg.BootstrapResamples = resamples
			cfg.ConfidenceLevel = confidence
			cfg.FDRLevel = fdrQ
			cfg.Workers = workers

			return runAnalyze(cmd.Context(), cfg, recordsPath, domainsPath, outDir, xlsx, toPostgres)
		},
	}

	cmd.Flags().StringVar(&recordsPath, "records", "", "Path to the records file (.json or .csv)")
	cmd.Flags().StringVar(&domainsPath, "domains", "", "Path to the repository-to-domain mapping (JSON object)")
	cmd.Flags().StringVar(&outDir, "out", "results", "Output directory")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for bootstrap resampling (required)")
	cmd.Flags().IntVar(&minSample, "min-sample", analysis.DefaultMinSampleSize, "Minimum pair sample size for significance testing")
	cmd.Flags().IntVar(&resamples, "resamples", analysis.DefaultBootstrapResamples, "Bootstrap resample count")
	cmd.Flags().Float64Var(&confidence, "confidence", analysis.DefaultConfidenceLevel, "Bootstrap interval coverage")
	cmd.Flags().Float64Var(&fdrQ, "fdr-q", analysis.DefaultFDRLevel, "Benjamini-Hochberg control level")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count (0 = one per CPU)")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "Also export an Excel workbook")
	cmd.Flags().BoolVar(&toPostgres, "postgres", false, "Also persist results to Postgres (DATABASE_URL)")
	_ = cmd.MarkFlagRequired("records")

	return cmd
}

func runAnalyze(ctx context.Context, cfg analysis.Config, recordsPath, domainsPath, outDir string, xlsx, toPostgres bool) error {
	source, err := recordSource(recordsPath)
	if err != nil {
		return err
	}
	records, err := source.Records(ctx)
	if err != nil {
		return err
	}

	domains, err := ingest.NewJSONDomainClassifier(domainsPath).Classify(ctx)
	if err != nil {
		return err
	}

	service, err := app.NewAnalysisService(cfg, rng.NewStreamAdapter())
	if err != nil {
		return err
	}
	log.Printf("[CLI] %s", service.Describe())

	result, err := service.Run(ctx, app.RunRequest{Records: records, Domains: domains})
	if err != nil {
		return err
	}

	exporter, err := export.NewExporter(outDir)
	if err != nil {
		return err
	}
	if err := exporter.ExportJSON(result); err != nil {
		return err
	}
	if err := exporter.ExportCSV(result.Tables); err != nil {
		return err
	}
	if xlsx {
		if err := exporter.ExportWorkbook("results.xlsx", result.Tables); err != nil {
			return err
		}
	}

	if toPostgres {
		if err := persistResults(ctx, result); err != nil {
			return err
		}
	}

	fmt.Printf("run %s complete: %d repositories scored, %d pairs tested, fingerprint %s\n",
		result.RunID, result.Manifest.ScoredRepositories, result.Manifest.TestedPairs, result.Manifest.Fingerprint)
	return nil
}

func recordSource(path string) (ports.RecordSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ingest.NewJSONRecordSource(path), nil
	case ".csv":
		return ingest.NewCSVRecordSource(path), nil
	default:
		return nil, fmt.Errorf("unsupported records format %q (want .json or .csv)", filepath.Ext(path))
	}
}

func persistResults(ctx context.Context, result *app.RunResult) error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	db, err := postgres.Connect(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := postgres.NewResultsRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := repo.SaveTables(ctx, result.RunID, result.Tables); err != nil {
		return err
	}
	log.Printf("[CLI] results for run %s persisted to postgres", result.RunID)
	return nil
}

func newGenerateCmd() *cobra.Command {
	var (
		outDir       string
		seed         int64
		repos        int
		recordsEach  int
		disorderRate float64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic annotation corpus for development",
		Long: `Generate a deterministic synthetic corpus with a planted canonical
ordering convention, plus a matching domain mapping. Useful for exercising the
pipeline end to end without a real extraction run.

Example: ordstat-cli generate --out testdata --seed 42 --repos 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultCorpusConfig()
			cfg.Seed = seed
			cfg.RepositoryCount = repos
			cfg.RecordsPerRepo = recordsEach
			cfg.DisorderRate = disorderRate

			gen := testkit.NewCorpusGenerator(cfg)
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			if err := writeJSONFile(filepath.Join(outDir, "records.json"), gen.GenerateRecords()); err != nil {
				return err
			}
			if err := writeJSONFile(filepath.Join(outDir, "domains.json"), gen.GenerateDomains()); err != nil {
				return err
			}
			fmt.Printf("wrote synthetic corpus to %s\n", outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "testdata", "Output directory")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Generator seed")
	cmd.Flags().IntVar(&repos, "repos", 12, "Repository count")
	cmd.Flags().IntVar(&recordsEach, "records-each", 40, "Records per repository")
	cmd.Flags().Float64Var(&disorderRate, "disorder-rate", 0.15, "Fraction of records with one adjacent swap")

	return cmd
}

func writeJSONFile(path string, payload any) error {
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
