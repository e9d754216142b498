package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reitermarkus/infosec-job-scraper/internal/htmltext"
	"github.com/reitermarkus/infosec-job-scraper/internal/langdetect"
	"github.com/reitermarkus/infosec-job-scraper/internal/postings"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/batch"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/cache"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/config"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/store"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/store/sqlite"
)

var extractCmd = &cobra.Command{
	Use:   "extract <input>",
	Short: "Extract facts from a batch of postings",
	Long: `Extract reads postings, drops the ones whose title is not an
information security role and writes one result per remaining posting,
sorted by document id.

Example:
  jobfacts extract postings.jsonl
  jobfacts extract data/ --format jsonl --output facts.jsonl
  jobfacts extract data/ --workers 8 --db facts.db`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	defaults := config.Default()

	flags := extractCmd.Flags()
	flags.StringP("output", "o", "", "output path (default: stdout)")
	flags.String("format", defaults.Output.Format, "output format (json, jsonl)")
	flags.Int("workers", defaults.Workers, "number of concurrent workers (0: one per CPU)")
	flags.Duration("cache-ttl", defaults.CacheTTL, "lifetime of cached field normalizations (0: no expiry)")
	flags.Int("progress", defaults.Progress, "log progress every n postings (0: off)")
	flags.String("db", defaults.Database, "SQLite database to store results and the run report in")

	_ = viper.BindPFlag("output.path", flags.Lookup("output"))
	_ = viper.BindPFlag("output.format", flags.Lookup("format"))
	_ = viper.BindPFlag("workers", flags.Lookup("workers"))
	_ = viper.BindPFlag("cache_ttl", flags.Lookup("cache-ttl"))
	_ = viper.BindPFlag("progress_every", flags.Lookup("progress"))
	_ = viper.BindPFlag("database", flags.Lookup("db"))
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	if cfg.Output.Path != "" {
		f, err := os.Create(cfg.Output.Path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	report, err := extract(ctx, cfg, args[0], out)
	if err != nil {
		return err
	}

	s := report.Summary
	log.Printf("Run %s: %d postings, %d relevant, %d filtered, %d failed, %d with salary (%v)",
		report.ID, s.Total, s.Processed, s.Filtered, s.Failed, s.WithSalary, report.Duration().Round(time.Millisecond))
	if verbose {
		for _, f := range report.Failures {
			log.Printf("  %s: %s", f.DocumentID, f.Error)
		}
	}
	return nil
}

// extract runs one batch: load, process, write results and, when a
// database is configured, persist them with the run report.
func extract(ctx context.Context, cfg config.Config, input string, out io.Writer) (batch.Report, error) {
	if cfg.Database == "" {
		return extractInto(ctx, cfg, input, out, nil)
	}
	st, err := sqlite.OpenSQLite(ctx, cfg.Database)
	if err != nil {
		return batch.Report{}, fmt.Errorf("open database: %w", err)
	}
	defer st.Close()
	return extractInto(ctx, cfg, input, out, st)
}

// extractInto is extract with the store chosen by the caller; a nil store
// keeps nothing.
func extractInto(ctx context.Context, cfg config.Config, input string, out io.Writer, st store.Store) (batch.Report, error) {
	startedAt := time.Now()

	comp, err := cfg.Loader().Load()
	if err != nil {
		return batch.Report{}, err
	}

	detector := langdetect.New(cfg.Languages...)
	detector.MinConfidence = cfg.LanguageMinConfidence

	extractor, err := comp.Extractor(jobfacts.Options{
		HTML:     htmltext.Converter{},
		Language: detector,
		Cache:    cache.NewMemoryCache(cfg.CacheTTL, 2*cfg.CacheTTL),
	})
	if err != nil {
		return batch.Report{}, err
	}

	loaded, err := postings.Load(input)
	if err != nil {
		return batch.Report{}, fmt.Errorf("load postings: %w", err)
	}

	agg := batch.NewAggregator()
	for _, ie := range loaded.Errors {
		agg.AddInputError(ie.Source, ie.Err)
	}

	runner := batch.NewRunner(extractor, cfg.Workers)
	runner.ProgressEvery = cfg.Progress
	agg.AddAll(runner.Map(ctx, loaded.Documents))

	results := agg.Results()
	if err := writeResults(out, cfg.Output.Format, results); err != nil {
		return batch.Report{}, fmt.Errorf("write results: %w", err)
	}

	report := batch.NewReportBuilder().Build(agg, startedAt, time.Now())
	if st != nil {
		if err := persist(ctx, st, report, results); err != nil {
			return report, err
		}
	}
	return report, ctx.Err()
}

func persist(ctx context.Context, st store.Store, report batch.Report, results []jobfacts.Result) error {
	for _, r := range results {
		if err := st.UpsertResult(ctx, report.ID, r); err != nil {
			return fmt.Errorf("store result %q: %w", r.ID, err)
		}
	}
	if err := st.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}

func writeResults(w io.Writer, format string, results []jobfacts.Result) error {
	switch strings.ToLower(format) {
	case config.FormatJSONL:
		enc := json.NewEncoder(w)
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
}
