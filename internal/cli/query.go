package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/config"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/store"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/store/memstore"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/store/sqlite"
)

var (
	queryDB    string
	queryInput string
	queryField string
	queryLimit int
)

var queryCmd = &cobra.Command{
	Use:   "query <value>",
	Short: "Find stored results by a field value",
	Long: `Query lists stored results whose field contains the given value.

Fields: education_type, employment_type, city, state, certification,
experience.

With --input the postings are extracted into memory and queried without
touching a database.

Example:
  jobfacts query --db facts.db --field city Graz
  jobfacts query --db facts.db --field certification cissp --limit 10
  jobfacts query --input postings.jsonl --field state Tirol`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		field := store.Field(queryField)
		if !field.Valid() {
			return fmt.Errorf("unknown field %q", queryField)
		}
		return withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
			records, err := st.FindResults(ctx, field, args[0], queryLimit)
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), records)
		})
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent batch runs",
	Long: `Runs prints the most recent run reports stored in the database,
newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
			reports, err := st.RecentReports(ctx, queryLimit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range reports {
				s := r.Summary
				fmt.Fprintf(w, "%s  %s  total=%d processed=%d filtered=%d failed=%d  %v\n",
					r.ID, r.StartedAt.Format(time.RFC3339), s.Total, s.Processed, s.Filtered, s.Failed,
					r.Duration().Round(time.Millisecond))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(runsCmd)

	for _, c := range []*cobra.Command{queryCmd, runsCmd} {
		c.Flags().StringVar(&queryDB, "db", "jobfacts.db", "SQLite database written by extract --db")
		c.Flags().IntVar(&queryLimit, "limit", 20, "maximum number of entries")
		c.Flags().StringVar(&queryInput, "input", "", "extract these postings into memory instead of reading --db")
	}
	queryCmd.Flags().StringVar(&queryField, "field", string(store.FieldCity), "field to search")
}

func withStore(ctx context.Context, fn func(context.Context, store.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if queryInput != "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := extractToMemory(ctx, cfg, queryInput)
		if err != nil {
			return err
		}
		return fn(ctx, st)
	}

	st, err := sqlite.OpenSQLite(ctx, queryDB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()
	return fn(ctx, st)
}

// extractToMemory runs a batch into an in-memory store holding its
// results and report.
func extractToMemory(ctx context.Context, cfg config.Config, input string) (*memstore.Store, error) {
	st := memstore.New()
	if _, err := extractInto(ctx, cfg, input, io.Discard, st); err != nil {
		return nil, err
	}
	return st, nil
}

func printRecords(w io.Writer, records []store.Record) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec.Result); err != nil {
			return err
		}
	}
	return nil
}
