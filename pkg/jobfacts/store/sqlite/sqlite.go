package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/batch"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/internalerr"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", path, internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency. This is the first statement,
	// so an unreachable file fails here.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w: %w", path, internalerr.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS results (
	doc_id TEXT PRIMARY KEY,
	run_id TEXT,
	language TEXT,
	updated_at TEXT
);

CREATE TABLE IF NOT EXISTS result_facts (
	doc_id TEXT NOT NULL,
	field TEXT NOT NULL,
	value TEXT NOT NULL,
	UNIQUE(doc_id, field, value),
	FOREIGN KEY(doc_id) REFERENCES results(doc_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS result_facts_lookup ON result_facts(field, value);

CREATE TABLE IF NOT EXISTS result_salaries (
	doc_id TEXT NOT NULL,
	amount REAL NOT NULL,
	UNIQUE(doc_id, amount),
	FOREIGN KEY(doc_id) REFERENCES results(doc_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT,
	completed_at TEXT,
	summary TEXT
);

CREATE TABLE IF NOT EXISTS run_failures (
	run_id TEXT NOT NULL,
	document_id TEXT NOT NULL,
	error TEXT,
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertResult inserts or replaces the result of a document
func (s *sqliteStore) UpsertResult(ctx context.Context, runID string, r jobfacts.Result) error {
	if r.ID == "" {
		return errors.New("upsert result: empty document id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO results (doc_id, run_id, language, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(doc_id) DO UPDATE SET
	run_id=excluded.run_id,
	language=excluded.language,
	updated_at=excluded.updated_at;
`, r.ID, runID, r.Language, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}

	if err := replaceFacts(ctx, tx, r.ID, store.Facts(r)); err != nil {
		return err
	}
	if err := replaceSalaries(ctx, tx, r.ID, r.Salary); err != nil {
		return err
	}

	return tx.Commit()
}

func replaceFacts(ctx context.Context, tx *sql.Tx, docID string, facts []store.Fact) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM result_facts WHERE doc_id=?`, docID); err != nil {
		return err
	}
	if len(facts) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO result_facts (doc_id, field, value) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, f := range facts {
		if f.Value == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, docID, string(f.Field), f.Value); err != nil {
			return err
		}
	}
	return nil
}

func replaceSalaries(ctx context.Context, tx *sql.Tx, docID string, amounts []float64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM result_salaries WHERE doc_id=?`, docID); err != nil {
		return err
	}
	if len(amounts) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO result_salaries (doc_id, amount) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, amount := range amounts {
		if _, err := stmt.ExecContext(ctx, docID, amount); err != nil {
			return err
		}
	}
	return nil
}

// GetResult retrieves the result of a document
func (s *sqliteStore) GetResult(ctx context.Context, docID string) (store.Record, bool, error) {
	rec, err := s.loadResult(ctx, docID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, false, nil
	}
	if err != nil {
		return store.Record{}, false, err
	}
	return rec, true, nil
}

// FindResults retrieves results that carry value in field, ordered by
// document ID
func (s *sqliteStore) FindResults(ctx context.Context, field store.Field, value string, limit int) ([]store.Record, error) {
	if limit <= 0 {
		limit = 20
	}

	ids, err := s.loadStringColumn(ctx, `
SELECT doc_id
FROM result_facts
WHERE field = ? AND value = ?
ORDER BY doc_id
LIMIT ?;
`, string(field), value, limit)
	if err != nil {
		return nil, err
	}

	records := make([]store.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.loadResult(ctx, id)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// CountResults returns the number of stored results
func (s *sqliteStore) CountResults(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&total)
	return total, err
}

// SaveReport inserts or replaces a run report
func (s *sqliteStore) SaveReport(ctx context.Context, r batch.Report) error {
	summaryJSON, err := json.Marshal(r.Summary)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, started_at, completed_at, summary)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	started_at=excluded.started_at,
	completed_at=excluded.completed_at,
	summary=excluded.summary;
`, r.ID, r.StartedAt.UTC().Format(time.RFC3339Nano), r.CompletedAt.UTC().Format(time.RFC3339Nano), string(summaryJSON))
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_failures WHERE run_id=?`, r.ID); err != nil {
		return err
	}
	if len(r.Failures) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_failures (run_id, document_id, error) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, f := range r.Failures {
			if _, err := stmt.ExecContext(ctx, r.ID, f.DocumentID, f.Error); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetReport retrieves a run report by ID
func (s *sqliteStore) GetReport(ctx context.Context, id string) (batch.Report, bool, error) {
	rep, err := s.loadReport(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return batch.Report{}, false, nil
	}
	if err != nil {
		return batch.Report{}, false, err
	}
	return rep, true, nil
}

// RecentReports returns the k most recent run reports, newest first
func (s *sqliteStore) RecentReports(ctx context.Context, k int) ([]batch.Report, error) {
	if k <= 0 {
		k = 10
	}

	// ULIDs sort by time.
	ids, err := s.loadStringColumn(ctx, `SELECT id FROM runs ORDER BY id DESC LIMIT ?`, k)
	if err != nil {
		return nil, err
	}

	reports := make([]batch.Report, 0, len(ids))
	for _, id := range ids {
		rep, err := s.loadReport(ctx, id)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func (s *sqliteStore) loadResult(ctx context.Context, docID string) (store.Record, error) {
	var (
		rec      store.Record
		language string
		updated  string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT run_id, language, updated_at
FROM results
WHERE doc_id = ?;
`, docID).Scan(&rec.RunID, &language, &updated)
	if err != nil {
		return store.Record{}, err
	}
	if parsed, perr := time.Parse(time.RFC3339Nano, updated); perr == nil {
		rec.UpdatedAt = parsed
	}

	rec.Result = store.NewResult(docID, language)

	rows, err := s.db.QueryContext(ctx, `SELECT field, value FROM result_facts WHERE doc_id=? ORDER BY field, value`, docID)
	if err != nil {
		return store.Record{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var f store.Fact
		var field string
		if err := rows.Scan(&field, &f.Value); err != nil {
			return store.Record{}, err
		}
		f.Field = store.Field(field)
		store.Apply(&rec.Result, f)
	}
	if err := rows.Err(); err != nil {
		return store.Record{}, err
	}

	salaries, err := s.db.QueryContext(ctx, `SELECT amount FROM result_salaries WHERE doc_id=? ORDER BY amount`, docID)
	if err != nil {
		return store.Record{}, err
	}
	defer salaries.Close()
	for salaries.Next() {
		var amount float64
		if err := salaries.Scan(&amount); err != nil {
			return store.Record{}, err
		}
		rec.Result.Salary = append(rec.Result.Salary, amount)
	}
	return rec, salaries.Err()
}

func (s *sqliteStore) loadReport(ctx context.Context, id string) (batch.Report, error) {
	var (
		rep                         batch.Report
		started, completed, summary string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, started_at, completed_at, summary
FROM runs
WHERE id = ?;
`, id).Scan(&rep.ID, &started, &completed, &summary)
	if err != nil {
		return batch.Report{}, err
	}
	if parsed, perr := time.Parse(time.RFC3339Nano, started); perr == nil {
		rep.StartedAt = parsed
	}
	if parsed, perr := time.Parse(time.RFC3339Nano, completed); perr == nil {
		rep.CompletedAt = parsed
	}
	if err := json.Unmarshal([]byte(summary), &rep.Summary); err != nil {
		return batch.Report{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT document_id, error FROM run_failures WHERE run_id=? ORDER BY document_id`, id)
	if err != nil {
		return batch.Report{}, err
	}
	defer rows.Close()

	rep.Failures = []batch.Failure{}
	for rows.Next() {
		var f batch.Failure
		if err := rows.Scan(&f.DocumentID, &f.Error); err != nil {
			return batch.Report{}, err
		}
		rep.Failures = append(rep.Failures, f)
	}
	return rep, rows.Err()
}

func (s *sqliteStore) loadStringColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var val string
		if err := rows.Scan(&val); err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, rows.Err()
}
