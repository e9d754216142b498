package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/batch"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/store"
)

// Store is an in-memory implementation of store.Store for tests and runs
// without a database.
type Store struct {
	mu      sync.RWMutex
	records map[string]store.Record
	reports map[string]batch.Report
}

var _ store.Store = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		records: make(map[string]store.Record),
		reports: make(map[string]batch.Report),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// UpsertResult inserts or replaces a result, keyed by document ID.
func (s *Store) UpsertResult(ctx context.Context, runID string, r jobfacts.Result) error {
	if r.ID == "" {
		return errors.New("upsert result: empty document id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[r.ID] = store.Record{
		Result:    copyResult(r),
		RunID:     runID,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

// GetResult returns the result of a document.
func (s *Store) GetResult(ctx context.Context, docID string) (store.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[docID]
	if !ok {
		return store.Record{}, false, nil
	}
	rec.Result = copyResult(rec.Result)
	return rec, true, nil
}

// FindResults returns results carrying value in field, ordered by document ID.
func (s *Store) FindResults(ctx context.Context, field store.Field, value string, limit int) ([]store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	var out []store.Record
	for _, rec := range s.records {
		for _, f := range store.Facts(rec.Result) {
			if f.Field == field && f.Value == value {
				rec.Result = copyResult(rec.Result)
				out = append(out, rec)
				break
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Result.ID < out[j].Result.ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountResults returns the number of stored results.
func (s *Store) CountResults(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

// SaveReport inserts or replaces a run report.
func (s *Store) SaveReport(ctx context.Context, r batch.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Failures = append([]batch.Failure{}, r.Failures...)
	s.reports[r.ID] = r
	return nil
}

// GetReport returns a run report by ID.
func (s *Store) GetReport(ctx context.Context, id string) (batch.Report, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return batch.Report{}, false, nil
	}
	r.Failures = append([]batch.Failure{}, r.Failures...)
	return r, true, nil
}

// RecentReports returns the k most recent reports, newest first.
func (s *Store) RecentReports(ctx context.Context, k int) ([]batch.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 {
		k = 10
	}

	out := make([]batch.Report, 0, len(s.reports))
	for _, r := range s.reports {
		r.Failures = append([]batch.Failure{}, r.Failures...)
		out = append(out, r)
	}
	// ULIDs sort by time.
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID > out[j].ID
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func copyResult(r jobfacts.Result) jobfacts.Result {
	c := store.NewResult(r.ID, r.Language)
	c.Salary = append(c.Salary, r.Salary...)
	for _, f := range store.Facts(r) {
		store.Apply(&c, f)
	}
	return c
}
