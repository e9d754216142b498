package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/batch"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/extract"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/internalerr"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleResult(id string) jobfacts.Result {
	return jobfacts.Result{
		ID:                 id,
		Language:           "de",
		Salary:             []float64{3500, 4200.5},
		EducationType:      []string{"bachelor", "fh"},
		EmploymentType:     []string{"full-time"},
		Location:           extract.Place{Cities: []string{"Wien"}, States: []string{"Wien"}},
		Certifications:     []string{"cissp", "iso/iec 27001"},
		ExperienceKeywords: []string{"erfahrung", "siem"},
	}
}

// TestSQLiteIntegrationBasic tests basic CRUD operations
func TestSQLiteIntegrationBasic(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	want := sampleResult("job-1")
	if err := st.UpsertResult(ctx, "run-1", want); err != nil {
		t.Fatalf("UpsertResult: %v", err)
	}

	rec, found, err := st.GetResult(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if !found {
		t.Fatal("Result should be found")
	}
	if !reflect.DeepEqual(rec.Result, want) {
		t.Errorf("Result mismatch:\n got %+v\nwant %+v", rec.Result, want)
	}
	if rec.RunID != "run-1" || rec.UpdatedAt.IsZero() {
		t.Errorf("Unexpected record metadata: %+v", rec)
	}

	_, found, err = st.GetResult(ctx, "missing")
	if err != nil || found {
		t.Errorf("Missing result: found=%v err=%v", found, err)
	}
}

func TestSQLiteUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	if err := st.UpsertResult(ctx, "run-1", sampleResult("job-1")); err != nil {
		t.Fatalf("UpsertResult: %v", err)
	}

	updated := store.NewResult("job-1", "")
	updated.EmploymentType = []string{"part-time"}
	if err := st.UpsertResult(ctx, "run-2", updated); err != nil {
		t.Fatalf("UpsertResult: %v", err)
	}

	rec, _, err := st.GetResult(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if !reflect.DeepEqual(rec.Result, updated) {
		t.Errorf("Old facts should be replaced:\n got %+v\nwant %+v", rec.Result, updated)
	}
	if rec.RunID != "run-2" {
		t.Errorf("RunID = %q, want run-2", rec.RunID)
	}

	n, err := st.CountResults(ctx)
	if err != nil || n != 1 {
		t.Errorf("CountResults = %d, %v; want 1", n, err)
	}
}

func TestSQLiteUpsertRequiresID(t *testing.T) {
	st := openTestStore(t)
	if err := st.UpsertResult(context.Background(), "run", jobfacts.Result{}); err == nil {
		t.Error("Expected an error for an empty document id")
	}
}

func TestSQLiteFindResults(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	graz := store.NewResult("job-2", "en")
	graz.Location = extract.Place{Cities: []string{"Graz"}, States: []string{"Steiermark"}}
	graz.Certifications = []string{"cissp"}

	for _, r := range []jobfacts.Result{sampleResult("job-1"), graz} {
		if err := st.UpsertResult(ctx, "run-1", r); err != nil {
			t.Fatalf("UpsertResult: %v", err)
		}
	}

	recs, err := st.FindResults(ctx, store.FieldCertification, "cissp", 0)
	if err != nil {
		t.Fatalf("FindResults: %v", err)
	}
	if len(recs) != 2 || recs[0].Result.ID != "job-1" || recs[1].Result.ID != "job-2" {
		t.Errorf("Expected job-1 and job-2, got %+v", recs)
	}

	recs, err = st.FindResults(ctx, store.FieldState, "Steiermark", 10)
	if err != nil {
		t.Fatalf("FindResults: %v", err)
	}
	if len(recs) != 1 || recs[0].Result.ID != "job-2" {
		t.Errorf("Expected job-2, got %+v", recs)
	}

	recs, err = st.FindResults(ctx, store.FieldCity, "Linz", 10)
	if err != nil || len(recs) != 0 {
		t.Errorf("Expected no results, got %+v (%v)", recs, err)
	}
}

func TestSQLiteReports(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	builder := batch.NewReportBuilder()
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	agg := batch.NewAggregator()
	agg.Add(batch.Outcome{DocumentID: "a", Filtered: true})
	first := builder.Build(agg, start, start.Add(time.Minute))

	agg.AddInputError("postings.jsonl:3", context.DeadlineExceeded)
	second := builder.Build(agg, start.Add(time.Hour), start.Add(time.Hour+time.Minute))

	for _, r := range []batch.Report{first, second} {
		if err := st.SaveReport(ctx, r); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
	}

	got, found, err := st.GetReport(ctx, second.ID)
	if err != nil || !found {
		t.Fatalf("GetReport: found=%v err=%v", found, err)
	}
	if got.Summary != second.Summary || !got.StartedAt.Equal(second.StartedAt) || !got.CompletedAt.Equal(second.CompletedAt) {
		t.Errorf("Report mismatch:\n got %+v\nwant %+v", got, second)
	}
	if !reflect.DeepEqual(got.Failures, second.Failures) {
		t.Errorf("Failures = %+v, want %+v", got.Failures, second.Failures)
	}

	recent, err := st.RecentReports(ctx, 5)
	if err != nil {
		t.Fatalf("RecentReports: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != second.ID || recent[1].ID != first.ID {
		t.Errorf("Expected newest first, got %v", recent)
	}

	if _, found, err := st.GetReport(ctx, "nope"); found || err != nil {
		t.Errorf("Missing report: found=%v err=%v", found, err)
	}
}

func TestSQLiteConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := sampleResult(string(rune('a' + i)))
			if err := st.UpsertResult(ctx, "run", r); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	// SQLite serializes writers; a busy error is acceptable, lost data is not.
	failed := 0
	for err := range errs {
		t.Logf("upsert: %v", err)
		failed++
	}
	n, err := st.CountResults(ctx)
	if err != nil {
		t.Fatalf("CountResults: %v", err)
	}
	if int(n) != 20-failed {
		t.Errorf("CountResults = %d, want %d", n, 20-failed)
	}
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	st, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := st.UpsertResult(ctx, "run", sampleResult("job-1")); err != nil {
		t.Fatalf("UpsertResult: %v", err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()
	if _, found, err := st.GetResult(ctx, "job-1"); !found || err != nil {
		t.Errorf("Result should survive reopen: found=%v err=%v", found, err)
	}
}

func TestSQLiteOpenUnreachable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "test.db")

	_, err := OpenSQLite(context.Background(), path)
	if !errors.Is(err, internalerr.ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
}
