package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/config"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/ingest"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/relevance"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/rules"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/store"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/store/sqlite"
)

const testPostings = `{"id":"1","title":"IT Security Consultant","body":"Vollzeit, EUR 3.500,- brutto, Standort Wien, CISSP von Vorteil"}
{"id":"2","title":"Senior Backend Developer","body":"Vollzeit in Wien"}
{broken
{"id":"0","title":"<b>Pentester</b>","body":"<p>Teilzeit in Graz</p>"}
`

func writePostings(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "postings.jsonl")
	if err := os.WriteFile(path, []byte(testPostings), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Workers = 2
	cfg.Progress = 0
	return cfg
}

func TestExtractJSON(t *testing.T) {
	input := writePostings(t)
	cfg := testConfig()
	cfg.Database = filepath.Join(t.TempDir(), "facts.db")

	var out bytes.Buffer
	report, err := extract(context.Background(), cfg, input, &out)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	var results []jobfacts.Result
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatalf("Output is not a JSON array: %v\n%s", err, out.String())
	}

	var ids []string
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	if !reflect.DeepEqual(ids, []string{"0", "1"}) {
		t.Errorf("Result IDs = %v, want [0 1]", ids)
	}
	if !reflect.DeepEqual(results[1].Salary, []float64{3500}) {
		t.Errorf("Salary = %v, want [3500]", results[1].Salary)
	}
	if !reflect.DeepEqual(results[0].EmploymentType, []string{"part-time"}) {
		t.Errorf("EmploymentType = %v, want [part-time]", results[0].EmploymentType)
	}

	s := report.Summary
	if s.Total != 4 || s.Processed != 2 || s.Filtered != 1 || s.Failed != 1 {
		t.Errorf("Summary = %+v", s)
	}
	if len(report.Failures) != 1 || !strings.HasSuffix(report.Failures[0].DocumentID, ":3") {
		t.Errorf("Failures = %+v, want the broken line", report.Failures)
	}

	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()

	if n, err := st.CountResults(ctx); err != nil || n != 2 {
		t.Errorf("CountResults() = %d, %v; want 2", n, err)
	}
	stored, ok, err := st.GetReport(ctx, report.ID)
	if err != nil || !ok {
		t.Fatalf("GetReport: ok=%v err=%v", ok, err)
	}
	if stored.Summary != report.Summary {
		t.Errorf("Stored summary = %+v, want %+v", stored.Summary, report.Summary)
	}
	records, err := st.FindResults(ctx, store.FieldCity, "Graz", 10)
	if err != nil {
		t.Fatalf("FindResults: %v", err)
	}
	if len(records) != 1 || records[0].Result.ID != "0" || records[0].RunID != report.ID {
		t.Errorf("FindResults(city, Graz) = %+v", records)
	}
}

func TestExtractJSONL(t *testing.T) {
	input := writePostings(t)
	cfg := testConfig()
	cfg.Output.Format = config.FormatJSONL

	var out bytes.Buffer
	if _, err := extract(context.Background(), cfg, input, &out); err != nil {
		t.Fatalf("extract: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d:\n%s", len(lines), out.String())
	}
	for _, line := range lines {
		var r jobfacts.Result
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Errorf("Line is not a result: %v", err)
		}
	}
}

func TestExtractMissingInput(t *testing.T) {
	var out bytes.Buffer
	if _, err := extract(context.Background(), testConfig(), "/nonexistent/postings.jsonl", &out); err == nil {
		t.Error("Should error on missing input")
	}
	if out.Len() != 0 {
		t.Errorf("Nothing should be written, got %q", out.String())
	}
}

func TestExtractAllMalformed(t *testing.T) {
	input := filepath.Join(t.TempDir(), "bad.jsonl")
	if err := os.WriteFile(input, []byte("{broken\nnot json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.Database = filepath.Join(t.TempDir(), "facts.db")

	var out bytes.Buffer
	report, err := extract(context.Background(), cfg, input, &out)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Errorf("Output = %q, want an empty array", out.String())
	}
	if s := report.Summary; s.Total != 2 || s.Failed != 2 || s.Processed != 0 {
		t.Errorf("Summary = %+v", s)
	}

	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()
	stored, ok, err := st.GetReport(ctx, report.ID)
	if err != nil || !ok {
		t.Fatalf("GetReport: ok=%v err=%v", ok, err)
	}
	if len(stored.Failures) != 2 {
		t.Errorf("Stored failures = %+v, want both lines", stored.Failures)
	}
}

func TestExtractCancelled(t *testing.T) {
	input := writePostings(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	report, err := extract(ctx, testConfig(), input, &out)
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if report.Summary.Total != 4 {
		t.Errorf("Every posting needs an outcome, summary = %+v", report.Summary)
	}
}

func TestExtractToMemory(t *testing.T) {
	input := writePostings(t)
	ctx := context.Background()

	st, err := extractToMemory(ctx, testConfig(), input)
	if err != nil {
		t.Fatalf("extractToMemory: %v", err)
	}
	if n, err := st.CountResults(ctx); err != nil || n != 2 {
		t.Errorf("CountResults() = %d, %v; want 2", n, err)
	}
	records, err := st.FindResults(ctx, store.FieldCity, "Graz", 10)
	if err != nil {
		t.Fatalf("FindResults: %v", err)
	}
	if len(records) != 1 || records[0].Result.ID != "0" {
		t.Fatalf("FindResults(city, Graz) = %+v", records)
	}

	reports, err := st.RecentReports(ctx, 5)
	if err != nil || len(reports) != 1 {
		t.Fatalf("RecentReports() = %v, %v; want one run", reports, err)
	}
	if reports[0].Summary.Total != 4 || records[0].RunID != reports[0].ID {
		t.Errorf("Report = %+v", reports[0])
	}

	var out bytes.Buffer
	if err := printRecords(&out, records); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"id":"0"`) {
		t.Errorf("printRecords() = %q", out.String())
	}
}

func TestPrintTokens(t *testing.T) {
	phrases := ingest.NewMultiTokenParser([]ingest.DictEntry{
		{Canonical: "sankt pölten", Category: "city", Words: []string{"sankt", "pölten"}},
	})

	var out bytes.Buffer
	tokens := []ingest.Token{ingest.Word("€"), ingest.Number(3500), ingest.Word("sankt pölten")}
	printTokens(&out, tokens, phrases.Lookup)

	want := "€\n#3500\nsankt pölten\t[city]\n"
	if out.String() != want {
		t.Errorf("printTokens() = %q, want %q", out.String(), want)
	}
}

func TestPrintRelevance(t *testing.T) {
	f := relevance.New(rules.MustDefault().Relevance)

	var out bytes.Buffer
	printRelevance(&out, f, "IT Security Specialist")
	if !strings.Contains(out.String(), "relevant: true") {
		t.Errorf("Expected relevant title, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "information, security, role") {
		t.Errorf("Expected groups in rule order, got:\n%s", out.String())
	}

	out.Reset()
	printRelevance(&out, f, "Koch")
	if !strings.Contains(out.String(), "relevant: false") || !strings.Contains(out.String(), "groups:   -") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Written config should load: %v", err)
	}
	if !reflect.DeepEqual(cfg, config.Default()) {
		t.Errorf("Written config = %+v, want defaults", cfg)
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("Should refuse to overwrite an existing config")
	}
}
