package batch

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Report describes one finished batch run.
type Report struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Summary     Summary   `json:"summary"`
	Failures    []Failure `json:"failures"`
}

// Duration is the wall time of the run.
func (r Report) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// ReportBuilder issues run reports with monotonic ULIDs.
type ReportBuilder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewReportBuilder creates a new report builder
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Build creates the report of a run from its aggregator. The ID encodes
// startedAt, so reports sort by start time.
func (b *ReportBuilder) Build(agg *Aggregator, startedAt, completedAt time.Time) Report {
	b.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(startedAt), b.entropy).String()
	b.mu.Unlock()

	return Report{
		ID:          id,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Summary:     agg.Summary(),
		Failures:    agg.Failures(),
	}
}
