package batch

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/ingest"
)

// Processor is the per-document pipeline the runner fans out.
type Processor interface {
	Process(doc ingest.Document) (jobfacts.Result, bool, error)
}

// Outcome is the result of one document: a result, a filtered marker or
// an error. Exactly one outcome exists per input document.
type Outcome struct {
	DocumentID string
	Result     *jobfacts.Result
	Filtered   bool
	Err        error
}

// GetError returns the error of the outcome
func (o Outcome) GetError() error {
	return o.Err
}

type docJob struct {
	doc       ingest.Document
	processor Processor
}

// Execute runs the pipeline on one document. A panic is turned into the
// document's error so that sibling documents keep going.
func (j *docJob) Execute(ctx context.Context) (result Result) {
	out := &Outcome{DocumentID: j.doc.ID}
	defer func() {
		if r := recover(); r != nil {
			out.Result = nil
			out.Filtered = false
			out.Err = fmt.Errorf("document %q: panic: %v", j.doc.ID, r)
			result = out
		}
	}()

	res, ok, err := j.processor.Process(j.doc)
	switch {
	case err != nil:
		out.Err = err
	case !ok:
		out.Filtered = true
	default:
		out.Result = &res
	}
	return out
}

// Runner processes documents concurrently
type Runner struct {
	processor Processor
	workers   int

	// ProgressEvery logs a progress line after every n finished documents;
	// zero disables it.
	ProgressEvery int
}

// NewRunner creates a new runner. workers <= 0 means one per CPU.
func NewRunner(processor Processor, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{
		processor: processor,
		workers:   workers,
	}
}

// Map processes every document and returns one outcome per input, in
// completion order. Cancelling ctx stops submitting further documents;
// those get ctx.Err() as their error.
func (r *Runner) Map(ctx context.Context, docs []ingest.Document) []Outcome {
	if len(docs) == 0 {
		return []Outcome{}
	}

	pool := NewPool(ctx, r.workers)
	pool.Start()

	var skipped []Outcome
	go func() {
		defer pool.Close()
		for i, doc := range docs {
			if !pool.Submit(&docJob{doc: doc, processor: r.processor}) {
				for _, rest := range docs[i:] {
					skipped = append(skipped, Outcome{DocumentID: rest.ID, Err: ctx.Err()})
				}
				return
			}
		}
	}()

	outcomes := make([]Outcome, 0, len(docs))
	for res := range pool.Results() {
		outcomes = append(outcomes, *res.(*Outcome))
		if r.ProgressEvery > 0 && len(outcomes)%r.ProgressEvery == 0 {
			log.Printf("Processed %d/%d documents", len(outcomes), len(docs))
		}
	}
	// Results is closed only after Close ran, so skipped is complete.
	return append(outcomes, skipped...)
}
