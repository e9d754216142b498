package batch

import (
	"sort"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts"
)

// Summary counts what a batch produced.
type Summary struct {
	Total              int `json:"total"`
	Processed          int `json:"processed"`
	Filtered           int `json:"filtered"`
	Failed             int `json:"failed"`
	WithLanguage       int `json:"with_language"`
	WithSalary         int `json:"with_salary"`
	WithEducation      int `json:"with_education"`
	WithEmployment     int `json:"with_employment"`
	WithLocation       int `json:"with_location"`
	WithCertifications int `json:"with_certifications"`
	WithExperience     int `json:"with_experience"`
}

// Failure records why one input produced no result.
type Failure struct {
	DocumentID string `json:"document_id"`
	Error      string `json:"error"`
}

// Aggregator collects outcomes and input errors of one run. It is not safe
// for concurrent use; feed it from the goroutine that drains the runner.
type Aggregator struct {
	results  []jobfacts.Result
	failures []Failure
	summary  Summary
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{
		results:  []jobfacts.Result{},
		failures: []Failure{},
	}
}

// Add records one document outcome
func (a *Aggregator) Add(o Outcome) {
	if a == nil {
		return
	}
	a.summary.Total++
	switch {
	case o.Err != nil:
		a.addFailure(o.DocumentID, o.Err)
	case o.Filtered || o.Result == nil:
		a.summary.Filtered++
	default:
		a.summary.Processed++
		a.count(*o.Result)
		a.results = append(a.results, *o.Result)
	}
}

// AddAll records a slice of outcomes
func (a *Aggregator) AddAll(outcomes []Outcome) {
	for _, o := range outcomes {
		a.Add(o)
	}
}

// AddInputError records a record that could not even be loaded.
func (a *Aggregator) AddInputError(source string, err error) {
	if a == nil {
		return
	}
	a.summary.Total++
	a.addFailure(source, err)
}

func (a *Aggregator) addFailure(id string, err error) {
	a.summary.Failed++
	a.failures = append(a.failures, Failure{DocumentID: id, Error: err.Error()})
}

func (a *Aggregator) count(r jobfacts.Result) {
	if r.Language != "" {
		a.summary.WithLanguage++
	}
	if len(r.Salary) > 0 {
		a.summary.WithSalary++
	}
	if len(r.EducationType) > 0 {
		a.summary.WithEducation++
	}
	if len(r.EmploymentType) > 0 {
		a.summary.WithEmployment++
	}
	if !r.Location.Empty() {
		a.summary.WithLocation++
	}
	if len(r.Certifications) > 0 {
		a.summary.WithCertifications++
	}
	if len(r.ExperienceKeywords) > 0 {
		a.summary.WithExperience++
	}
}

// Results returns the results of relevant documents sorted by document ID.
// Filtered documents have no entry.
func (a *Aggregator) Results() []jobfacts.Result {
	if a == nil {
		return nil
	}
	out := make([]jobfacts.Result, len(a.results))
	copy(out, a.results)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Failures returns the recorded failures sorted by document ID.
func (a *Aggregator) Failures() []Failure {
	if a == nil {
		return nil
	}
	out := make([]Failure, len(a.failures))
	copy(out, a.failures)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DocumentID < out[j].DocumentID })
	return out
}

// Summary returns the counts so far
func (a *Aggregator) Summary() Summary {
	if a == nil {
		return Summary{}
	}
	return a.summary
}
