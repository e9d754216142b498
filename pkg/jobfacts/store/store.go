package store

import (
	"context"
	"time"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/batch"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/extract"
)

// Store persists extraction results and run reports
type Store interface {
	Close() error

	// Results
	UpsertResult(ctx context.Context, runID string, r jobfacts.Result) error
	GetResult(ctx context.Context, docID string) (Record, bool, error)
	FindResults(ctx context.Context, field Field, value string, limit int) ([]Record, error)
	CountResults(ctx context.Context) (int64, error)

	// Runs
	SaveReport(ctx context.Context, r batch.Report) error
	GetReport(ctx context.Context, id string) (batch.Report, bool, error)
	RecentReports(ctx context.Context, k int) ([]batch.Report, error)
}

// Record is a stored result with the run that last wrote it
type Record struct {
	Result    jobfacts.Result
	RunID     string
	UpdatedAt time.Time
}

// Field names a set-valued result field that can be queried
type Field string

const (
	FieldEducation     Field = "education_type"
	FieldEmployment    Field = "employment_type"
	FieldCity          Field = "city"
	FieldState         Field = "state"
	FieldCertification Field = "certification"
	FieldExperience    Field = "experience"
)

// Fact is one (field, value) pair of a result
type Fact struct {
	Field Field
	Value string
}

// Facts flattens the string sets of a result.
func Facts(r jobfacts.Result) []Fact {
	var facts []Fact
	add := func(f Field, values []string) {
		for _, v := range values {
			facts = append(facts, Fact{Field: f, Value: v})
		}
	}
	add(FieldEducation, r.EducationType)
	add(FieldEmployment, r.EmploymentType)
	add(FieldCity, r.Location.Cities)
	add(FieldState, r.Location.States)
	add(FieldCertification, r.Certifications)
	add(FieldExperience, r.ExperienceKeywords)
	return facts
}

// NewResult returns a result for docID whose slices are all empty and
// non-nil, ready to be filled with Apply.
func NewResult(docID, language string) jobfacts.Result {
	return jobfacts.Result{
		ID:                 docID,
		Language:           language,
		Salary:             []float64{},
		EducationType:      []string{},
		EmploymentType:     []string{},
		Location:           extract.Place{Cities: []string{}, States: []string{}},
		Certifications:     []string{},
		ExperienceKeywords: []string{},
	}
}

// Apply appends a fact to the matching field of r. Callers feed facts in
// sorted order to keep fields sorted.
func Apply(r *jobfacts.Result, f Fact) {
	switch f.Field {
	case FieldEducation:
		r.EducationType = append(r.EducationType, f.Value)
	case FieldEmployment:
		r.EmploymentType = append(r.EmploymentType, f.Value)
	case FieldCity:
		r.Location.Cities = append(r.Location.Cities, f.Value)
	case FieldState:
		r.Location.States = append(r.Location.States, f.Value)
	case FieldCertification:
		r.Certifications = append(r.Certifications, f.Value)
	case FieldExperience:
		r.ExperienceKeywords = append(r.ExperienceKeywords, f.Value)
	}
}

// Valid reports whether f names a known field.
func (f Field) Valid() bool {
	switch f {
	case FieldEducation, FieldEmployment, FieldCity, FieldState, FieldCertification, FieldExperience:
		return true
	}
	return false
}
