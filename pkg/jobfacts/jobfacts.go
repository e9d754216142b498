package jobfacts

import (
	"fmt"
	"strings"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/cache"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/extract"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/ingest"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/internalerr"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/refdata"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/relevance"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/rules"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/stoplist"
)

// languagePrefix bounds the text handed to language detection, in runes.
const languagePrefix = 1000

var (
	ErrInvalidDocument = internalerr.ErrInvalidDocument
	ErrInvalidConfig   = internalerr.ErrInvalidConfig
)

// TextConverter turns markup into plain text.
type TextConverter interface {
	Text(markup string) (string, error)
}

// LanguageDetector guesses the language of a text. A false result means
// no usable guess.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

// Extractor is the per-document pipeline: relevance filter, markup
// conversion, normalization, language detection and entity extraction.
// It holds only immutable state and is safe for concurrent use.
type Extractor struct {
	rules      *rules.Set
	ref        *refdata.Reference
	normalizer *ingest.Normalizer
	filter     *relevance.Filter
	html       TextConverter
	lang       LanguageDetector
	cache      *cache.MemoryCache
}

// Options configures an Extractor. Rules, Reference and Stoplist are
// required; HTML, Language and Cache are optional.
type Options struct {
	Rules     *rules.Set
	Reference *refdata.Reference
	Stoplist  *stoplist.Manager
	HTML      TextConverter
	Language  LanguageDetector
	Cache     *cache.MemoryCache
}

// Result holds the facts extracted from one relevant document. Every slice
// is sorted, deduplicated and non-nil.
type Result struct {
	ID                 string        `json:"id"`
	Language           string        `json:"language,omitempty"`
	Salary             []float64     `json:"salary"`
	EducationType      []string      `json:"education_type"`
	EmploymentType     []string      `json:"employment_type"`
	Location           extract.Place `json:"location"`
	Certifications     []string      `json:"certifications"`
	ExperienceKeywords []string      `json:"experience_keywords"`
}

// New creates an Extractor with the given dependencies
func New(opts Options) (*Extractor, error) {
	if opts.Rules == nil || opts.Reference == nil || opts.Stoplist == nil {
		return nil, fmt.Errorf("extractor needs rules, reference data and stoplist: %w", ErrInvalidConfig)
	}
	html := opts.HTML
	if html == nil {
		html = plainText{}
	}
	return &Extractor{
		rules:      opts.Rules,
		ref:        opts.Reference,
		normalizer: ingest.New(opts.Rules, opts.Stoplist, opts.Reference),
		filter:     relevance.New(opts.Rules.Relevance),
		html:       html,
		lang:       opts.Language,
		cache:      opts.Cache,
	}, nil
}

// Normalizer exposes the normalizer the extractor runs.
func (e *Extractor) Normalizer() *ingest.Normalizer {
	return e.normalizer
}

// Filter exposes the relevance filter the extractor runs.
func (e *Extractor) Filter() *relevance.Filter {
	return e.filter
}

// Process runs the pipeline on one document. It returns ok == false with a
// nil error when the title is not relevant; that is not a failure.
func (e *Extractor) Process(doc ingest.Document) (Result, bool, error) {
	if err := doc.Validate(); err != nil {
		return Result{}, false, err
	}

	title, err := e.html.Text(doc.Title)
	if err != nil {
		return Result{}, false, fmt.Errorf("document %q: convert title: %w: %w", doc.ID, ErrInvalidDocument, err)
	}
	if !e.filter.Relevant(title) {
		return Result{}, false, nil
	}

	body, err := e.html.Text(doc.Body)
	if err != nil {
		return Result{}, false, fmt.Errorf("document %q: convert body: %w: %w", doc.ID, ErrInvalidDocument, err)
	}
	tokens := e.normalizer.Normalize(body)

	var locationTokens []ingest.Token
	if doc.HasLocation() {
		expanded := extract.ExpandStateAbbreviations(doc.Location, e.rules)
		locationTokens = e.normalizeField("location", expanded)
	}

	employment := extract.EmploymentTypes(tokens, e.rules)
	if doc.HasContractType() {
		contract := e.normalizeField("contract", doc.ContractType)
		employment = extract.Union(employment, extract.EmploymentTypes(contract, e.rules))
	}

	return Result{
		ID:                 doc.ID,
		Language:           e.language(body),
		Salary:             extract.Salary(tokens),
		EducationType:      extract.Education(tokens, e.rules),
		EmploymentType:     employment,
		Location:           extract.Location(locationTokens, tokens, e.ref),
		Certifications:     extract.Certifications(tokens, e.ref),
		ExperienceKeywords: extract.Experience(tokens, e.rules),
	}, true, nil
}

func (e *Extractor) normalizeField(field, text string) []ingest.Token {
	if e.cache == nil {
		return e.normalizer.Normalize(text)
	}
	return e.cache.Normalize(field+":"+text, func() []ingest.Token {
		return e.normalizer.Normalize(text)
	})
}

func (e *Extractor) language(body string) string {
	if e.lang == nil {
		return ""
	}
	lang, ok := e.lang.Detect(runePrefix(body, languagePrefix))
	if !ok {
		return ""
	}
	return lang
}

func runePrefix(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// plainText is the converter used when none is configured.
type plainText struct{}

func (plainText) Text(s string) (string, error) {
	return strings.TrimSpace(s), nil
}
