package config

import (
	"fmt"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/refdata"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/rules"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/stoplist"
)

// Loader handles loading all configuration files
type Loader struct {
	RulesPath          string
	StoplistPath       string
	CitiesPath         string
	CertificationsPath string
}

// Components holds all loaded components
type Components struct {
	Rules     *rules.Set
	Stoplist  *stoplist.Manager
	Reference *refdata.Reference
}

// Load loads all components. Any empty path falls back to the embedded
// table for that component.
func (l Loader) Load() (*Components, error) {
	rs, err := l.loadRules()
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	stops, err := l.loadStoplist()
	if err != nil {
		return nil, fmt.Errorf("load stoplist: %w", err)
	}

	ref, err := refdata.Load(l.CitiesPath, l.CertificationsPath)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	return &Components{
		Rules:     rs,
		Stoplist:  stops,
		Reference: ref,
	}, nil
}

func (l Loader) loadRules() (*rules.Set, error) {
	if l.RulesPath == "" {
		return rules.Default()
	}
	return rules.Load(l.RulesPath)
}

func (l Loader) loadStoplist() (*stoplist.Manager, error) {
	if l.StoplistPath == "" {
		return stoplist.Default()
	}
	return stoplist.Load(l.StoplistPath)
}

// Extractor builds an extractor from the loaded components. Collaborators
// in opts are kept; the loaded tables replace its data fields.
func (c *Components) Extractor(opts jobfacts.Options) (*jobfacts.Extractor, error) {
	opts.Rules = c.Rules
	opts.Stoplist = c.Stoplist
	opts.Reference = c.Reference
	return jobfacts.New(opts)
}
