package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultRules []byte

// Set is a compiled, versioned rule table. It is immutable after Parse and
// safe for concurrent use.
type Set struct {
	Version            int
	CurrencySymbols    []string
	CurrencyCodes      map[string]struct{}
	Expansions         []Expansion
	StateAbbreviations map[string]string
	Employment         []Rule
	HoursUnits         map[string]struct{}
	FullTimeAbove      float64
	Education          []Rule
	Experience         *regexp.Regexp
	ExperienceRadius   int
	Relevance          Relevance
}

// Rule maps a pattern to the canonical label it produces.
type Rule struct {
	Label   string
	Pattern *regexp.Regexp
}

// Expansion rewrites vocabulary before tokenization.
type Expansion struct {
	Pattern *regexp.Regexp
	Replace string
}

// Relevance holds the keyword groups of the title filter and the
// conjunctions that make a title relevant.
type Relevance struct {
	Groups []Group
	AnyOf  [][]string
}

// Group is a named keyword group. Words match whole title words, stems
// match anywhere in the title.
type Group struct {
	Name  string
	Words []string
	Stems []string
}

type file struct {
	Version  int `yaml:"version"`
	Currency struct {
		Symbols []string `yaml:"symbols"`
		Codes   []string `yaml:"codes"`
	} `yaml:"currency"`
	Expansions []struct {
		Pattern string `yaml:"pattern"`
		Replace string `yaml:"replace"`
	} `yaml:"expansions"`
	StateAbbreviations map[string]string `yaml:"state_abbreviations"`
	Employment         []labelled        `yaml:"employment"`
	Hours              struct {
		Units         []string `yaml:"units"`
		FullTimeAbove float64  `yaml:"full_time_above"`
	} `yaml:"hours"`
	Education  []labelled `yaml:"education"`
	Experience struct {
		Pattern string `yaml:"pattern"`
		Radius  int    `yaml:"radius"`
	} `yaml:"experience"`
	Relevance struct {
		Groups yaml.Node  `yaml:"groups"`
		AnyOf  [][]string `yaml:"any_of"`
	} `yaml:"relevance"`
}

type labelled struct {
	Label   string `yaml:"label"`
	Pattern string `yaml:"pattern"`
}

type keywords struct {
	Words []string `yaml:"words"`
	Stems []string `yaml:"stems"`
}

// Default returns the built-in rule set.
func Default() (*Set, error) {
	return Parse(defaultRules)
}

// MustDefault is Default for callers that treat broken built-in rules as a
// programming error.
func MustDefault() *Set {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

// Load reads a rule file from disk.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse compiles a YAML rule table.
func Parse(data []byte) (*Set, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	s := &Set{
		Version:            f.Version,
		CurrencySymbols:    f.Currency.Symbols,
		CurrencyCodes:      toSet(f.Currency.Codes),
		StateAbbreviations: f.StateAbbreviations,
		HoursUnits:         toSet(f.Hours.Units),
		FullTimeAbove:      f.Hours.FullTimeAbove,
		ExperienceRadius:   f.Experience.Radius,
	}
	if s.StateAbbreviations == nil {
		s.StateAbbreviations = map[string]string{}
	}

	for i, e := range f.Expansions {
		re, err := regexp.Compile(e.Pattern)
		if err != nil {
			return nil, fmt.Errorf("expansion %d: %w", i, err)
		}
		s.Expansions = append(s.Expansions, Expansion{Pattern: re, Replace: e.Replace})
	}

	var err error
	if s.Employment, err = compileLabelled("employment", f.Employment, "(?i)"); err != nil {
		return nil, err
	}
	if s.Education, err = compileLabelled("education", f.Education, ""); err != nil {
		return nil, err
	}

	if f.Experience.Pattern != "" {
		if s.Experience, err = regexp.Compile(f.Experience.Pattern); err != nil {
			return nil, fmt.Errorf("experience: %w", err)
		}
	}

	if s.Relevance.Groups, err = decodeGroups(&f.Relevance.Groups); err != nil {
		return nil, err
	}
	s.Relevance.AnyOf = f.Relevance.AnyOf
	if err := s.Relevance.validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// IsCurrency reports whether a lowercased token is a currency symbol or code.
func (s *Set) IsCurrency(token string) bool {
	if _, ok := s.CurrencyCodes[token]; ok {
		return true
	}
	for _, sym := range s.CurrencySymbols {
		if token == sym {
			return true
		}
	}
	return false
}

// IsHoursUnit reports whether a word means "hours (per week)".
func (s *Set) IsHoursUnit(word string) bool {
	_, ok := s.HoursUnits[word]
	return ok
}

func compileLabelled(field string, in []labelled, flags string) ([]Rule, error) {
	out := make([]Rule, 0, len(in))
	for _, l := range in {
		if l.Label == "" {
			return nil, fmt.Errorf("%s: rule without label", field)
		}
		re, err := regexp.Compile(flags + l.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", field, l.Label, err)
		}
		out = append(out, Rule{Label: l.Label, Pattern: re})
	}
	return out, nil
}

// decodeGroups keeps the YAML mapping order so that group evaluation is
// deterministic.
func decodeGroups(node *yaml.Node) ([]Group, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("relevance groups: expected mapping")
	}
	groups := make([]Group, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var kw keywords
		if err := node.Content[i+1].Decode(&kw); err != nil {
			return nil, fmt.Errorf("relevance group %q: %w", node.Content[i].Value, err)
		}
		groups = append(groups, Group{
			Name:  node.Content[i].Value,
			Words: lowerAll(kw.Words),
			Stems: lowerAll(kw.Stems),
		})
	}
	return groups, nil
}

func (r Relevance) validate() error {
	known := make(map[string]struct{}, len(r.Groups))
	for _, g := range r.Groups {
		known[g.Name] = struct{}{}
	}
	for _, conj := range r.AnyOf {
		for _, name := range conj {
			if _, ok := known[name]; !ok {
				return fmt.Errorf("relevance: unknown group %q", name)
			}
		}
	}
	return nil
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[strings.ToLower(v)] = struct{}{}
	}
	return out
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
