package stoplist

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed stopwords.yaml
var builtin []byte

// Manager holds the stopword union of every configured language.
type Manager struct {
	stops map[string]Reason
}

// Reason records which languages list a token as a stopword.
type Reason struct {
	Languages []string
}

// File is the YAML layout of a stopword file.
type File struct {
	Languages map[string]struct {
		Terms []string `yaml:"terms"`
	} `yaml:"languages"`
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]Reason, len(initialStops))
	for _, s := range initialStops {
		stops[strings.ToLower(s)] = Reason{}
	}
	return &Manager{stops: stops}
}

// Default returns the built-in German and English stoplist.
func Default() (*Manager, error) {
	return Parse(builtin)
}

// Load reads a stopword file from disk.
func Load(path string) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a manager from YAML holding one term list per language.
func Parse(data []byte) (*Manager, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse stoplist: %w", err)
	}

	langs := make([]string, 0, len(f.Languages))
	for lang := range f.Languages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	m := &Manager{stops: make(map[string]Reason)}
	for _, lang := range langs {
		for _, term := range f.Languages[lang].Terms {
			m.add(strings.ToLower(term), lang)
		}
	}
	return m, nil
}

func (m *Manager) add(token, lang string) {
	r := m.stops[token]
	r.Languages = append(r.Languages, lang)
	m.stops[token] = r
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[token]
	return ok
}

// Why returns the reason a token is a stopword.
func (m *Manager) Why(token string) (Reason, bool) {
	r, ok := m.stops[token]
	return r, ok
}

// All returns all stopwords, sorted.
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Len returns the number of stopwords.
func (m *Manager) Len() int {
	return len(m.stops)
}
