// Package refdata holds the read-only lookup tables used during extraction:
// the gazetteer (city -> state) and the certification table
// (code -> full name).
//
// A Reference is built once by the caller and passed to the normalizer and
// the extractors. It is never mutated afterwards, so any number of
// goroutines may read it concurrently.
package refdata

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/internalerr"
)

//go:embed cities.json
var builtinCities []byte

//go:embed certifications.json
var builtinCertifications []byte

// Kind tells which table a name comes from.
type Kind string

const (
	KindCity          Kind = "city"
	KindState         Kind = "state"
	KindCertification Kind = "certification"
)

// Name is a canonical reference name together with its table.
type Name struct {
	Text string
	Kind Kind
}

// Error reports a reference table that could not be loaded. It matches
// internalerr.ErrReferenceData with errors.Is.
type Error struct {
	Table string
	Path  string
	Err   error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load %s table: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("load %s table %s: %v", e.Table, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == internalerr.ErrReferenceData }

// Reference is the immutable gazetteer and certification table.
type Reference struct {
	cities    map[string]string // lowercased city -> canonical city
	states    map[string]string // lowercased state -> canonical state
	cityState map[string]string // canonical city -> canonical state
	certs     map[string]string // lowercased code -> full name
	names     []Name
}

// New indexes the given tables. Keys and values keep their original case;
// lookups are case-insensitive.
func New(cities, certifications map[string]string) *Reference {
	r := &Reference{
		cities:    make(map[string]string, len(cities)),
		states:    make(map[string]string),
		cityState: make(map[string]string, len(cities)),
		certs:     make(map[string]string, len(certifications)),
	}

	for city, state := range cities {
		city = strings.TrimSpace(city)
		state = strings.TrimSpace(state)
		if city == "" {
			continue
		}
		r.cities[strings.ToLower(city)] = city
		r.cityState[city] = state
		if state != "" {
			r.states[strings.ToLower(state)] = state
		}
	}
	for code, name := range certifications {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		r.certs[strings.ToLower(code)] = name
	}

	for _, city := range r.cities {
		r.names = append(r.names, Name{Text: city, Kind: KindCity})
	}
	for _, state := range r.states {
		r.names = append(r.names, Name{Text: state, Kind: KindState})
	}
	for code := range certifications {
		if code = strings.TrimSpace(code); code != "" {
			r.names = append(r.names, Name{Text: code, Kind: KindCertification})
		}
	}
	sort.Slice(r.names, func(i, j int) bool {
		if r.names[i].Text != r.names[j].Text {
			return r.names[i].Text < r.names[j].Text
		}
		return r.names[i].Kind < r.names[j].Kind
	})

	return r
}

// Default builds the reference from the embedded Austrian gazetteer and
// certification table.
func Default() (*Reference, error) {
	return Load("", "")
}

// Load reads both tables. An empty path selects the embedded table.
func Load(citiesPath, certificationsPath string) (*Reference, error) {
	cities, err := loadTable("cities", citiesPath, builtinCities)
	if err != nil {
		return nil, err
	}
	certs, err := loadTable("certifications", certificationsPath, builtinCertifications)
	if err != nil {
		return nil, err
	}
	return New(cities, certs), nil
}

// LoadTable reads a flat JSON or YAML object of string keys to string values.
func LoadTable(path string) (map[string]string, error) {
	return loadTable("lookup", path, nil)
}

func loadTable(table, path string, fallback []byte) (map[string]string, error) {
	data := fallback
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, &Error{Table: table, Path: path, Err: err}
		}
	}

	// JSON is a subset of YAML, so one decoder covers both formats.
	var out map[string]string
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, &Error{Table: table, Path: path, Err: err}
	}
	if len(out) == 0 {
		return nil, &Error{Table: table, Path: path, Err: fmt.Errorf("table is empty")}
	}
	return out, nil
}

// City resolves a lowercased token to its canonical city and state.
func (r *Reference) City(token string) (city, state string, ok bool) {
	city, ok = r.cities[token]
	if !ok {
		return "", "", false
	}
	return city, r.cityState[city], true
}

// State resolves a lowercased token to its canonical state name.
func (r *Reference) State(token string) (string, bool) {
	state, ok := r.states[token]
	return state, ok
}

// Certification reports whether a lowercased token is a known certification
// code and returns its full name.
func (r *Reference) Certification(token string) (string, bool) {
	name, ok := r.certs[token]
	return name, ok
}

// Names returns every city, state and certification name, sorted.
func (r *Reference) Names() []Name {
	out := make([]Name, len(r.names))
	copy(out, r.names)
	return out
}

// Cities returns a copy of the city -> state table.
func (r *Reference) Cities() map[string]string {
	out := make(map[string]string, len(r.cityState))
	for city, state := range r.cityState {
		out[city] = state
	}
	return out
}

// Certifications returns a copy of the lowercased code -> full name table.
func (r *Reference) Certifications() map[string]string {
	out := make(map[string]string, len(r.certs))
	for code, name := range r.certs {
		out[code] = name
	}
	return out
}
