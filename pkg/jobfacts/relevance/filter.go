package relevance

import (
	"strings"
	"unicode"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/rules"
)

// Filter decides from a job title alone whether a posting is in-domain.
// It is immutable and safe for concurrent use.
type Filter struct {
	groups []group
	anyOf  [][]string
}

type group struct {
	name  string
	words map[string]struct{}
	stems []string
}

// New creates a filter from the relevance section of a rule set.
func New(r rules.Relevance) *Filter {
	f := &Filter{
		groups: make([]group, 0, len(r.Groups)),
		anyOf:  r.AnyOf,
	}
	for _, g := range r.Groups {
		words := make(map[string]struct{}, len(g.Words))
		for _, w := range g.Words {
			words[strings.ToLower(w)] = struct{}{}
		}
		stems := make([]string, len(g.Stems))
		for i, s := range g.Stems {
			stems[i] = strings.ToLower(s)
		}
		f.groups = append(f.groups, group{name: g.Name, words: words, stems: stems})
	}
	return f
}

// Groups returns the names of the keyword groups present in title, in rule
// order.
func (f *Filter) Groups(title string) []string {
	lowerTitle := strings.ToLower(title)
	wordSet := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(lowerTitle, isSeparator) {
		wordSet[w] = struct{}{}
	}

	matched := make([]string, 0, len(f.groups))
	for _, g := range f.groups {
		if g.matches(lowerTitle, wordSet) {
			matched = append(matched, g.name)
		}
	}
	return matched
}

// Relevant reports whether any configured conjunction of groups holds for
// title.
func (f *Filter) Relevant(title string) bool {
	present := make(map[string]struct{})
	for _, name := range f.Groups(title) {
		present[name] = struct{}{}
	}

	for _, conj := range f.anyOf {
		if len(conj) == 0 {
			continue
		}
		all := true
		for _, name := range conj {
			if _, ok := present[name]; !ok {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func (g group) matches(title string, words map[string]struct{}) bool {
	for w := range g.words {
		if _, ok := words[w]; ok {
			return true
		}
	}
	for _, s := range g.stems {
		if strings.Contains(title, s) {
			return true
		}
	}
	return false
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
