package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/ingest"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/refdata"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/rules"
)

// Place is a set of cities and states with canonical spelling.
type Place struct {
	Cities []string `json:"cities"`
	States []string `json:"states"`
}

// Empty reports whether neither a city nor a state was found.
func (p Place) Empty() bool {
	return len(p.Cities) == 0 && len(p.States) == 0
}

// Places scans tokens against the gazetteer. A city adds itself and its
// state; a state name adds the state alone.
func Places(tokens []ingest.Token, ref *refdata.Reference) Place {
	cities, states := stringSet{}, stringSet{}
	for _, tok := range tokens {
		if !tok.IsWord() {
			continue
		}
		if city, state, ok := ref.City(tok.Text); ok {
			cities.add(city)
			states.add(state)
			continue
		}
		if state, ok := ref.State(tok.Text); ok {
			states.add(state)
		}
	}
	return Place{Cities: cities.sorted(), States: states.sorted()}
}

// Location resolves the place of a posting from its normalized explicit
// location field, falling back to the body when the field leaves cities
// or states empty.
func Location(explicit, body []ingest.Token, ref *refdata.Reference) Place {
	primary := Places(explicit, ref)
	if len(primary.Cities) > 0 && len(primary.States) > 0 {
		return primary
	}
	return MergePlaces(primary, Places(body, ref))
}

// MergePlaces unions fallback into primary. Nothing in primary is ever
// dropped.
func MergePlaces(primary, fallback Place) Place {
	return Place{
		Cities: Union(primary.Cities, fallback.Cities),
		States: Union(primary.States, fallback.States),
	}
}

// abbreviationSplitRe keeps '.' inside fields so that "St." is not read as
// the state abbreviation "St".
var abbreviationSplitRe = regexp.MustCompile(`[\s,;/()]+`)

// ExpandStateAbbreviations replaces every standalone state abbreviation in
// an explicit location field with the full state name. One-letter
// abbreviations must match exactly; longer ones ignore case.
func ExpandStateAbbreviations(text string, rs *rules.Set) string {
	if len(rs.StateAbbreviations) == 0 {
		return text
	}
	fields := abbreviationSplitRe.Split(strings.TrimSpace(text), -1)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		if full, ok := stateAbbreviation(f, rs.StateAbbreviations); ok {
			f = full
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

func stateAbbreviation(field string, abbrevs map[string]string) (string, bool) {
	if full, ok := abbrevs[field]; ok {
		return full, true
	}
	if utf8.RuneCountInString(field) < 2 {
		return "", false
	}
	for abbr, full := range abbrevs {
		if strings.EqualFold(abbr, field) {
			return full, true
		}
	}
	return "", false
}
