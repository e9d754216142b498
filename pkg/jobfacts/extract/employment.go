package extract

import (
	"strings"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/ingest"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/rules"
)

const (
	FullTime = "full-time"
	PartTime = "part-time"
)

// EmploymentTypes searches the joined word tokens with every employment
// rule and classifies "<number> <hours unit>" pairs by the full-time
// threshold.
func EmploymentTypes(tokens []ingest.Token, rs *rules.Set) []string {
	types := stringSet{}

	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.IsWord() {
			words = append(words, tok.Text)
		}
	}
	text := strings.Join(words, " ")
	for _, rule := range rs.Employment {
		if rule.Pattern.MatchString(text) {
			types.add(rule.Label)
		}
	}

	for i := 0; i+1 < len(tokens); i++ {
		hours, unit := tokens[i], tokens[i+1]
		if !hours.IsNumber() || !unit.IsWord() || !rs.IsHoursUnit(unit.Text) {
			continue
		}
		if hours.Value > rs.FullTimeAbove {
			types.add(FullTime)
		} else {
			types.add(PartTime)
		}
	}

	return types.sorted()
}
