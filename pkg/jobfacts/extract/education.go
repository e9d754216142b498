package extract

import (
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/ingest"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/rules"
)

// Education tests every word token against every education rule. One token
// may yield several labels.
func Education(tokens []ingest.Token, rs *rules.Set) []string {
	labels := stringSet{}
	for _, tok := range tokens {
		if !tok.IsWord() {
			continue
		}
		for _, rule := range rs.Education {
			if rule.Pattern.MatchString(tok.Text) {
				labels.add(rule.Label)
			}
		}
	}
	return labels.sorted()
}
