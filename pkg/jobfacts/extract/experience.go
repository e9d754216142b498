package extract

import (
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/ingest"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/rules"
)

// Experience collects the tokens within the configured radius around every
// experience indicator, bounds inclusive and clamped to the sequence.
func Experience(tokens []ingest.Token, rs *rules.Set) []string {
	keywords := stringSet{}
	if rs.Experience == nil {
		return keywords.sorted()
	}

	for i, tok := range tokens {
		if !tok.IsWord() || !rs.Experience.MatchString(tok.Text) {
			continue
		}
		start := max(i-rs.ExperienceRadius, 0)
		stop := min(i+rs.ExperienceRadius, len(tokens)-1)
		for _, w := range tokens[start : stop+1] {
			keywords.add(w.Text)
		}
	}
	return keywords.sorted()
}
