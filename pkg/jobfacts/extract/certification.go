package extract

import (
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/ingest"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/refdata"
)

// Certifications returns the lowercased certification codes present in
// tokens. Multi-word codes are found only once the normalizer has merged
// them into a single token.
func Certifications(tokens []ingest.Token, ref *refdata.Reference) []string {
	found := stringSet{}
	for _, tok := range tokens {
		if !tok.IsWord() {
			continue
		}
		if _, ok := ref.Certification(tok.Text); ok {
			found.add(tok.Text)
		}
	}
	return found.sorted()
}
