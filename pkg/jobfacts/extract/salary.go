package extract

import (
	"sort"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/ingest"
)

// Salary records every number that sits directly next to a currency
// sentinel, on either side. Candidates are not bounded or converted.
func Salary(tokens []ingest.Token) []float64 {
	seen := make(map[float64]struct{})
	for i := 0; i+1 < len(tokens); i++ {
		a, b := tokens[i], tokens[i+1]
		switch {
		case a.IsCurrency() && b.IsNumber():
			seen[b.Value] = struct{}{}
		case b.IsCurrency() && a.IsNumber():
			seen[a.Value] = struct{}{}
		}
	}

	out := make([]float64, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}
