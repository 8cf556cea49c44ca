package source

import "strings"

// Relevance is the shared text-match heuristic for adapters that cannot
// judge keyword relevance themselves. It scores 0..1: full phrase hit
// beats all terms present beats a partial term hit.
func Relevance(query string, fields ...string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	text := strings.ToLower(strings.Join(fields, " "))
	if text == "" {
		return 0
	}

	if strings.Contains(text, q) {
		return 1
	}

	terms := strings.Fields(q)
	if len(terms) == 0 {
		return 0
	}
	hits := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	if hits == len(terms) {
		return 0.8
	}
	return 0.5 * float64(hits) / float64(len(terms))
}
