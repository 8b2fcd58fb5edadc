package catalog

import (
	"creditcounter/internal/syllabus"
	"creditcounter/lib/textutil"
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultSearchThreshold is the Jaro-Winkler similarity above which a name counts as a
// fuzzy match.
const DefaultSearchThreshold = 0.85

type SearchResult struct {
	Record syllabus.SubjectRecord
	// Score is 1 for substring matches, the Jaro-Winkler similarity otherwise.
	Score float64
}

// Search finds records whose name contains the query, or is similar enough to it.
// Results are ordered by score, ties keep their original order.
func Search(records []syllabus.SubjectRecord, query string, threshold float64) []SearchResult {
	normalizedQuery := textutil.NormalizeName(query)
	if normalizedQuery == "" {
		return nil
	}
	if threshold <= 0 {
		threshold = DefaultSearchThreshold
	}

	var results []SearchResult
	for _, record := range records {
		name := textutil.NormalizeName(record.Name)
		if strings.Contains(name, normalizedQuery) {
			results = append(results, SearchResult{Record: record, Score: 1})
			continue
		}
		score := matchr.JaroWinkler(name, normalizedQuery, false)
		if score >= threshold {
			results = append(results, SearchResult{Record: record, Score: score})
		}
	}

	slices.SortStableFunc(results, func(a, b SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return results
}
