package analyser

import (
	"strings"

	"github.com/agext/levenshtein"

	"github.com/shivansh-labs/namegate/internal/model"
)

// similarityThreshold is the fuzzy-match ratio above which two names
// count as duplicates.
const similarityThreshold = 0.85

// SimplifyNames deduplicates names by fuzzy similarity, lowercased.
// Order of first occurrence is preserved.
func SimplifyNames(names []string) []string {
	var uniq []string
	for _, name := range names {
		key := strings.ToLower(name)
		dup := false
		for _, seen := range uniq {
			if levenshtein.Similarity(key, seen, nil) > similarityThreshold {
				dup = true
				break
			}
		}
		if !dup {
			uniq = append(uniq, key)
		}
	}
	return uniq
}

// FilterSuggestions drops recommended names that collapse onto one of
// the originally requested names after fuzzy deduplication. The portal
// would reject them for the same conflicts, so offering them back wastes
// the caller's round trip.
func FilterSuggestions(payloadNames []string, result *model.CheckResult) *model.CheckResult {
	original := SimplifyNames(payloadNames)
	filtered := make([]model.Suggestion, 0, len(result.RecommendedNames))
	for _, sugg := range result.RecommendedNames {
		key := strings.ToLower(sugg.Name)
		seen := false
		for _, o := range original {
			if key == o {
				seen = true
				break
			}
		}
		if !seen {
			filtered = append(filtered, sugg)
		}
	}
	result.RecommendedNames = filtered
	return result
}
