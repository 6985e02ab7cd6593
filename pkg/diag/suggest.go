package diag

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/leapstack-labs/cosmosql/pkg/token"
)

// maxSuggestDistance is the largest edit distance still offered as a
// suggestion.
const maxSuggestDistance = 2

// SuggestKeyword returns the keyword closest to word, if one lies within a
// small edit distance. Exact keyword matches and very short words yield no
// suggestion.
func SuggestKeyword(word string) (string, bool) {
	if len(word) < 3 {
		return "", false
	}
	if _, ok := token.LookupKeyword(word); ok {
		return "", false
	}
	return suggestSimilar(strings.ToUpper(word), token.Keywords(), maxSuggestDistance)
}

// suggestSimilar finds the candidate with the smallest non-zero distance to
// input. Ties go to the earlier candidate.
func suggestSimilar(input string, candidates []string, maxDistance int) (string, bool) {
	best, bestDist := "", maxDistance+1
	for _, candidate := range candidates {
		dist := levenshtein.ComputeDistance(input, candidate)
		if dist > 0 && dist < bestDist {
			best, bestDist = candidate, dist
		}
	}
	return best, best != ""
}

// Notes returns supplementary hints for a diagnostic, such as a keyword
// suggestion when the offending text looks like a misspelled keyword.
func (d Diagnostic) Notes(src string) []string {
	if d.Code != IncorrectSyntax {
		return nil
	}
	if kw, ok := SuggestKeyword(d.Span.Text(src)); ok {
		return []string{"did you mean '" + kw + "'?"}
	}
	return nil
}
