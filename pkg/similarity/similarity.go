// Package similarity implements the approximate name matching used by the
// blind-create duplicate scan.
package similarity

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultThreshold is the fallback match threshold; deployments override it
// via SIMILARITY_THRESHOLD.
const DefaultThreshold = 0.75

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Score returns 1 - levenshtein(a, b)/max(len(a), len(b)) over the
// normalized inputs. Two empty strings score 1.
func Score(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1
	}

	distance := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(distance)/float64(maxLen)
}

// Similar reports whether the two names are close enough to be flagged as
// likely duplicates.
func Similar(a, b string, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Score(a, b) >= threshold
}
