// Package lexical provides keyword-overlap text similarity.
package lexical

import "strings"

// stopwords are excluded from token sets so similarity reflects content
// words rather than glue.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "from": true,
	"is": true, "was": true, "are": true, "were": true,
}

// Tokens returns the lowercased, stop-word-filtered word set of text.
func Tokens(text string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if !stopwords[w] {
			set[w] = true
		}
	}
	return set
}

// Jaccard returns the Jaccard similarity of the two texts' token sets.
// Either text being empty (after stop-word filtering) yields 0.
func Jaccard(a, b string) float64 {
	sa, sb := Tokens(a), Tokens(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}

	intersection := 0
	for w := range sa {
		if sb[w] {
			intersection++
		}
	}
	union := len(sa) + len(sb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
