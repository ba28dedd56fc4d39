// Package topics extracts keyword tags from summary text.
package topics

import "strings"

// Tagger extracts a small set of topic tags from text. It is an interface so
// the keyword heuristic can later be swapped for an embedding-based
// classifier without touching the engine.
type Tagger interface {
	Tags(text string) []string
}

// KeywordTagger tags text by keyword membership against fixed vocabularies.
type KeywordTagger struct {
	// MaxTags bounds the returned set.
	MaxTags int
}

// NewKeywordTagger returns a tagger limited to 5 tags.
func NewKeywordTagger() *KeywordTagger {
	return &KeywordTagger{MaxTags: 5}
}

var techTerms = []string{
	"api", "database", "function", "error", "implementation",
	"bug", "feature", "performance", "memory", "token",
}

var actionWords = []string{
	"create", "implement", "fix", "debug", "optimize",
	"design", "build", "deploy",
}

// Tags returns up to MaxTags keywords present in text, technical terms
// first. Order is fixed by the vocabulary, so output is deterministic.
func (t *KeywordTagger) Tags(text string) []string {
	lower := strings.ToLower(text)

	var tags []string
	for _, vocab := range [][]string{techTerms, actionWords} {
		for _, term := range vocab {
			if len(tags) >= t.MaxTags {
				return tags
			}
			if strings.Contains(lower, term) {
				tags = append(tags, term)
			}
		}
	}
	return tags
}
