// Package surprise estimates how important a batch of messages is.
//
// The score gates early consolidation and weights retrieval, so it has to be
// a stable, pure function of the message text. Tests elsewhere treat the
// formula as a black box behind the Scorer interface; only determinism and
// the [0,1] range are load-bearing.
package surprise

import (
	"strings"

	"github.com/threadmind/engram/internal/model"
)

// Scorer produces a 0-1 importance score for a batch of messages.
type Scorer interface {
	Score(messages []model.Message) float64
}

// LexicalScorer scores batches from lexical and structural signals: coarse
// topic diversity, exclamation and all-caps intensity, code blocks, error
// language and message length.
type LexicalScorer struct {
	// DenseLengthThreshold is the average message length (in bytes) above
	// which the batch counts as information-dense.
	DenseLengthThreshold int
}

// NewLexicalScorer returns a scorer with the default density threshold.
func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{DenseLengthThreshold: 500}
}

// Weights of the additive factors. The sum can exceed 1; the final score is
// clamped.
const (
	diversityWeight   = 0.3
	intensityWeight   = 0.2
	intensityCap      = 0.3
	codeBlockWeight   = 0.2
	errorWeight       = 0.2
	denseLengthWeight = 0.1
)

func (s *LexicalScorer) Score(messages []model.Message) float64 {
	if len(messages) == 0 {
		return 0
	}

	var score float64

	// Coarse topic categories detected by keyword membership, normalized by
	// batch size.
	categories := map[string]bool{}
	var hasCode, hasError bool
	var exclamations int
	var capsMessages int
	var totalLen int

	for _, msg := range messages {
		text := msg.Text
		lower := strings.ToLower(text)

		if strings.Contains(lower, "error") || strings.Contains(lower, "exception") {
			categories["error"] = true
		}
		if strings.Contains(lower, "implement") || strings.Contains(lower, "create") {
			categories["implementation"] = true
		}
		if strings.Contains(text, "?") {
			categories["question"] = true
		}
		if strings.Contains(text, "!") {
			categories["exclamation"] = true
		}

		if strings.Contains(text, "```") {
			hasCode = true
		}
		if strings.Contains(lower, "error") {
			hasError = true
		}

		exclamations += strings.Count(text, "!")
		if isAllUpper(text) {
			capsMessages++
		}
		totalLen += len(text)
	}

	n := float64(len(messages))

	diversity := float64(len(categories)) / n
	score += diversity * diversityWeight

	intensity := (float64(exclamations) + float64(capsMessages)) / n
	score += min(intensity*intensityWeight, intensityCap)

	if hasCode {
		score += codeBlockWeight
	}
	if hasError {
		score += errorWeight
	}

	if totalLen/len(messages) > s.DenseLengthThreshold {
		score += denseLengthWeight
	}

	return clamp01(score)
}

// isAllUpper reports whether text contains at least one letter and no
// lowercase letters.
func isAllUpper(text string) bool {
	hasLetter := false
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
