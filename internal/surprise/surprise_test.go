package surprise

import (
	"strings"
	"testing"

	"github.com/threadmind/engram/internal/model"
)

func batch(texts ...string) []model.Message {
	msgs := make([]model.Message, len(texts))
	for i, t := range texts {
		msgs[i] = model.Message{ID: string(rune('a' + i)), Role: model.RoleUser, Text: t}
	}
	return msgs
}

func TestScoreEmptyBatch(t *testing.T) {
	s := NewLexicalScorer()
	if got := s.Score(nil); got != 0 {
		t.Errorf("expected 0 for empty batch, got %g", got)
	}
}

func TestScoreRange(t *testing.T) {
	s := NewLexicalScorer()

	cases := [][]model.Message{
		batch("hello"),
		batch("ERROR!!! EVERYTHING IS BROKEN!!!", "```panic: nil deref```", "fix the exception?!"),
		batch(strings.Repeat("dense technical content ", 100)),
	}
	for i, msgs := range cases {
		got := s.Score(msgs)
		if got < 0 || got > 1 {
			t.Errorf("case %d: score %g outside [0,1]", i, got)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := NewLexicalScorer()
	msgs := batch("an error occurred!", "let me create a fix", "```go\ncode\n```")

	first := s.Score(msgs)
	for i := 0; i < 10; i++ {
		if got := s.Score(msgs); got != first {
			t.Fatalf("score not stable: %g != %g", got, first)
		}
	}
}

func TestErrorLanguageRaisesScore(t *testing.T) {
	s := NewLexicalScorer()

	calm := s.Score(batch("the weather is nice", "indeed it is", "quite pleasant"))
	alarmed := s.Score(batch("error in the build", "another error here", "error again"))
	if alarmed <= calm {
		t.Errorf("error language should raise score: calm=%g alarmed=%g", calm, alarmed)
	}
}

func TestCodeBlockRaisesScore(t *testing.T) {
	s := NewLexicalScorer()

	plain := s.Score(batch("talk about things"))
	code := s.Score(batch("talk about things ```x := 1```"))
	if code <= plain {
		t.Errorf("code block should raise score: plain=%g code=%g", plain, code)
	}
}

func TestIsAllUpper(t *testing.T) {
	cases := map[string]bool{
		"HELP ME NOW": true,
		"Help me":     false,
		"12345":       false,
		"":            false,
		"WHY?!":       true,
	}
	for text, want := range cases {
		if got := isAllUpper(text); got != want {
			t.Errorf("isAllUpper(%q) = %v, want %v", text, got, want)
		}
	}
}
