package topics

import (
	"reflect"
	"testing"
)

func TestTagsMatchesVocabulary(t *testing.T) {
	tagger := NewKeywordTagger()
	text := "We need to fix the database error before the deploy"

	got := tagger.Tags(text)
	want := []string{"database", "error", "fix", "deploy"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tags() = %v, want %v", got, want)
	}
}

func TestTagsDeterministic(t *testing.T) {
	tagger := NewKeywordTagger()
	text := "implement the api and debug the memory bug"

	first := tagger.Tags(text)
	for i := 0; i < 3; i++ {
		if again := tagger.Tags(text); !reflect.DeepEqual(again, first) {
			t.Fatalf("tags not deterministic: %v vs %v", again, first)
		}
	}
}

func TestTagsLimit(t *testing.T) {
	tagger := NewKeywordTagger()
	text := "api database function error implementation bug feature performance memory token create implement fix"

	got := tagger.Tags(text)
	if len(got) != tagger.MaxTags {
		t.Errorf("expected %d tags, got %d: %v", tagger.MaxTags, len(got), got)
	}
}

func TestTagsEmpty(t *testing.T) {
	tagger := NewKeywordTagger()
	if got := tagger.Tags("nothing relevant in this sentence"); len(got) != 0 {
		t.Errorf("expected no tags, got %v", got)
	}
}
