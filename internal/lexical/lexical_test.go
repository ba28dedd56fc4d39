package lexical

import "testing"

func TestJaccardIdentical(t *testing.T) {
	if got := Jaccard("debug the parser", "debug the parser"); got != 1.0 {
		t.Errorf("identical texts: expected 1.0, got %g", got)
	}
}

func TestJaccardDisjoint(t *testing.T) {
	if got := Jaccard("apples bananas", "trains planes"); got != 0 {
		t.Errorf("disjoint texts: expected 0, got %g", got)
	}
}

func TestJaccardEmpty(t *testing.T) {
	if got := Jaccard("", "something"); got != 0 {
		t.Errorf("empty text: expected 0, got %g", got)
	}
	// Stopword-only text has an empty token set.
	if got := Jaccard("the and of", "the and of"); got != 0 {
		t.Errorf("stopword-only text: expected 0, got %g", got)
	}
}

func TestJaccardPartialOverlap(t *testing.T) {
	got := Jaccard("parser error stack", "parser error heap")
	// Intersection {parser, error} = 2, union 4.
	if got != 0.5 {
		t.Errorf("expected 0.5, got %g", got)
	}
}
