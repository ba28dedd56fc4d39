package buffer

import (
	"testing"

	"github.com/threadmind/engram/internal/model"
)

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("empty text: expected 0 tokens, got %d", got)
	}
	// 10 words * 1.3 = 13
	if got := EstimateTokens("one two three four five six seven eight nine ten"); got != 13 {
		t.Errorf("expected 13 tokens, got %d", got)
	}
}

func TestAppendAndSnapshot(t *testing.T) {
	s := NewMemoryStore()

	s.Append("t1", model.Message{ID: "m1", Text: "hello world"})
	tokens := s.Append("t1", model.Message{ID: "m2", Text: "more words here"})
	if tokens <= 0 {
		t.Fatalf("expected positive token estimate, got %d", tokens)
	}

	msgs, snapTokens := s.Snapshot("t1")
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].ID != "m1" || msgs[1].ID != "m2" {
		t.Errorf("expected FIFO order, got %q then %q", msgs[0].ID, msgs[1].ID)
	}
	if snapTokens != tokens {
		t.Errorf("snapshot tokens %d != append tokens %d", snapTokens, tokens)
	}

	// Snapshot is a copy: mutating it must not affect the store.
	msgs[0].ID = "mutated"
	again, _ := s.Snapshot("t1")
	if again[0].ID != "m1" {
		t.Error("snapshot leaked internal state")
	}
}

func TestDropPreservesLaterMessages(t *testing.T) {
	s := NewMemoryStore()
	s.Append("t1", model.Message{ID: "m1", Text: "one two three"})
	s.Append("t1", model.Message{ID: "m2", Text: "four five six"})
	// Message arriving mid-consolidation belongs to the next engram.
	s.Append("t1", model.Message{ID: "m3", Text: "seven eight nine"})

	s.Drop("t1", 2)

	msgs, tokens := s.Snapshot("t1")
	if len(msgs) != 1 || msgs[0].ID != "m3" {
		t.Fatalf("expected only m3 to remain, got %v", msgs)
	}
	if tokens != EstimateTokens("seven eight nine") {
		t.Errorf("token estimate not rebased after drop: %d", tokens)
	}
}

func TestDropAllResetsTokens(t *testing.T) {
	s := NewMemoryStore()
	s.Append("t1", model.Message{ID: "m1", Text: "one two three"})
	s.Drop("t1", 5)

	msgs, tokens := s.Snapshot("t1")
	if msgs != nil || tokens != 0 {
		t.Errorf("expected empty buffer after full drop, got %d msgs, %d tokens", len(msgs), tokens)
	}
}

func TestSnapshotUnknownThread(t *testing.T) {
	s := NewMemoryStore()
	msgs, tokens := s.Snapshot("missing")
	if msgs != nil || tokens != 0 {
		t.Error("expected empty snapshot for unknown thread")
	}
}
