package summarizer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/threadmind/engram/internal/model"
)

func TestBuildTranscriptTruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("x", 2000)
	got := BuildTranscript([]model.Message{
		{Role: model.RoleUser, Text: long},
	})

	if len(got) > maxMessageChars+len("USER: ")+len("...") {
		t.Errorf("message not truncated: %d chars", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated message should end with ellipsis")
	}
}

func TestBuildTranscriptTruncatesOnRuneBoundary(t *testing.T) {
	// 3-byte runes whose boundaries never align with the byte cut point.
	long := strings.Repeat("日", 400)
	got := BuildTranscript([]model.Message{
		{Role: model.RoleUser, Text: long},
	})

	if !utf8.ValidString(got) {
		t.Error("truncation produced invalid UTF-8")
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated message should end with ellipsis")
	}
}

func TestBuildTranscriptCapsMessageCount(t *testing.T) {
	var msgs []model.Message
	for i := 0; i < 25; i++ {
		msgs = append(msgs, model.Message{Role: model.RoleUser, Text: "m"})
	}
	got := BuildTranscript(msgs)

	if n := strings.Count(got, "USER:"); n != maxMessages {
		t.Errorf("expected %d messages in transcript, got %d", maxMessages, n)
	}
}

func TestBuildTranscriptSkipsEmpty(t *testing.T) {
	got := BuildTranscript([]model.Message{
		{Role: model.RoleUser, Text: "  "},
		{Role: model.RoleAssistant, Text: "hello"},
	})
	if got != "ASSISTANT: hello" {
		t.Errorf("unexpected transcript: %q", got)
	}
}
