package summarizer

import (
	"strings"
	"unicode/utf8"

	"github.com/threadmind/engram/internal/model"
)

const (
	// maxMessageChars truncates individual messages before submission so a
	// single giant message cannot blow the oracle's input window.
	maxMessageChars = 500

	// maxMessages caps how many trailing messages are submitted.
	maxMessages = 10
)

// BuildTranscript renders a message batch into the text submitted to the
// oracle: role-prefixed lines, per-message truncation, last maxMessages
// messages only.
func BuildTranscript(messages []model.Message) string {
	if len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}

	var lines []string
	for _, msg := range messages {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		if len(text) > maxMessageChars {
			// Back up to a rune boundary so the cut never leaves
			// invalid UTF-8.
			cut := maxMessageChars
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut] + "..."
		}
		lines = append(lines, strings.ToUpper(string(msg.Role))+": "+text)
	}
	return strings.Join(lines, "\n\n")
}
