package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/threadmind/engram/internal/model"
)

// messageInput is one transcript line in the JSONL input format. Only text
// is required; id, role and created_at default sensibly.
type messageInput struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (in messageInput) toModel(defaultRole string) model.Message {
	m := model.Message{
		ID:        in.ID,
		Role:      model.Role(in.Role),
		Text:      in.Text,
		CreatedAt: in.CreatedAt,
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Role == "" {
		if defaultRole == "" {
			defaultRole = string(model.RoleUser)
		}
		m.Role = model.Role(defaultRole)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return m
}

// readMessages parses newline-delimited JSON messages. Blank lines are
// skipped; a non-JSON line is treated as bare message text with the
// default role.
func readMessages(r io.Reader, defaultRole string) ([]model.Message, error) {
	var messages []model.Message
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var in messageInput
		if strings.HasPrefix(line, "{") {
			if err := json.Unmarshal([]byte(line), &in); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		} else {
			in.Text = line
		}
		messages = append(messages, in.toModel(defaultRole))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return messages, nil
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
