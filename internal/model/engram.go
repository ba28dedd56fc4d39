// Package model defines the core memory data types.
package model

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is an immutable unit of conversation. Messages are owned by a
// thread and are never mutated after creation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Trigger records what caused an engram to be consolidated.
type Trigger string

const (
	TriggerTokenThreshold Trigger = "token_threshold"
	TriggerSurprise       Trigger = "surprise"
	TriggerForced         Trigger = "forced"
)

// SourceRange identifies the span of messages an engram was compressed from.
type SourceRange struct {
	FirstMessageID string `json:"first_message_id"`
	LastMessageID  string `json:"last_message_id"`
	Count          int    `json:"count"`
}

// Engram is a consolidated, scored summary of a contiguous conversation
// segment. Engrams are created only by the consolidation engine, mutated
// only through retrieval bookkeeping and the maintenance sweeper, and are
// soft-deleted rather than removed so that metrics history survives.
type Engram struct {
	ID            string      `json:"id"`
	ThreadID      string      `json:"thread_id"`
	Content       string      `json:"content"`
	SourceRange   SourceRange `json:"source_range"`
	TokenCount    int         `json:"token_count"`
	BaseRelevance float64     `json:"base_relevance"`
	SurpriseScore float64     `json:"surprise_score"`
	AccessCount   int         `json:"access_count"`
	Topics        []string    `json:"topics,omitempty"`

	// MessageTypes counts the source messages by role.
	MessageTypes map[string]int `json:"message_types,omitempty"`

	Trigger        Trigger    `json:"trigger"`
	HasCode        bool       `json:"has_code"`
	HasError       bool       `json:"has_error"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the engram has been soft-deleted.
func (e *Engram) Deleted() bool { return e.DeletedAt != nil }

// ValidTriggers are the allowed consolidation triggers.
var ValidTriggers = map[Trigger]bool{
	TriggerTokenThreshold: true,
	TriggerSurprise:       true,
	TriggerForced:         true,
}
