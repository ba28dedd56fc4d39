// Package buffer accumulates recent messages per thread until the engine
// decides to consolidate them.
//
// The store is an interface so that a multi-instance deployment can later
// back it with a shared store without touching the engine.
package buffer

import (
	"strings"
	"sync"

	"github.com/threadmind/engram/internal/model"
)

// EstimateTokens returns a rough token count for text: word count scaled by
// 1.3 to account for sub-word tokenization.
func EstimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 1.3)
}

// Store holds per-thread message buffers. Append and Snapshot may be called
// concurrently with a consolidation in flight; messages appended while a
// snapshot is being consolidated are preserved for the next engram.
type Store interface {
	// Append adds a message to the thread's buffer and returns the updated
	// buffered token estimate.
	Append(threadID string, msg model.Message) int

	// Snapshot returns a copy of the thread's buffered messages in FIFO
	// order along with the token estimate they cover.
	Snapshot(threadID string) ([]model.Message, int)

	// Drop removes the first n messages from the thread's buffer. Called
	// after those messages have been consolidated.
	Drop(threadID string, n int)
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu      sync.Mutex
	threads map[string]*threadBuffer
}

type threadBuffer struct {
	messages []model.Message
	tokens   int
}

// NewMemoryStore returns an empty in-process buffer store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{threads: make(map[string]*threadBuffer)}
}

func (s *MemoryStore) Append(threadID string, msg model.Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	tb := s.threads[threadID]
	if tb == nil {
		tb = &threadBuffer{}
		s.threads[threadID] = tb
	}
	tb.messages = append(tb.messages, msg)
	tb.tokens += EstimateTokens(msg.Text)
	return tb.tokens
}

func (s *MemoryStore) Snapshot(threadID string) ([]model.Message, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tb := s.threads[threadID]
	if tb == nil || len(tb.messages) == 0 {
		return nil, 0
	}
	out := make([]model.Message, len(tb.messages))
	copy(out, tb.messages)
	return out, tb.tokens
}

func (s *MemoryStore) Drop(threadID string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tb := s.threads[threadID]
	if tb == nil || n <= 0 {
		return
	}
	if n >= len(tb.messages) {
		tb.messages = nil
		tb.tokens = 0
		return
	}
	dropped := tb.messages[:n]
	tb.messages = append([]model.Message(nil), tb.messages[n:]...)
	for _, m := range dropped {
		tb.tokens -= EstimateTokens(m.Text)
	}
	if tb.tokens < 0 {
		tb.tokens = 0
	}
}
