// Package engine orchestrates memory consolidation: it buffers incoming
// messages, turns buffered segments into engrams, ranks engrams for context
// injection and sweeps out aged, irrelevant ones.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/threadmind/engram/internal/buffer"
	"github.com/threadmind/engram/internal/config"
	"github.com/threadmind/engram/internal/decay"
	"github.com/threadmind/engram/internal/model"
	"github.com/threadmind/engram/internal/store"
	"github.com/threadmind/engram/internal/summarizer"
	"github.com/threadmind/engram/internal/surprise"
	"github.com/threadmind/engram/internal/topics"
)

// ErrNotEnoughMessages is returned when a consolidation is requested for a
// buffer below the minimum segment size. It is a refusal, not a failure.
var ErrNotEnoughMessages = errors.New("not enough buffered messages to consolidate")

// Engine is the memory consolidation service. Construct one per process
// with New and share it across request handlers; all methods are safe for
// concurrent use.
type Engine struct {
	cfg        config.Config
	store      store.Store
	buffers    buffer.Store
	scorer     surprise.Scorer
	tagger     topics.Tagger
	summarizer summarizer.Summarizer
	decay      decay.Model
	logger     *zap.Logger
}

// New wires an Engine from its collaborators. logger may not be nil; pass
// zap.NewNop() in tests.
func New(cfg config.Config, st store.Store, buffers buffer.Store, scorer surprise.Scorer,
	tagger topics.Tagger, summ summarizer.Summarizer, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:        cfg,
		store:      st,
		buffers:    buffers,
		scorer:     scorer,
		tagger:     tagger,
		summarizer: summ,
		decay: decay.Model{
			Rate:  cfg.DecayRate,
			Boost: cfg.ReinforcementBoost,
			Max:   cfg.MaxRelevance,
		},
		logger: logger,
	}
}

// OnMessage buffers msg for the thread and consolidates when a trigger
// fires: buffered tokens reaching the chunk size, or a sufficiently
// surprising batch of at least the minimum message count. Returns the new
// engram, or nil when nothing was consolidated (no trigger, lock
// contention, or oracle failure — the buffer is preserved in the latter
// case and retried on the next trigger).
func (e *Engine) OnMessage(ctx context.Context, threadID string, msg model.Message) (*model.Engram, error) {
	tokens := e.buffers.Append(threadID, msg)
	messages, _ := e.buffers.Snapshot(threadID)

	var trigger model.Trigger
	switch {
	case tokens >= e.cfg.ChunkSizeTokens:
		trigger = model.TriggerTokenThreshold
	case len(messages) >= e.cfg.MinMessagesForEngram &&
		e.scorer.Score(messages) >= e.cfg.SurpriseThreshold:
		trigger = model.TriggerSurprise
	default:
		return nil, nil
	}

	return e.consolidate(ctx, threadID, trigger)
}

// Buffer appends msg to the thread's buffer without evaluating triggers.
// Callers staging a transcript for ForceConsolidate use this.
func (e *Engine) Buffer(threadID string, msg model.Message) {
	e.buffers.Append(threadID, msg)
}

// ForceConsolidate consolidates whatever the thread has buffered,
// bypassing the size and surprise triggers.
func (e *Engine) ForceConsolidate(ctx context.Context, threadID string) (*model.Engram, error) {
	return e.consolidate(ctx, threadID, model.TriggerForced)
}

// consolidate runs the critical section: acquire the thread's lease,
// snapshot the buffer, score and summarize it, persist the engram, drop the
// consolidated prefix from the buffer, release the lease. The snapshot
// happens under the lease: a snapshot taken before it could go stale while
// waiting and re-consolidate a batch another caller already persisted and
// dropped. Messages appended while this runs are kept for the next engram.
func (e *Engine) consolidate(ctx context.Context, threadID string, trigger model.Trigger) (*model.Engram, error) {
	owner := uuid.NewString()
	if err := e.store.AcquireLock(ctx, threadID, owner, e.cfg.LockLease); err != nil {
		if errors.Is(err, store.ErrLockHeld) {
			e.logger.Debug("consolidation already in progress, skipping",
				zap.String("thread_id", threadID))
			return nil, nil
		}
		return nil, fmt.Errorf("acquire consolidation lock: %w", err)
	}
	defer func() {
		// Release must run even when the request context is already done.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := e.store.ReleaseLock(relCtx, threadID, owner); err != nil {
			e.logger.Warn("failed to release consolidation lock",
				zap.String("thread_id", threadID), zap.Error(err))
		}
	}()

	messages, tokens := e.buffers.Snapshot(threadID)
	if trigger == model.TriggerForced {
		if len(messages) == 0 {
			return nil, ErrNotEnoughMessages
		}
	} else if len(messages) < e.cfg.MinMessagesForEngram {
		// The trigger fired on a pre-lock view; a concurrent consolidation
		// has since consumed the batch. Nothing left to do.
		return nil, nil
	}

	surpriseScore := e.scorer.Score(messages)

	sctx, cancel := context.WithTimeout(ctx, e.cfg.SummarizerTimeout)
	defer cancel()
	summary, err := e.summarizer.Summarize(sctx, messages)
	if err != nil || strings.TrimSpace(summary) == "" {
		// Abandon: the buffer stays intact and the next trigger retries.
		e.logger.Warn("summarization failed, consolidation abandoned",
			zap.String("thread_id", threadID),
			zap.Int("buffered_messages", len(messages)),
			zap.Error(err))
		return nil, nil
	}
	summary = strings.TrimSpace(summary)

	engram := &model.Engram{
		ThreadID: threadID,
		Content:  summary,
		SourceRange: model.SourceRange{
			FirstMessageID: messages[0].ID,
			LastMessageID:  messages[len(messages)-1].ID,
			Count:          len(messages),
		},
		TokenCount:    tokens,
		BaseRelevance: 1.0,
		SurpriseScore: surpriseScore,
		Topics:        e.tagger.Tags(summary),
		MessageTypes:  countRoles(messages),
		Trigger:       trigger,
		HasCode:       anyContains(messages, "```"),
		HasError:      anyContainsFold(messages, "error"),
	}

	if err := e.store.Insert(ctx, engram); err != nil {
		return nil, fmt.Errorf("persist engram: %w", err)
	}

	e.buffers.Drop(threadID, len(messages))

	e.logger.Info("engram consolidated",
		zap.String("engram_id", engram.ID),
		zap.String("thread_id", threadID),
		zap.String("trigger", string(trigger)),
		zap.Int("messages", len(messages)),
		zap.Int("source_tokens", tokens),
		zap.Float64("surprise", surpriseScore))

	return engram, nil
}

func countRoles(messages []model.Message) map[string]int {
	counts := make(map[string]int, 4)
	for _, m := range messages {
		counts[string(m.Role)]++
	}
	return counts
}

func anyContains(messages []model.Message, sub string) bool {
	for _, m := range messages {
		if strings.Contains(m.Text, sub) {
			return true
		}
	}
	return false
}

func anyContainsFold(messages []model.Message, sub string) bool {
	for _, m := range messages {
		if strings.Contains(strings.ToLower(m.Text), sub) {
			return true
		}
	}
	return false
}
