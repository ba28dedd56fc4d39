package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/threadmind/engram/internal/decay"
	"github.com/threadmind/engram/internal/lexical"
	"github.com/threadmind/engram/internal/model"
)

// Retrieve returns the top engrams for context injection, ranked by the
// composite score configured in config.Config (decayed relevance, surprise,
// access frequency, recency, lexical similarity to query — weights sum
// to 1). limit <= 0 uses MaxEngramsInContext.
//
// Retrieval is not read-only: every returned engram gets its access count
// bumped and its base relevance reinforced, so repeated retrieval shifts
// future rankings. The reinforcement cap keeps the loop bounded.
func (e *Engine) Retrieve(ctx context.Context, threadID, query string, limit int) ([]model.Engram, error) {
	if limit <= 0 {
		limit = e.cfg.MaxEngramsInContext
	}

	engrams, err := e.store.ListActive(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("load engrams: %w", err)
	}
	if len(engrams) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	scores := make(map[string]float64, len(engrams))
	for i := range engrams {
		scores[engrams[i].ID] = e.compositeScore(&engrams[i], query, now)
	}

	// Deterministic order: score desc, then newer first, then id.
	sort.Slice(engrams, func(i, j int) bool {
		si, sj := scores[engrams[i].ID], scores[engrams[j].ID]
		if si != sj {
			return si > sj
		}
		if !engrams[i].CreatedAt.Equal(engrams[j].CreatedAt) {
			return engrams[i].CreatedAt.After(engrams[j].CreatedAt)
		}
		return engrams[i].ID > engrams[j].ID
	})

	if len(engrams) > limit {
		engrams = engrams[:limit]
	}

	for i := range engrams {
		reinforced := e.decay.Reinforce(engrams[i].BaseRelevance)
		if err := e.store.RecordAccess(ctx, engrams[i].ID, reinforced, now); err != nil {
			e.logger.Warn("failed to record engram access",
				zap.String("engram_id", engrams[i].ID), zap.Error(err))
			continue
		}
		engrams[i].AccessCount++
		engrams[i].BaseRelevance = reinforced
		engrams[i].LastAccessedAt = now
	}

	e.logger.Debug("engrams retrieved",
		zap.String("thread_id", threadID),
		zap.Int("returned", len(engrams)),
		zap.Bool("with_query", query != ""))

	return engrams, nil
}

// compositeScore blends the retrieval signals. Decayed relevance is
// normalized by the relevance cap so the weights operate on comparable 0-1
// ranges; access frequency saturates around twenty accesses.
func (e *Engine) compositeScore(engram *model.Engram, query string, now time.Time) float64 {
	relevance := e.decay.CurrentRelevance(engram.BaseRelevance, engram.CreatedAt, now) / e.cfg.MaxRelevance

	access := math.Log1p(float64(engram.AccessCount)) / 3
	if access > 1 {
		access = 1
	}

	recency := decay.RecencyScore(engram.CreatedAt, now)

	similarity := 0.0
	if strings.TrimSpace(query) != "" {
		similarity = lexical.Jaccard(engram.Content, query)
	}

	return e.cfg.WeightRelevance*relevance +
		e.cfg.WeightSurprise*engram.SurpriseScore +
		e.cfg.WeightAccess*access +
		e.cfg.WeightRecency*recency +
		e.cfg.WeightSimilarity*similarity
}

// RenderContext formats retrieved engrams as a markdown block for prompt
// assembly, oldest memories annotated with their age.
func (e *Engine) RenderContext(engrams []model.Engram) string {
	if len(engrams) == 0 {
		return ""
	}

	now := time.Now().UTC()
	var b strings.Builder
	b.WriteString("# Previous Context\n\n")

	for i, engram := range engrams {
		ageDays := int(now.Sub(engram.CreatedAt).Hours() / 24)
		fmt.Fprintf(&b, "## Memory %d (%d days ago)\n%s\n", i+1, ageDays, engram.Content)
		if engram.HasError {
			b.WriteString("*Note: This memory contains error handling context*\n")
		}
		if engram.HasCode {
			b.WriteString("*Note: This memory contains code examples*\n")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
