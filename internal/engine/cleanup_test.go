package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/threadmind/engram/internal/model"
)

func TestCleanupDeletesOnlyOldAndIrrelevant(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(t, testConfig(), &fakeSummarizer{summary: "x"})
	now := time.Now().UTC()

	// Old and faded: 31 days at rate 0.95 leaves 0.05 * 0.204 ~ 0.01.
	faded := seedEngram(t, st, model.Engram{
		ID:            "faded",
		Content:       "long forgotten aside",
		BaseRelevance: 0.05,
		CreatedAt:     now.Add(-31 * 24 * time.Hour),
	})
	// Old but still relevant: 1.0 decays to ~0.2, above the floor.
	kept := seedEngram(t, st, model.Engram{
		ID:            "kept",
		Content:       "important architecture decision",
		BaseRelevance: 1.0,
		CreatedAt:     now.Add(-31 * 24 * time.Hour),
	})
	// Low relevance but young: age gate protects it.
	young := seedEngram(t, st, model.Engram{
		ID:            "young",
		Content:       "recent throwaway remark",
		BaseRelevance: 0.05,
		CreatedAt:     now.Add(-24 * time.Hour),
	})

	deleted, err := eng.Cleanup(ctx, 30, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	active, err := st.ListActive(ctx, "t1")
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, e := range active {
		ids[e.ID] = true
	}
	assert.False(t, ids[faded.ID])
	assert.True(t, ids[kept.ID])
	assert.True(t, ids[young.ID])
}

func TestCleanupIsIdempotent(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(t, testConfig(), &fakeSummarizer{summary: "x"})

	seedEngram(t, st, model.Engram{
		ID:            "faded",
		Content:       "stale",
		BaseRelevance: 0.05,
		CreatedAt:     time.Now().UTC().Add(-40 * 24 * time.Hour),
	})

	deleted, err := eng.Cleanup(ctx, 30, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	deleted, err = eng.Cleanup(ctx, 30, 0.1)
	require.NoError(t, err)
	assert.Zero(t, deleted, "a second sweep finds nothing new")
}

func TestCleanupUsesConfiguredDefaults(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(t, testConfig(), &fakeSummarizer{summary: "x"})

	seedEngram(t, st, model.Engram{
		ID:            "faded",
		Content:       "stale",
		BaseRelevance: 0.05,
		CreatedAt:     time.Now().UTC().Add(-40 * 24 * time.Hour),
	})

	// Zero arguments fall back to CleanupMaxAgeDays / CleanupMinRelevance.
	deleted, err := eng.Cleanup(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestSweeperRunsAndStops(t *testing.T) {
	eng, st := newTestEngine(t, testConfig(), &fakeSummarizer{summary: "x"})

	seedEngram(t, st, model.Engram{
		ID:            "faded",
		Content:       "stale",
		BaseRelevance: 0.05,
		CreatedAt:     time.Now().UTC().Add(-40 * 24 * time.Hour),
	})

	sw := NewSweeper(eng, 20*time.Millisecond, zap.NewNop())
	sw.Start()
	time.Sleep(80 * time.Millisecond)
	sw.Stop()

	active, err := st.ListActive(context.Background(), "t1")
	require.NoError(t, err)
	assert.Empty(t, active, "the sweeper deletes faded engrams in the background")
}
