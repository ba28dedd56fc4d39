package decay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testModel = Model{Rate: 0.95, Boost: 0.2, Max: 5.0}

func TestCurrentRelevanceMonotonic(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	prev := testModel.CurrentRelevance(1.0, created, created)
	for days := 1; days <= 60; days++ {
		now := created.AddDate(0, 0, days)
		cur := testModel.CurrentRelevance(1.0, created, now)
		assert.LessOrEqual(t, cur, prev, "relevance must not increase with age (day %d)", days)
		assert.GreaterOrEqual(t, cur, 0.0)
		prev = cur
	}
}

func TestCurrentRelevanceFreshEngram(t *testing.T) {
	now := time.Now()
	got := testModel.CurrentRelevance(1.0, now, now)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestCurrentRelevanceClockSkew(t *testing.T) {
	now := time.Now()
	future := now.Add(48 * time.Hour)
	// Created "in the future": treat as zero age, no amplification.
	got := testModel.CurrentRelevance(1.0, future, now)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestReinforceBounded(t *testing.T) {
	base := 1.0
	for i := 0; i < 100; i++ {
		base = testModel.Reinforce(base)
	}
	assert.Equal(t, testModel.Max, base, "repeated reinforcement must saturate at the cap")
}

func TestRecencyScoreHalfLife(t *testing.T) {
	now := time.Now()

	fresh := RecencyScore(now, now)
	assert.InDelta(t, 1.0, fresh, 1e-9)

	weekOld := RecencyScore(now.AddDate(0, 0, -7), now)
	assert.InDelta(t, 0.5, weekOld, 1e-9, "7 days is one half-life")

	older := RecencyScore(now.AddDate(0, 0, -30), now)
	assert.Less(t, older, weekOld)
	assert.Greater(t, older, 0.0)
}
