// Package decay implements time-based relevance decay and usage-based
// reinforcement for engrams.
//
// Decay is computed at read time from the stored base relevance, so reading
// never destroys information; reinforcement raises the stored base and is
// capped so the retrieval feedback loop stays bounded.
package decay

import (
	"math"
	"time"
)

// Model holds the decay and reinforcement parameters.
type Model struct {
	// Rate is the per-day multiplicative decay, e.g. 0.95.
	Rate float64

	// Boost is added to base relevance on each retrieval.
	Boost float64

	// Max caps the reinforced base relevance.
	Max float64
}

// CurrentRelevance returns the engram's effective relevance at now:
// base * Rate^ageDays. Negative ages (clock skew) count as zero age.
func (m Model) CurrentRelevance(base float64, createdAt, now time.Time) float64 {
	age := ageDays(createdAt, now)
	rel := base * math.Pow(m.Rate, age)
	if rel < 0 {
		return 0
	}
	return rel
}

// Reinforce returns the boosted base relevance, capped at Max.
func (m Model) Reinforce(base float64) float64 {
	boosted := base + m.Boost
	if boosted > m.Max {
		return m.Max
	}
	return boosted
}

// recencyHalfLifeDays is the half-life used for the retrieval recency
// signal.
const recencyHalfLifeDays = 7.0

// RecencyScore returns a 0-1 freshness signal with a 7-day half-life.
func RecencyScore(createdAt, now time.Time) float64 {
	age := ageDays(createdAt, now)
	return math.Exp(-math.Ln2 * age / recencyHalfLifeDays)
}

func ageDays(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt).Hours() / 24
	if age < 0 {
		return 0
	}
	return age
}
