// Package metrics derives read-only diagnostics from an engram population.
//
// Every statistic is a pure function of the engrams passed in, so each is
// independently computable and testable. Soft-deleted engrams are included:
// they are kept around precisely so that history-wide metrics stay honest.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/threadmind/engram/internal/buffer"
	"github.com/threadmind/engram/internal/decay"
	"github.com/threadmind/engram/internal/lexical"
	"github.com/threadmind/engram/internal/model"
)

// Snapshot is a point-in-time diagnostic view of a thread's memory.
type Snapshot struct {
	ThreadID     string  `json:"thread_id"`
	EngramCount  int     `json:"engram_count"`
	ActiveCount  int     `json:"active_count"`
	AvgRelevance float64 `json:"avg_relevance"`
	AvgSurprise  float64 `json:"avg_surprise"`
	WithCode     int     `json:"with_code"`
	WithError    int     `json:"with_error"`

	// MessageTypes sums the per-role source message counts across the
	// population.
	MessageTypes map[string]int `json:"message_types,omitempty"`

	// CompressionRatio is source tokens over estimated summary tokens.
	// Zero when nothing has been consolidated.
	CompressionRatio float64 `json:"compression_ratio"`

	// TopicDiversity is the normalized Shannon entropy of the topic tag
	// multiset, in [0,1]. Zero for empty or single-topic populations.
	TopicDiversity float64 `json:"topic_diversity"`

	// Coherence is the mean Jaccard similarity between consecutive
	// summaries. A population with fewer than two engrams is vacuously
	// coherent and reports 1.
	Coherence float64 `json:"coherence"`

	// ForgettingCurveR2 is the fit of (age, decayed relevance) pairs
	// against the exponential decay model. Undefined (null) below five
	// data points or when relevance has no variance.
	ForgettingCurveR2 *float64 `json:"forgetting_curve_r2"`
}

// Compute derives a snapshot from the engram population at time now.
func Compute(threadID string, engrams []model.Engram, dm decay.Model, now time.Time) *Snapshot {
	snap := &Snapshot{
		ThreadID:    threadID,
		EngramCount: len(engrams),
		Coherence:   1,
	}
	if len(engrams) == 0 {
		return snap
	}

	var relSum, surpriseSum float64
	for i := range engrams {
		if !engrams[i].Deleted() {
			snap.ActiveCount++
		}
		if engrams[i].HasCode {
			snap.WithCode++
		}
		if engrams[i].HasError {
			snap.WithError++
		}
		for role, n := range engrams[i].MessageTypes {
			if snap.MessageTypes == nil {
				snap.MessageTypes = make(map[string]int, 4)
			}
			snap.MessageTypes[role] += n
		}
		relSum += engrams[i].BaseRelevance
		surpriseSum += engrams[i].SurpriseScore
	}
	snap.AvgRelevance = relSum / float64(len(engrams))
	snap.AvgSurprise = surpriseSum / float64(len(engrams))

	snap.CompressionRatio = compressionRatio(engrams)
	snap.TopicDiversity = topicDiversity(engrams)
	snap.Coherence = coherence(engrams)
	snap.ForgettingCurveR2 = forgettingCurveFit(engrams, dm, now)

	return snap
}

// compressionRatio compares the source segment tokens against the token
// estimate of the summaries they were compressed into.
func compressionRatio(engrams []model.Engram) float64 {
	var source, summary int
	for i := range engrams {
		source += engrams[i].TokenCount
		summary += buffer.EstimateTokens(engrams[i].Content)
	}
	if summary == 0 {
		return 0
	}
	return float64(source) / float64(summary)
}

// topicDiversity is the Shannon entropy of the topic tag multiset,
// normalized by the maximum entropy for the observed number of distinct
// tags.
func topicDiversity(engrams []model.Engram) float64 {
	counts := map[string]int{}
	total := 0
	for i := range engrams {
		for _, tag := range engrams[i].Topics {
			counts[tag]++
			total++
		}
	}
	if len(counts) <= 1 || total == 0 {
		return 0
	}

	entropy := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy / math.Log2(float64(len(counts)))
}

// coherence is the mean pairwise Jaccard similarity between the contents of
// consecutive engrams, ordered by creation time.
func coherence(engrams []model.Engram) float64 {
	if len(engrams) < 2 {
		return 1
	}

	ordered := make([]model.Engram, len(engrams))
	copy(ordered, engrams)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	var sum float64
	for i := 0; i < len(ordered)-1; i++ {
		sum += lexical.Jaccard(ordered[i].Content, ordered[i+1].Content)
	}
	return sum / float64(len(ordered)-1)
}

// forgettingCurveFit regresses ln(currentRelevance) against age in days and
// returns the R-squared of the fit. The exponential decay model is linear
// in log space, so a population decaying as configured fits with R-squared
// near 1. Needs at least five engrams with positive relevance.
func forgettingCurveFit(engrams []model.Engram, dm decay.Model, now time.Time) *float64 {
	var xs, ys []float64
	for i := range engrams {
		rel := dm.CurrentRelevance(engrams[i].BaseRelevance, engrams[i].CreatedAt, now)
		if rel <= 0 {
			continue
		}
		age := now.Sub(engrams[i].CreatedAt).Hours() / 24
		if age < 0 {
			age = 0
		}
		xs = append(xs, age)
		ys = append(ys, math.Log(rel))
	}
	if len(xs) < 5 {
		return nil
	}

	n := float64(len(xs))
	var sumX, sumY, sumXX, sumXY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXX += xs[i] * xs[i]
		sumXY += xs[i] * ys[i]
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return nil // all the same age, slope undefined
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for i := range xs {
		pred := slope*xs[i] + intercept
		ssRes += (ys[i] - pred) * (ys[i] - pred)
		ssTot += (ys[i] - meanY) * (ys[i] - meanY)
	}
	if ssTot == 0 {
		return nil // no variance to explain
	}

	r2 := 1 - ssRes/ssTot
	return &r2
}
