package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/threadmind/engram/internal/metrics"
)

// MetricsSnapshot computes read-only diagnostics over the thread's full
// engram population, soft-deleted units included. It never mutates state.
func (e *Engine) MetricsSnapshot(ctx context.Context, threadID string) (*metrics.Snapshot, error) {
	engrams, err := e.store.ExportAll(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("load engrams for metrics: %w", err)
	}
	return metrics.Compute(threadID, engrams, e.decay, time.Now().UTC()), nil
}
