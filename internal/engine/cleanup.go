package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cleanup soft-deletes engrams that are BOTH older than maxAgeDays AND
// below minRelevance after decay. A young low-relevance engram and an old
// still-relevant one are each preserved. Re-running on a cleaned population
// deletes nothing. Arguments <= 0 fall back to the configured defaults.
func (e *Engine) Cleanup(ctx context.Context, maxAgeDays int, minRelevance float64) (int, error) {
	if maxAgeDays <= 0 {
		maxAgeDays = e.cfg.CleanupMaxAgeDays
	}
	if minRelevance <= 0 {
		minRelevance = e.cfg.CleanupMinRelevance
	}

	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -maxAgeDays)

	old, err := e.store.ListOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list engrams for cleanup: %w", err)
	}

	var ids []string
	for i := range old {
		rel := e.decay.CurrentRelevance(old[i].BaseRelevance, old[i].CreatedAt, now)
		if rel < minRelevance {
			ids = append(ids, old[i].ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := e.store.SoftDelete(ctx, ids, now)
	if err != nil {
		return 0, fmt.Errorf("sweep engrams: %w", err)
	}

	e.logger.Info("old engrams swept",
		zap.Int("deleted", n),
		zap.Int("max_age_days", maxAgeDays),
		zap.Float64("min_relevance", minRelevance))

	return n, nil
}

// Sweeper periodically runs Cleanup in the background.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	logger   *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewSweeper creates a sweeper that cleans with the engine's configured
// thresholds every interval.
func NewSweeper(engine *Engine, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		engine:   engine,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the background worker.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("maintenance sweeper started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				if _, err := s.engine.Cleanup(ctx, 0, 0); err != nil {
					s.logger.Error("sweep failed", zap.Error(err))
				}
				cancel()
			case <-s.stopCh:
				s.logger.Info("maintenance sweeper stopped")
				return
			}
		}
	}()
}

// Stop halts the worker and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}
