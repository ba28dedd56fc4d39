// Package store provides the engram storage interface and SQLite
// implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/threadmind/engram/internal/model"
)

// ErrLockHeld is returned by AcquireLock when another consolidation is in
// flight for the thread. It signals "skip", not a failure.
var ErrLockHeld = errors.New("consolidation lock held")

// Store defines the persistence operations the engine depends on. Per-row
// atomicity is assumed; no multi-row transactional guarantee is.
type Store interface {
	// Insert persists a new engram. The engram's ID is assigned by the
	// store if empty.
	Insert(ctx context.Context, e *model.Engram) error

	// ListActive returns all non-deleted engrams for a thread in a single
	// snapshot read, newest first.
	ListActive(ctx context.Context, threadID string) ([]model.Engram, error)

	// ListOlderThan returns all non-deleted engrams, across threads,
	// created before cutoff. Used by the maintenance sweeper.
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]model.Engram, error)

	// RecordAccess applies retrieval bookkeeping to one engram: increments
	// its access count, stores the reinforced base relevance and stamps
	// last_accessed_at.
	RecordAccess(ctx context.Context, id string, baseRelevance float64, accessedAt time.Time) error

	// SoftDelete marks the given engrams deleted. Returns how many rows
	// changed; already-deleted engrams are not re-counted.
	SoftDelete(ctx context.Context, ids []string, deletedAt time.Time) (int, error)

	// ExportAll returns every engram for a thread (all threads when
	// threadID is empty), including soft-deleted ones, oldest first.
	ExportAll(ctx context.Context, threadID string) ([]model.Engram, error)

	// AcquireLock takes the thread's consolidation lease for the given
	// owner. Returns ErrLockHeld without blocking when a live lease exists.
	AcquireLock(ctx context.Context, threadID, owner string, lease time.Duration) error

	// ReleaseLock drops the lease if still owned by owner.
	ReleaseLock(ctx context.Context, threadID, owner string) error

	// Close closes the store.
	Close() error
}
