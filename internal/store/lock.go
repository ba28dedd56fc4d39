package store

import (
	"context"
	"fmt"
	"time"
)

// AcquireLock takes the per-thread consolidation lease with a single
// conditional upsert: the insert wins outright when no row exists, and the
// conflict branch steals the row only when the previous lease has expired.
// A live lease owned by somebody else changes nothing, which surfaces as
// zero affected rows and maps to ErrLockHeld. There is no blocking wait;
// contention means a consolidation is already in flight and the caller
// should skip.
func (s *SQLiteStore) AcquireLock(ctx context.Context, threadID, owner string, lease time.Duration) error {
	now := time.Now().UTC()
	expires := now.Add(lease)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO consolidation_locks (thread_id, owner, acquired_at, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(thread_id) DO UPDATE SET
		   owner = excluded.owner,
		   acquired_at = excluded.acquired_at,
		   expires_at = excluded.expires_at
		 WHERE consolidation_locks.expires_at <= excluded.acquired_at`,
		threadID, owner,
		now.Format(timeFormat), expires.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if n == 0 {
		return ErrLockHeld
	}
	return nil
}

// ReleaseLock drops the lease if owner still holds it. Releasing a lease
// that expired and was taken over by someone else is a no-op.
func (s *SQLiteStore) ReleaseLock(ctx context.Context, threadID, owner string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM consolidation_locks WHERE thread_id = ? AND owner = ?`,
		threadID, owner)
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
