package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAcquireLockContention(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.AcquireLock(ctx, "t1", "owner-a", time.Minute); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	err := s.AcquireLock(ctx, "t1", "owner-b", time.Minute)
	if !errors.Is(err, ErrLockHeld) {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}

	// Other threads are unaffected.
	if err := s.AcquireLock(ctx, "t2", "owner-b", time.Minute); err != nil {
		t.Errorf("lock for another thread should succeed: %v", err)
	}
}

func TestReleaseLockAllowsReacquire(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AcquireLock(ctx, "t1", "owner-a", time.Minute)
	if err := s.ReleaseLock(ctx, "t1", "owner-a"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := s.AcquireLock(ctx, "t1", "owner-b", time.Minute); err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
}

func TestReleaseLockWrongOwnerKeepsLease(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AcquireLock(ctx, "t1", "owner-a", time.Minute)
	if err := s.ReleaseLock(ctx, "t1", "owner-b"); err != nil {
		t.Fatalf("release by non-owner should be a no-op, got %v", err)
	}

	err := s.AcquireLock(ctx, "t1", "owner-b", time.Minute)
	if !errors.Is(err, ErrLockHeld) {
		t.Fatal("lease should survive a release attempt by a non-owner")
	}
}

func TestExpiredLeaseIsStolen(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// A crashed holder leaves an expired lease behind; the next acquirer
	// takes it over instead of waiting forever.
	if err := s.AcquireLock(ctx, "t1", "owner-a", 10*time.Millisecond); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	time.Sleep(25 * time.Millisecond)

	if err := s.AcquireLock(ctx, "t1", "owner-b", time.Minute); err != nil {
		t.Fatalf("expected to steal expired lease, got %v", err)
	}
}
