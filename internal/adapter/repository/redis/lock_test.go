package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/parceldesk/ledger/internal/domain"
)

func TestAccountLocker_AcquireAndRelease(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	locker := NewAccountLocker(client, time.Minute)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "acc-1")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if _, err := locker.Acquire(ctx, "acc-1"); !errors.Is(err, domain.ErrRecalculationInProgress) {
		t.Fatalf("expected ErrRecalculationInProgress, got %v", err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	release2, err := locker.Acquire(ctx, "acc-1")
	if err != nil {
		t.Fatalf("re-acquire after release failed: %v", err)
	}
	_ = release2(ctx)
}

func TestAccountLocker_PerAccountIsolation(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	locker := NewAccountLocker(client, time.Minute)
	ctx := context.Background()

	release1, err := locker.Acquire(ctx, "acc-1")
	if err != nil {
		t.Fatalf("acquire acc-1 failed: %v", err)
	}
	defer release1(ctx)

	// A held lock on one account never blocks another.
	release2, err := locker.Acquire(ctx, "acc-2")
	if err != nil {
		t.Fatalf("acquire acc-2 failed: %v", err)
	}
	defer release2(ctx)
}

func TestAccountLocker_StaleReleaseIsNoop(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	locker := NewAccountLocker(client, time.Minute)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "acc-1")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	// Simulate TTL expiry followed by another holder taking the lock.
	mr.FastForward(2 * time.Minute)
	release2, err := locker.Acquire(ctx, "acc-1")
	if err != nil {
		t.Fatalf("acquire after expiry failed: %v", err)
	}
	defer release2(ctx)

	// The stale release must not free the new holder's lock.
	if err := release(ctx); err != nil {
		t.Fatalf("stale release errored: %v", err)
	}
	if _, err := locker.Acquire(ctx, "acc-1"); !errors.Is(err, domain.ErrRecalculationInProgress) {
		t.Fatalf("new holder's lock was released by a stale token")
	}
}
