package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/prompty/notifier/internal/domain"
	"github.com/prompty/notifier/internal/repository"
)

func TestDeviceTokenRepository_DeactivateIsIdempotent(t *testing.T) {
	repo := repository.NewMockDeviceTokenRepository()
	ctx := context.Background()

	if err := repo.Register(ctx, "tok-1", "U"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.Deactivate(ctx, "tok-1"); err != nil {
		t.Fatalf("first deactivate: %v", err)
	}
	if err := repo.Deactivate(ctx, "tok-1"); err != nil {
		t.Fatalf("second deactivate must succeed: %v", err)
	}
	if tok := repo.Get("tok-1"); tok == nil || tok.IsActive {
		t.Fatal("expected token to stay inactive")
	}

	// Deactivating a token that was never registered is also a no-op.
	if err := repo.Deactivate(ctx, "tok-unknown"); err != nil {
		t.Fatalf("deactivate of unknown token must succeed: %v", err)
	}
}

func TestQueueRepository_ExpiredClaimIsReclaimed(t *testing.T) {
	repo := repository.NewMockQueueRepository()
	repo.ClaimLease = 5 * time.Minute
	ctx := context.Background()

	stale := time.Now().UTC().Add(-10 * time.Minute)
	repo.Add(&domain.QueueItem{
		ID:        "q1",
		TableName: domain.TableFollows,
		ClaimedAt: &stale,
		WorkerID:  strptr("worker-crashed"),
		CreatedAt: stale,
	})

	items, err := repo.ClaimBatch(ctx, "worker-new", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "q1" {
		t.Fatalf("expected the stale-claimed row to be reclaimed, got %d items", len(items))
	}
	if got := repo.Get("q1"); got.WorkerID == nil || *got.WorkerID != "worker-new" {
		t.Fatalf("expected ownership to move to worker-new, got %+v", got.WorkerID)
	}
}

func TestQueueRepository_FreshClaimIsNotStolen(t *testing.T) {
	repo := repository.NewMockQueueRepository()
	repo.ClaimLease = 5 * time.Minute
	ctx := context.Background()

	recent := time.Now().UTC().Add(-time.Minute)
	repo.Add(&domain.QueueItem{
		ID:        "q1",
		TableName: domain.TableFollows,
		ClaimedAt: &recent,
		WorkerID:  strptr("worker-busy"),
		CreatedAt: recent,
	})

	items, err := repo.ClaimBatch(ctx, "worker-new", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("a claim inside its lease must not be stolen, got %d items", len(items))
	}
	if got := repo.Get("q1"); *got.WorkerID != "worker-busy" {
		t.Fatalf("expected ownership to stay with worker-busy, got %q", *got.WorkerID)
	}
}

func strptr(s string) *string { return &s }
