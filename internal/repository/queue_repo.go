package repository

import (
	"context"

	"github.com/prompty/notifier/internal/domain"
)

// QueueRepository defines persistence operations on the notification_queue
// table. The pgx implementation is in pg_queue_repo.go; tests use a
// hand-written mock (mock_queue_repo.go).
type QueueRepository interface {
	// ClaimBatch atomically stamps up to limit unprocessed rows with the
	// worker ID and claim time, oldest first, and returns them. Rows already
	// claimed by another worker are skipped unless their claim is older than
	// the lease, so a crashed worker's rows become claimable again.
	ClaimBatch(ctx context.Context, workerID string, limit int) ([]*domain.QueueItem, error)

	// MarkProcessed transitions a row to its terminal state. errMsg is nil on
	// success; on failure it records why the row's notifications were dropped.
	MarkProcessed(ctx context.Context, id string, errMsg *string) error

	Stats(ctx context.Context) (*domain.QueueStats, error)
}
