package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prompty/notifier/internal/domain"
)

type pgQueueRepository struct {
	pool  *pgxpool.Pool
	lease time.Duration
}

// NewPgQueueRepository returns a QueueRepository backed by PostgreSQL.
// lease is how long a claim holds before another worker may steal the row.
func NewPgQueueRepository(pool *pgxpool.Pool, lease time.Duration) QueueRepository {
	return &pgQueueRepository{pool: pool, lease: lease}
}

func (r *pgQueueRepository) ClaimBatch(ctx context.Context, workerID string, limit int) ([]*domain.QueueItem, error) {
	// The inner SELECT ... FOR UPDATE SKIP LOCKED plus the conditional
	// claimed_at check makes the claim atomic: two concurrent invocations
	// can never stamp the same row inside the lease window.
	cutoff := time.Now().UTC().Add(-r.lease)

	rows, err := r.pool.Query(ctx, `
		UPDATE notification_queue q
		SET claimed_at = NOW(), worker_id = $1
		WHERE q.id IN (
			SELECT id FROM notification_queue
			WHERE processed = FALSE
			  AND (claimed_at IS NULL OR claimed_at < $2)
			ORDER BY created_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING q.id, q.table_name, q.record_data, q.processed, q.processed_at,
		          q.error_message, q.claimed_at, q.worker_id, q.created_at`,
		workerID, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("claim queue batch: %w", err)
	}
	defer rows.Close()

	items, err := scanQueueItems(rows)
	if err != nil {
		return nil, err
	}

	// RETURNING does not guarantee ordering; restore oldest-first so the
	// dispatcher preserves queue fairness.
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *pgQueueRepository) MarkProcessed(ctx context.Context, id string, errMsg *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_queue
		SET processed = TRUE, processed_at = NOW(), error_message = $1
		WHERE id = $2`, errMsg, id)
	if err != nil {
		return fmt.Errorf("mark queue item processed: %w", err)
	}
	return nil
}

func (r *pgQueueRepository) Stats(ctx context.Context) (*domain.QueueStats, error) {
	var s domain.QueueStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE processed = FALSE),
			COUNT(*) FILTER (WHERE processed = TRUE)
		FROM notification_queue`).Scan(&s.Pending, &s.Processed)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	return &s, nil
}

// ---- helpers ----

func scanQueueItem(row pgx.Row) (*domain.QueueItem, error) {
	var item domain.QueueItem
	err := row.Scan(
		&item.ID, &item.TableName, &item.RecordData, &item.Processed,
		&item.ProcessedAt, &item.ErrorMessage, &item.ClaimedAt,
		&item.WorkerID, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func scanQueueItems(rows pgx.Rows) ([]*domain.QueueItem, error) {
	var result []*domain.QueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
