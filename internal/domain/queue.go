package domain

import (
	"encoding/json"
	"time"
)

// QueueItem is one row of the notification_queue table. Rows are created by
// a database trigger on the source tables; this service only claims them,
// attempts delivery, and marks them processed.
//
// processed=true is terminal: a processed row is never picked up again,
// even when error_message is set. Failed rows are dropped on purpose so a
// poison row cannot block the queue.
type QueueItem struct {
	ID           string          `json:"id"`
	TableName    EventTable      `json:"table_name"`
	RecordData   json.RawMessage `json:"record_data"`
	Processed    bool            `json:"processed"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	ClaimedAt    *time.Time      `json:"claimed_at,omitempty"`
	WorkerID     *string         `json:"worker_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// QueueStats is a point-in-time snapshot of the queue table.
type QueueStats struct {
	Pending   int `json:"pending"`
	Processed int `json:"processed"`
}
