package dispatcher

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PollWorker invokes the dispatcher on a fixed interval, so queued events
// are delivered even when nothing calls the HTTP trigger endpoint.
//
// Because the queue is DB-backed, rows left unprocessed by a crashed or
// timed-out run are simply picked up by a later tick once their claim
// lease expires.
type PollWorker struct {
	dispatcher *Dispatcher
	interval   time.Duration
	logger     *zap.Logger
}

func NewPollWorker(d *Dispatcher, interval time.Duration, logger *zap.Logger) *PollWorker {
	return &PollWorker{dispatcher: d, interval: interval, logger: logger}
}

// Run ticks every interval and processes one queue batch per tick.
// Stops cleanly when ctx is cancelled.
func (pw *PollWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	pw.logger.Info("queue poll worker started", zap.Duration("interval", pw.interval))

	for {
		select {
		case <-ctx.Done():
			pw.logger.Info("queue poll worker stopping")
			return
		case <-ticker.C:
			if _, err := pw.dispatcher.ProcessQueue(ctx); err != nil {
				pw.logger.Error("queue poll error", zap.Error(err))
			}
		}
	}
}
