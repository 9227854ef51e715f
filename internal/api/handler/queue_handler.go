package handler

import (
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/prompty/notifier/internal/api/middleware"
	"github.com/prompty/notifier/internal/dispatcher"
	"github.com/prompty/notifier/internal/repository"
)

// QueueHandler exposes the queue consumer over HTTP: a manual processing
// trigger (for schedulers/cron) and a stats snapshot.
type QueueHandler struct {
	dispatcher *dispatcher.Dispatcher
	queue      repository.QueueRepository
	logger     *zap.Logger
}

func NewQueueHandler(d *dispatcher.Dispatcher, queue repository.QueueRepository, logger *zap.Logger) *QueueHandler {
	return &QueueHandler{dispatcher: d, queue: queue, logger: logger}
}

// Process handles POST /api/v1/queue/process
//
// Runs one consumer invocation and returns the aggregate counts.
// Only a credential failure produces a non-200 response; per-row and
// per-token failures are contained and reflected in error_count.
//
// @Summary  Process one batch of queued notification events
// @Tags     queue
// @Produce  json
// @Success  200  {object}  dispatcher.Result
// @Failure  500  {object}  map[string]string
// @Router   /api/v1/queue/process [post]
func (h *QueueHandler) Process(w http.ResponseWriter, r *http.Request) {
	res, err := h.dispatcher.ProcessQueue(r.Context())
	if err != nil {
		h.logger.Error("queue processing failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Stats handles GET /api/v1/queue/stats
//
// @Summary  Queue depth snapshot
// @Tags     queue
// @Produce  json
// @Success  200  {object}  domain.QueueStats
// @Router   /api/v1/queue/stats [get]
func (h *QueueHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queue.Stats(r.Context())
	if err != nil {
		h.logger.Error("queue stats failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to read queue stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
