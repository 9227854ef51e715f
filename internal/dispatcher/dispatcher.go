package dispatcher

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/prompty/notifier/internal/domain"
	"github.com/prompty/notifier/internal/fcm"
	"github.com/prompty/notifier/internal/mapper"
	"github.com/prompty/notifier/internal/repository"
)

// Hooks carries the metric callback functions injected by main.
// Using a struct keeps the dispatcher constructor signature clean.
type Hooks struct {
	OnItemProcessed func(failed bool)
	OnSent          func()
	OnSendFailed    func(reason domain.FailureReason)
	OnDeactivated   func()
	OnBatch         func(d time.Duration)
}

// Result is the aggregate outcome of one ProcessQueue invocation.
type Result struct {
	TotalItems     int `json:"total_items"`
	ProcessedCount int `json:"processed_count"`
	ErrorCount     int `json:"error_count"`
}

// Dispatcher is the queue consumer: it claims a batch of unprocessed rows,
// maps each to notifications, resolves the recipients' active device tokens,
// and delivers one push per token.
//
// Failure containment, from narrowest scope outward:
//   - a failed send for one token never aborts sibling tokens,
//     notifications, or rows;
//   - a failed row is marked processed with error_message set, so a poison
//     row can never block the queue — its notifications are dropped for good;
//   - only a credential failure (no bearer token) fails the whole invocation.
type Dispatcher struct {
	queue    repository.QueueRepository
	tokens   repository.DeviceTokenRepository
	mapper   *mapper.Mapper
	source   fcm.TokenSource
	sender   fcm.Sender
	limiter  *rate.Limiter
	workerID string
	batch    int
	logger   *zap.Logger
	hooks    Hooks
}

// New constructs a dispatcher. Hook fields are optional (nil = no-op).
func New(
	queue repository.QueueRepository,
	tokens repository.DeviceTokenRepository,
	m *mapper.Mapper,
	source fcm.TokenSource,
	sender fcm.Sender,
	sendRateLimit int,
	batchSize int,
	logger *zap.Logger,
	hooks Hooks,
) *Dispatcher {
	if hooks.OnItemProcessed == nil {
		hooks.OnItemProcessed = func(bool) {}
	}
	if hooks.OnSent == nil {
		hooks.OnSent = func() {}
	}
	if hooks.OnSendFailed == nil {
		hooks.OnSendFailed = func(domain.FailureReason) {}
	}
	if hooks.OnDeactivated == nil {
		hooks.OnDeactivated = func() {}
	}
	if hooks.OnBatch == nil {
		hooks.OnBatch = func(time.Duration) {}
	}

	// burst == rate: no saved-up burst above the configured per-second maximum
	return &Dispatcher{
		queue:    queue,
		tokens:   tokens,
		mapper:   m,
		source:   source,
		sender:   sender,
		limiter:  rate.NewLimiter(rate.Limit(sendRateLimit), sendRateLimit),
		workerID: uuid.New().String(),
		batch:    batchSize,
		logger:   logger,
		hooks:    hooks,
	}
}

// ProcessQueue runs one consumer invocation: claim, map, deliver, mark.
// Returns a non-nil error only when the OAuth2 exchange fails; in that case
// nothing was claimed and no row state changed.
func (d *Dispatcher) ProcessQueue(ctx context.Context) (Result, error) {
	start := time.Now()

	// One bearer token covers the whole batch; its 1h validity window is
	// far longer than any invocation. It is not cached across invocations.
	bearer, err := d.source.Token(ctx)
	if err != nil {
		d.logger.Error("access token exchange failed", zap.Error(err))
		return Result{}, err
	}

	items, err := d.queue.ClaimBatch(ctx, d.workerID, d.batch)
	if err != nil {
		d.logger.Error("queue claim failed", zap.Error(err))
		return Result{}, err
	}

	var res Result
	res.TotalItems = len(items)

	for _, item := range items {
		log := d.logger.With(
			zap.String("queue_item_id", item.ID),
			zap.String("table", string(item.TableName)),
		)

		procErr := d.processItem(ctx, bearer, item, log)

		var errMsg *string
		if procErr != nil {
			msg := procErr.Error()
			errMsg = &msg
			res.ErrorCount++
			log.Warn("queue item failed; dropping its notifications", zap.Error(procErr))
		} else {
			res.ProcessedCount++
		}
		d.hooks.OnItemProcessed(procErr != nil)

		// Terminal either way: a row is never reprocessed once attempted.
		if err := d.queue.MarkProcessed(ctx, item.ID, errMsg); err != nil {
			log.Error("failed to mark queue item processed", zap.Error(err))
		}
	}

	d.hooks.OnBatch(time.Since(start))
	d.logger.Info("queue batch complete",
		zap.Int("total", res.TotalItems),
		zap.Int("processed", res.ProcessedCount),
		zap.Int("errors", res.ErrorCount),
	)
	return res, nil
}

// processItem maps one queue row and delivers its notifications.
// The returned error is row-scoped (bad record, failed lookup); individual
// send failures are contained inside deliver and never propagate here.
func (d *Dispatcher) processItem(ctx context.Context, bearer string, item *domain.QueueItem, log *zap.Logger) error {
	notifications, err := d.mapper.Map(ctx, item.TableName, item.RecordData)
	if err != nil {
		return err
	}
	if len(notifications) == 0 {
		log.Debug("event produced no notifications")
		return nil
	}

	for _, n := range notifications {
		tokens, err := d.tokens.ActiveForUser(ctx, n.RecipientID)
		if err != nil {
			return err
		}
		if len(tokens) == 0 {
			log.Debug("recipient has no active devices", zap.String("recipient_id", n.RecipientID))
			continue
		}

		for _, t := range tokens {
			d.deliver(ctx, bearer, t.Token, n, log)
		}
	}
	return nil
}

// deliver sends one push and applies token hygiene on terminal rejections.
func (d *Dispatcher) deliver(ctx context.Context, bearer, deviceToken string, n domain.Notification, log *zap.Logger) {
	if err := d.limiter.Wait(ctx); err != nil {
		// ctx cancelled while waiting — invocation is shutting down.
		log.Debug("send skipped: rate limiter wait cancelled",
			zap.String("recipient_id", n.RecipientID),
			zap.Error(err),
		)
		return
	}

	msgName, err := d.sender.Send(ctx, bearer, deviceToken, n)
	if err != nil {
		reason := domain.ReasonUnknown
		var de *domain.DeliveryError
		if errors.As(err, &de) {
			reason = de.Reason
		}
		d.hooks.OnSendFailed(reason)
		log.Warn("push send failed",
			zap.String("recipient_id", n.RecipientID),
			zap.String("reason", string(reason)),
			zap.Error(err),
		)

		if reason.DeactivatesToken() {
			if err := d.tokens.Deactivate(ctx, deviceToken); err != nil {
				log.Error("failed to deactivate token", zap.Error(err))
				return
			}
			d.hooks.OnDeactivated()
			log.Info("deactivated dead device token", zap.String("recipient_id", n.RecipientID))
		}
		return
	}

	d.hooks.OnSent()
	log.Debug("push sent",
		zap.String("recipient_id", n.RecipientID),
		zap.String("message_name", msgName),
	)
}
