package event

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/maintledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultDedupTTL is how long a delivered event id is remembered
const DefaultDedupTTL = 24 * time.Hour

// DedupStats counts deliveries seen by a DedupHandler
type DedupStats struct {
	Handled    int64
	Duplicates int64
	Failed     int64
}

// DedupHandler skips events whose id was already delivered. The id is
// claimed before the wrapped handler runs and released again if it fails,
// so a redelivery retries the work.
type DedupHandler struct {
	next   shared.EventHandler
	store  shared.IdempotencyStore
	ttl    time.Duration
	logger *zap.Logger

	handled, duplicates, failed atomic.Int64
}

// NewDedupHandler wraps next. A non-positive ttl uses DefaultDedupTTL.
func NewDedupHandler(next shared.EventHandler, store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *DedupHandler {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DedupHandler{next: next, store: store, ttl: ttl, logger: logger}
}

func (h *DedupHandler) EventTypes() []string {
	return h.next.EventTypes()
}

func (h *DedupHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	key := "event:" + e.EventID().String()

	claimed, err := h.store.MarkProcessed(ctx, key, h.ttl)
	switch {
	case err != nil:
		// Deliver anyway when the store is down
		h.logger.Warn("dedup store unavailable", zap.String("event_type", e.EventType()), zap.Error(err))
	case !claimed:
		h.duplicates.Add(1)
		h.logger.Debug("duplicate event skipped", zap.String("event_id", e.EventID().String()))
		return nil
	}

	if err := h.next.Handle(ctx, e); err != nil {
		h.failed.Add(1)
		if claimed {
			if rerr := h.store.Release(ctx, key); rerr != nil {
				h.logger.Warn("failed to release event id", zap.String("key", key), zap.Error(rerr))
			}
		}
		return err
	}
	h.handled.Add(1)
	return nil
}

// Stats returns a snapshot of the counters
func (h *DedupHandler) Stats() DedupStats {
	return DedupStats{
		Handled:    h.handled.Load(),
		Duplicates: h.duplicates.Load(),
		Failed:     h.failed.Load(),
	}
}
