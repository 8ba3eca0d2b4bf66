package invoicing

import (
	"context"

	"github.com/maintledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// collectEvents drains the pending events of the given aggregates
func collectEvents(aggregates ...shared.EventSource) []shared.DomainEvent {
	var events []shared.DomainEvent
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	return events
}

// publishEvents hands committed events to the publisher. Delivery failures
// are logged and never fail the operation that produced them.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events []shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}
