package event

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/invoicing"
	"github.com/maintledger/backend/internal/domain/settlement"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/domain/works"
	"go.uber.org/zap"
)

// PathNotifier accepts resource paths whose cached views must be refreshed
type PathNotifier interface {
	Enqueue(paths []string)
}

// RevalidationHandler turns committed domain events into revalidation requests
type RevalidationHandler struct {
	notifier PathNotifier
	logger   *zap.Logger
}

// NewRevalidationHandler creates a new RevalidationHandler
func NewRevalidationHandler(notifier PathNotifier, logger *zap.Logger) *RevalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevalidationHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *RevalidationHandler) EventTypes() []string {
	return []string{
		invoicing.EventTypeInvoiceCreated,
		invoicing.EventTypeInvoiceDeleted,
		invoicing.EventTypePaymentRecorded,
		invoicing.EventTypePaymentDeleted,
		invoicing.EventTypeAdjustmentsApproved,
		invoicing.EventTypeAdjustmentsPaid,
		works.EventTypeBudgetFinalStatusChanged,
		settlement.EventTypeSettlementAdjustmentRecorded,
	}
}

// Handle enqueues the paths affected by the event. Delivery happens in the
// background so a slow webhook never delays the request that caused it.
func (h *RevalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paths := PathsFor(event)
	if len(paths) == 0 {
		h.logger.Debug("no revalidation paths for event",
			zap.String("event_type", event.EventType()),
		)
		return nil
	}
	h.notifier.Enqueue(paths)
	return nil
}

// PathsFor maps an event to the API resource paths whose content it changed.
// The result is sorted and free of duplicates.
func PathsFor(event shared.DomainEvent) []string {
	set := make(map[string]struct{})
	add := func(paths ...string) {
		for _, p := range paths {
			set[p] = struct{}{}
		}
	}
	budget := func(id *uuid.UUID) {
		if id != nil {
			add("/budgets/final/" + id.String())
		}
	}

	switch e := event.(type) {
	case *invoicing.InvoiceCreatedEvent:
		add("/invoices", invoicePath(e.InvoiceID))
		budget(e.BudgetFinalID)
	case *invoicing.InvoiceDeletedEvent:
		add("/invoices", invoicePath(e.InvoiceID))
		budget(e.BudgetFinalID)
	case *invoicing.PaymentRecordedEvent:
		add("/invoices", invoicePath(e.InvoiceID), invoicePath(e.InvoiceID)+"/payments")
	case *invoicing.PaymentDeletedEvent:
		add("/invoices", invoicePath(e.InvoiceID), invoicePath(e.InvoiceID)+"/payments")
	case *invoicing.AdjustmentsApprovedEvent:
		add(invoicePath(e.InvoiceID), invoicePath(e.InvoiceID)+"/adjustments")
	case *invoicing.AdjustmentsPaidEvent:
		add("/administrators/" + e.AdministratorID.String() + "/adjustments/pending")
	case *works.BudgetFinalStatusChangedEvent:
		budget(&e.BudgetFinalID)
		if e.TaskID != nil {
			add(taskPath(*e.TaskID))
		}
	case *settlement.SettlementAdjustmentRecordedEvent:
		budget(&e.BudgetFinalID)
		add(taskPath(e.TaskID), taskPath(e.TaskID)+"/settlement")
	}

	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func invoicePath(id uuid.UUID) string {
	return "/invoices/" + id.String()
}

func taskPath(id uuid.UUID) string {
	return "/tasks/" + id.String()
}

var _ shared.EventHandler = (*RevalidationHandler)(nil)
