package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/invoicing"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/domain/works"
	"github.com/maintledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InvoiceService converts approved budgets into invoices and keeps the
// budget and task in sync when an invoice is deleted.
type InvoiceService struct {
	txScope        TransactionScope
	invoiceRepo    invoicing.InvoiceRepository
	eventPublisher shared.EventPublisher
	metrics        *telemetry.BusinessMetrics
	logger         *zap.Logger
	dueDays        int
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(txScope TransactionScope, invoiceRepo invoicing.InvoiceRepository, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		txScope:     txScope,
		invoiceRepo: invoiceRepo,
		logger:      logger,
		dueDays:     invoicing.DefaultDueDays,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *InvoiceService) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// SetDueDays overrides the payment term of new invoices
func (s *InvoiceService) SetDueDays(days int) {
	if days > 0 {
		s.dueDays = days
	}
}

// CreateInvoices converts a final budget into its regular and materials
// invoices. The budget row is locked for the whole conversion, so two
// concurrent conversions of the same budget serialize and the second one
// fails with ALREADY_INVOICED.
func (s *InvoiceService) CreateInvoices(ctx context.Context, caller shared.Caller, budgetFinalID uuid.UUID) (*CreateInvoicesResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create_from_budget")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBudgetID, budgetFinalID.String(),
		telemetry.SpanAttrActorID, caller.UserID.String(),
		telemetry.SpanAttrActorRole, string(caller.Role),
	)

	if err := caller.RequireAdmin(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		created []*invoicing.Invoice
		events  []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		budget, err := repos.BudgetRepo().FindByIDForUpdate(ctx, budgetFinalID)
		if err != nil {
			return err
		}

		existing, err := repos.InvoiceRepo().CountByBudgetFinal(ctx, budget.ID)
		if err != nil {
			return fmt.Errorf("failed to count budget invoices: %w", err)
		}
		if existing > 0 {
			return invoicing.ErrAlreadyInvoiced
		}

		split, err := invoicing.SplitBudget(budget.Items)
		if err != nil {
			return err
		}
		groups := split.Groups()
		if len(groups) == 0 {
			return invoicing.ErrNoInvoiceableItems
		}

		if err := budget.MarkInvoiced(); err != nil {
			return err
		}

		issuedAt := time.Now()
		created = make([]*invoicing.Invoice, 0, len(groups))
		for _, group := range groups {
			inv, err := invoicing.NewInvoiceFromBudget(budget, group, issuedAt, s.dueDays)
			if err != nil {
				return err
			}
			if err := repos.InvoiceRepo().Create(ctx, inv); err != nil {
				return fmt.Errorf("failed to create %s invoice: %w", group.Kind, err)
			}
			created = append(created, inv)
		}

		if err := repos.BudgetRepo().Save(ctx, budget); err != nil {
			return fmt.Errorf("failed to update budget: %w", err)
		}

		var task *works.Task
		if budget.TaskID != nil {
			task, err = repos.TaskRepo().FindByIDForUpdate(ctx, *budget.TaskID)
			if err != nil {
				return err
			}
			if task.MarkInvoiced() {
				if err := repos.TaskRepo().Save(ctx, task); err != nil {
					return fmt.Errorf("failed to update task: %w", err)
				}
			}
		}

		for _, inv := range created {
			events = append(events, collectEvents(inv)...)
		}
		events = append(events, collectEvents(budget)...)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, s.logger, events)

	result := &CreateInvoicesResult{
		BudgetFinalID: budgetFinalID,
		InvoiceIDs:    make([]uuid.UUID, len(created)),
		Invoices:      make([]InvoiceResponse, len(created)),
	}
	for i, inv := range created {
		result.InvoiceIDs[i] = inv.ID
		result.Invoices[i] = ToInvoiceResponse(inv)
		s.metrics.RecordInvoiceCreated(ctx, inv.AdministratorID, string(inv.Kind), inv.Total)
	}

	telemetry.AddEvent(span, "invoices_created", "count", len(created))
	s.logger.Info("Budget converted to invoices",
		zap.String("budget_final_id", budgetFinalID.String()),
		zap.Int("invoices", len(created)),
		zap.String("actor_id", caller.UserID.String()),
	)
	return result, nil
}

// DeleteInvoice removes an invoice without payments together with its lines
// and their margin adjustments. When it was the last invoice of its budget,
// the budget returns to presupuestado without approval and its task to
// presupuestado.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) (*DeleteInvoiceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "delete")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, invoiceID.String(),
		telemetry.SpanAttrActorID, caller.UserID.String(),
	)

	if err := caller.RequireAdmin(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &DeleteInvoiceResult{InvoiceID: invoiceID}
	var (
		deleted *invoicing.Invoice
		events  []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}

		// Lock the budget before the invoice, in the same order as CreateInvoices.
		var budget *works.BudgetFinal
		if inv.BudgetFinalID != nil {
			budget, err = repos.BudgetRepo().FindByIDForUpdate(ctx, *inv.BudgetFinalID)
			if err != nil {
				return err
			}
		}
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		payments, err := repos.PaymentRepo().CountByInvoice(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("failed to count payments: %w", err)
		}
		if payments > 0 {
			return invoicing.ErrHasPayments
		}

		if _, err := repos.AdjustmentRepo().DeleteByInvoiceItems(ctx, inv.ItemIDs()); err != nil {
			return fmt.Errorf("failed to delete margin adjustments: %w", err)
		}
		if err := repos.InvoiceRepo().DeleteItems(ctx, inv.ID); err != nil {
			return fmt.Errorf("failed to delete invoice items: %w", err)
		}
		if err := repos.InvoiceRepo().Delete(ctx, inv.ID); err != nil {
			return err
		}

		if budget != nil {
			result.BudgetFinalID = &budget.ID
			remaining, err := repos.InvoiceRepo().CountByBudgetFinal(ctx, budget.ID)
			if err != nil {
				return fmt.Errorf("failed to count budget invoices: %w", err)
			}
			if remaining == 0 {
				budget.RollbackInvoicing()
				if err := repos.BudgetRepo().Save(ctx, budget); err != nil {
					return fmt.Errorf("failed to roll back budget: %w", err)
				}
				result.BudgetRolledBack = true

				if budget.TaskID != nil {
					task, err := repos.TaskRepo().FindByIDForUpdate(ctx, *budget.TaskID)
					if err != nil {
						return err
					}
					task.RollbackToBudgeted()
					if err := repos.TaskRepo().Save(ctx, task); err != nil {
						return fmt.Errorf("failed to roll back task: %w", err)
					}
					result.TaskRolledBack = true
				}
			}
			events = append(events, collectEvents(budget)...)
		}

		inv.MarkDeleted(result.BudgetRolledBack)
		events = append(collectEvents(inv), events...)
		deleted = inv
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, s.logger, events)
	s.metrics.RecordInvoiceDeleted(ctx, deleted.AdministratorID, result.BudgetRolledBack)

	s.logger.Info("Invoice deleted",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("number", deleted.Number),
		zap.Bool("budget_rolled_back", result.BudgetRolledBack),
	)
	return result, nil
}

// GetByID returns an invoice with its lines
func (s *InvoiceService) GetByID(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// List returns a page of invoices and the total match count
func (s *InvoiceService) List(ctx context.Context, caller shared.Caller, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, 0, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := invoicing.InvoiceFilter{
		AdministratorID: filter.AdministratorID,
		BudgetFinalID:   filter.BudgetFinalID,
		OrderBy:         filter.OrderBy,
		OrderDir:        filter.OrderDir,
		Page:            filter.Page,
		PageSize:        filter.PageSize,
	}
	if filter.Status != nil {
		status := invoicing.InvoiceStatus(*filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Unknown invoice status %d", *filter.Status))
		}
		domainFilter.Status = &status
	}

	invoices, total, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	return ToInvoiceResponses(invoices), total, nil
}
