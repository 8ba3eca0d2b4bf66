package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/invoicing"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AdjustmentService runs the approve/pay workflow of confidential margin adjustments
type AdjustmentService struct {
	txScope        TransactionScope
	invoiceRepo    invoicing.InvoiceRepository
	adjustmentRepo invoicing.MarginAdjustmentRepository
	payoutRepo     invoicing.AdjustmentPayoutRepository
	eventPublisher shared.EventPublisher
	metrics        *telemetry.BusinessMetrics
	logger         *zap.Logger
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(
	txScope TransactionScope,
	invoiceRepo invoicing.InvoiceRepository,
	adjustmentRepo invoicing.MarginAdjustmentRepository,
	payoutRepo invoicing.AdjustmentPayoutRepository,
	logger *zap.Logger,
) *AdjustmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdjustmentService{
		txScope:        txScope,
		invoiceRepo:    invoiceRepo,
		adjustmentRepo: adjustmentRepo,
		payoutRepo:     payoutRepo,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *AdjustmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *AdjustmentService) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// RegisterAdjustment adds a pending margin adjustment to an invoice line.
// Any previous approval of the invoice's adjustments is cleared.
func (s *AdjustmentService) RegisterAdjustment(ctx context.Context, caller shared.Caller, req RegisterAdjustmentRequest) (*AdjustmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "adjustment", "register")
	defer span.End()

	telemetry.SetAttributes(span,
		"invoice_item_id", req.InvoiceItemID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if err := caller.RequireAdmin(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var adjustment *invoicing.MarginAdjustment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		owner, err := repos.InvoiceRepo().FindByItemID(ctx, req.InvoiceItemID)
		if err != nil {
			return err
		}
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, owner.ID)
		if err != nil {
			return err
		}

		adj, err := invoicing.NewMarginAdjustment(inv, req.InvoiceItemID, req.Amount, req.Note)
		if err != nil {
			return err
		}
		if err := repos.AdjustmentRepo().Create(ctx, adj); err != nil {
			return fmt.Errorf("failed to save adjustment: %w", err)
		}
		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		adjustment = adj
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrAdjustmentID, adjustment.ID.String(),
		telemetry.SpanAttrInvoiceID, adjustment.InvoiceID.String(),
	)
	resp := ToAdjustmentResponse(adjustment)
	return &resp, nil
}

// ApproveAdjustments approves every margin adjustment of an invoice
func (s *AdjustmentService) ApproveAdjustments(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) (*ApproveAdjustmentsResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "adjustment", "approve")
	defer span.End()

	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceID, invoiceID.String())

	if err := caller.RequireAdmin(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &ApproveAdjustmentsResult{InvoiceID: invoiceID}
	var events []shared.DomainEvent
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		count, err := repos.AdjustmentRepo().CountByInvoice(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("failed to count adjustments: %w", err)
		}
		if count == 0 {
			return invoicing.ErrNoAdjustments
		}

		approvedAt := time.Now()
		approved, err := repos.AdjustmentRepo().ApproveByInvoice(ctx, inv.ID, approvedAt)
		if err != nil {
			return fmt.Errorf("failed to approve adjustments: %w", err)
		}

		inv.MarkAdjustmentsApproved(approved, approvedAt)
		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}

		result.Approved = approved
		events = collectEvents(inv)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, s.logger, events)
	s.logger.Info("Margin adjustments approved",
		zap.String("invoice_id", invoiceID.String()),
		zap.Int64("approved", result.Approved),
	)
	return result, nil
}

// PayAdjustment pays out a single approved adjustment
func (s *AdjustmentService) PayAdjustment(ctx context.Context, caller shared.Caller, adjustmentID uuid.UUID) (*PayoutResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "adjustment", "pay")
	defer span.End()

	telemetry.SetAttributes(span, telemetry.SpanAttrAdjustmentID, adjustmentID.String())

	if err := caller.RequireAdmin(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var payout *invoicing.AdjustmentPayout
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		adj, err := repos.AdjustmentRepo().FindByIDForUpdate(ctx, adjustmentID)
		if err != nil {
			return err
		}
		inv, err := repos.InvoiceRepo().FindByID(ctx, adj.InvoiceID)
		if err != nil {
			return err
		}

		p, err := invoicing.NewAdjustmentPayout(inv.AdministratorID, caller.UserID, []invoicing.MarginAdjustment{*adj}, time.Now())
		if err != nil {
			return err
		}
		if err := s.settle(ctx, repos, p); err != nil {
			return err
		}
		payout = p
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.afterPayout(ctx, payout)
	result := ToPayoutResult(payout)
	return &result, nil
}

// PaySettledAdjustments pays out, in one payout, every approved and unpaid
// adjustment on invoices of the administrator.
func (s *AdjustmentService) PaySettledAdjustments(ctx context.Context, caller shared.Caller, administratorID uuid.UUID) (*PayoutResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "adjustment", "pay_settled")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrAdministratorID, administratorID.String(),
		telemetry.SpanAttrActorID, caller.UserID.String(),
	)

	if err := caller.RequireAdmin(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var payout *invoicing.AdjustmentPayout
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		settled, err := repos.AdjustmentRepo().FindSettledUnpaidForUpdate(ctx, administratorID)
		if err != nil {
			return fmt.Errorf("failed to load settled adjustments: %w", err)
		}

		p, err := invoicing.NewAdjustmentPayout(administratorID, caller.UserID, settled, time.Now())
		if err != nil {
			return err
		}
		if err := s.settle(ctx, repos, p); err != nil {
			return err
		}
		payout = p
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.afterPayout(ctx, payout)
	result := ToPayoutResult(payout)
	return &result, nil
}

// settle flags the payout's adjustments paid and stores the receipt. A row
// count mismatch means another payout got there first.
func (s *AdjustmentService) settle(ctx context.Context, repos TransactionalRepositories, payout *invoicing.AdjustmentPayout) error {
	paid, err := repos.AdjustmentRepo().MarkPaid(ctx, payout.AdjustmentIDs, payout.PaidAt)
	if err != nil {
		return fmt.Errorf("failed to mark adjustments paid: %w", err)
	}
	if paid != int64(len(payout.AdjustmentIDs)) {
		return shared.ErrConcurrencyConflict.WithMessage("Some adjustments were paid by another request; retry")
	}
	if err := repos.PayoutRepo().Create(ctx, payout); err != nil {
		return fmt.Errorf("failed to save payout: %w", err)
	}
	return nil
}

func (s *AdjustmentService) afterPayout(ctx context.Context, payout *invoicing.AdjustmentPayout) {
	publishEvents(ctx, s.eventPublisher, s.logger, collectEvents(payout))
	s.metrics.RecordAdjustmentsPaid(ctx, payout.AdministratorID, payout.Count, payout.Total)
	s.logger.Info("Margin adjustments paid",
		zap.String("administrator_id", payout.AdministratorID.String()),
		zap.String("payout_id", payout.ID.String()),
		zap.Int("count", payout.Count),
		zap.String("total", payout.Total.String()),
		zap.Int("invoices", payout.InvoiceCount),
	)
}

// ListPendingAdjustments returns the approved adjustments still owed to the administrator
func (s *AdjustmentService) ListPendingAdjustments(ctx context.Context, caller shared.Caller, administratorID uuid.UUID) ([]AdjustmentResponse, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	adjustments, err := s.adjustmentRepo.FindSettledUnpaid(ctx, administratorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending adjustments: %w", err)
	}
	return ToAdjustmentResponses(adjustments), nil
}

// ListInvoiceAdjustments returns every adjustment of an invoice
func (s *AdjustmentService) ListInvoiceAdjustments(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) ([]AdjustmentResponse, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	if _, err := s.invoiceRepo.FindByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	adjustments, err := s.adjustmentRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}
	return ToAdjustmentResponses(adjustments), nil
}

// ListPayouts returns the payout receipts of an administrator, newest first
func (s *AdjustmentService) ListPayouts(ctx context.Context, caller shared.Caller, administratorID uuid.UUID) ([]PayoutResult, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	payouts, err := s.payoutRepo.FindByAdministrator(ctx, administratorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	return ToPayoutResults(payouts), nil
}
