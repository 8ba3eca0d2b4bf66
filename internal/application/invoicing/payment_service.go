package invoicing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/invoicing"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PaymentService reconciles payments against the running balance of invoices
type PaymentService struct {
	txScope        TransactionScope
	invoiceRepo    invoicing.InvoiceRepository
	paymentRepo    invoicing.PaymentRepository
	eventPublisher shared.EventPublisher
	metrics        *telemetry.BusinessMetrics
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	txScope TransactionScope,
	invoiceRepo invoicing.InvoiceRepository,
	paymentRepo invoicing.PaymentRepository,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		txScope:     txScope,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *PaymentService) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// RecordPayment registers money received against an invoice. The invoice
// row is locked, the payment inserted and the paid amount, pending balance
// and status recomputed from every persisted payment, all in one
// transaction. A retry carrying an already used request key returns the
// payment recorded the first time.
func (s *PaymentService) RecordPayment(ctx context.Context, caller shared.Caller, req RecordPaymentRequest) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, req.InvoiceID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrActorID, caller.UserID.String(),
	)

	if err := caller.RequireAdmin(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	req.RequestKey = strings.TrimSpace(req.RequestKey)
	if req.RequestKey != "" {
		replayed, err := s.replay(ctx, req)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if replayed != nil {
			telemetry.AddEvent(span, "payment_replayed", "payment_id", replayed.Payment.ID.String())
			return replayed, nil
		}
	}

	var (
		payment *invoicing.Payment
		updated *invoicing.Invoice
		events  []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, req.InvoiceID)
		if err != nil {
			return err
		}

		p, err := inv.RecordPayment(req.Amount, req.Date, caller.UserID, req.OriginalTotal, req.RequestKey)
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().Create(ctx, p); err != nil {
			if errors.Is(err, shared.ErrDuplicateRequest) {
				return err
			}
			return fmt.Errorf("failed to save payment: %w", err)
		}

		if err := s.reconcile(ctx, repos, inv); err != nil {
			return err
		}

		payment = p
		updated = inv
		events = collectEvents(inv)
		return nil
	})
	if err != nil {
		// A concurrent request with the same key won the insert
		if req.RequestKey != "" && errors.Is(err, shared.ErrDuplicateRequest) {
			if replayed, rerr := s.replay(ctx, req); rerr == nil && replayed != nil {
				return replayed, nil
			}
		}
		telemetry.RecordError(span, err)
		s.metrics.RecordPayment(ctx, "", telemetry.PaymentOperationRejected, req.Amount)
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, s.logger, events)
	s.metrics.RecordPayment(ctx, string(payment.Modality), telemetry.PaymentOperationRecorded, payment.Amount)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, payment.ID.String(),
		telemetry.SpanAttrPaymentModality, string(payment.Modality),
		telemetry.SpanAttrInvoiceStatus, updated.Status.String(),
	)
	s.logger.Info("Payment recorded",
		zap.String("invoice_id", updated.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("modality", string(payment.Modality)),
		zap.String("pending_balance", updated.PendingBalance.String()),
	)

	return &PaymentResult{
		Payment: ToPaymentResponse(payment),
		Invoice: ToInvoiceResponse(updated),
	}, nil
}

// replay returns the result of the payment already recorded under the
// request key, or nil when the key is unused. A key reused for another
// invoice is a DUPLICATE_REQUEST.
func (s *PaymentService) replay(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error) {
	existing, err := s.paymentRepo.FindByRequestKey(ctx, req.RequestKey)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up request key: %w", err)
	}
	if existing.InvoiceID != req.InvoiceID {
		return nil, shared.ErrDuplicateRequest.WithMessage("The request key was already used for another invoice")
	}

	inv, err := s.invoiceRepo.FindByID(ctx, existing.InvoiceID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Payment request replayed",
		zap.String("payment_id", existing.ID.String()),
		zap.String("request_key", req.RequestKey),
	)
	return &PaymentResult{
		Payment:  ToPaymentResponse(existing),
		Invoice:  ToInvoiceResponse(inv),
		Replayed: true,
	}, nil
}

// DeletePayment removes a payment and recomputes the invoice from the remaining ones
func (s *PaymentService) DeletePayment(ctx context.Context, caller shared.Caller, paymentID uuid.UUID) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, paymentID.String(),
		telemetry.SpanAttrActorID, caller.UserID.String(),
	)

	if err := caller.RequireAdmin(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		payment *invoicing.Payment
		updated *invoicing.Invoice
		events  []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, p.InvoiceID)
		if err != nil {
			return err
		}
		if err := inv.RemovePayment(p); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Delete(ctx, p.ID); err != nil {
			return err
		}
		if err := s.reconcile(ctx, repos, inv); err != nil {
			return err
		}

		payment = p
		updated = inv
		events = collectEvents(inv)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, s.logger, events)
	s.metrics.RecordPayment(ctx, string(payment.Modality), telemetry.PaymentOperationDeleted, payment.Amount)

	s.logger.Info("Payment deleted",
		zap.String("invoice_id", updated.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("pending_balance", updated.PendingBalance.String()),
	)

	return &PaymentResult{
		Payment: ToPaymentResponse(payment),
		Invoice: ToInvoiceResponse(updated),
	}, nil
}

// reconcile recomputes the invoice header from the persisted payment ledger and saves it
func (s *PaymentService) reconcile(ctx context.Context, repos TransactionalRepositories, inv *invoicing.Invoice) error {
	totals, err := repos.PaymentRepo().Totals(ctx, inv.ID)
	if err != nil {
		return fmt.Errorf("failed to sum payments: %w", err)
	}
	inv.ApplyPaymentTotals(totals.Sum, totals.LastPaymentDate)
	if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	return nil
}

// ListPayments returns the payments of an invoice ordered by date
func (s *PaymentService) ListPayments(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	if _, err := s.invoiceRepo.FindByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return ToPaymentResponses(payments), nil
}
