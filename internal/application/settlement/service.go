package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/settlement"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/domain/works"
	"github.com/maintledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReceiptURLSigner issues temporary download links for stored receipts
type ReceiptURLSigner interface {
	GenerateDownloadURL(ctx context.Context, key string) (string, time.Time, error)
}

// Repositories groups the read models a settlement is computed from
type Repositories struct {
	Tasks       works.TaskRepository
	BudgetBases works.BudgetBaseRepository
	Budgets     works.BudgetFinalRepository
	Workers     works.WorkerRepository
	WorkEntries works.WorkEntryRepository
	Expenses    works.ExpenseRepository
	Adjustments settlement.AdjustmentRepository
}

// Service computes task settlements on demand and records manual
// adjustments of the administrator share.
type Service struct {
	repos          Repositories
	receipts       ReceiptURLSigner
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new settlement Service
func NewService(repos Repositories, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repos: repos, logger: logger}
}

// SetReceiptSigner enables receipt download links in settlement breakdowns
func (s *Service) SetReceiptSigner(signer ReceiptURLSigner) {
	s.receipts = signer
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ComputeSettlement returns the settlement breakdown of a task. Supervisors
// may only read tasks they supervise.
func (s *Service) ComputeSettlement(ctx context.Context, caller shared.Caller, taskID uuid.UUID) (*SettlementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "compute")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTaskID, taskID.String(),
		telemetry.SpanAttrActorID, caller.UserID.String(),
		telemetry.SpanAttrActorRole, string(caller.Role),
	)

	if err := caller.RequireAuthenticated(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	task, err := s.repos.Tasks.FindByID(ctx, taskID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !caller.IsAdmin() && !task.IsSupervisedBy(caller.UserID) {
		err := shared.ErrForbidden.WithMessage("Supervisors can only view the settlement of their own tasks")
		telemetry.RecordError(span, err)
		return nil, err
	}

	in, adjustments, err := s.loadInputs(ctx, task.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result, err := settlement.Calculate(in)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToSettlementResponse(result, adjustments)
	s.signReceipts(ctx, result, &resp)

	telemetry.SetAttributes(span, "net_profit", result.NetProfit.String())
	return &resp, nil
}

func (s *Service) loadInputs(ctx context.Context, taskID uuid.UUID) (settlement.Inputs, []settlement.SettlementAdjustment, error) {
	in := settlement.Inputs{TaskID: taskID}

	base, err := s.repos.BudgetBases.FindLatestByTask(ctx, taskID)
	if err != nil {
		return in, nil, err
	}
	in.BudgetBase = base

	if in.Expenses, err = s.repos.Expenses.FindByTask(ctx, taskID); err != nil {
		return in, nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	if in.WorkEntries, err = s.repos.WorkEntries.FindByTask(ctx, taskID); err != nil {
		return in, nil, fmt.Errorf("failed to load work entries: %w", err)
	}

	workerIDs := make([]uuid.UUID, 0, len(in.WorkEntries))
	seen := make(map[uuid.UUID]bool, len(in.WorkEntries))
	for _, e := range in.WorkEntries {
		if !seen[e.WorkerID] {
			seen[e.WorkerID] = true
			workerIDs = append(workerIDs, e.WorkerID)
		}
	}
	in.Workers = make(map[uuid.UUID]works.Worker, len(workerIDs))
	if len(workerIDs) > 0 {
		workers, err := s.repos.Workers.FindByIDs(ctx, workerIDs)
		if err != nil {
			return in, nil, fmt.Errorf("failed to load workers: %w", err)
		}
		for _, w := range workers {
			in.Workers[w.ID] = w
		}
	}

	adjustments, err := s.repos.Adjustments.FindByTask(ctx, taskID)
	if err != nil {
		return in, nil, fmt.Errorf("failed to load settlement adjustments: %w", err)
	}
	in.Adjustments = adjustments
	return in, adjustments, nil
}

// signReceipts fills in download links. A link that cannot be signed is
// left out; the settlement itself is still returned.
func (s *Service) signReceipts(ctx context.Context, result *settlement.Settlement, resp *SettlementResponse) {
	if s.receipts == nil {
		return
	}
	for i, m := range result.Materials {
		if m.ReceiptKey == "" {
			continue
		}
		url, expiresAt, err := s.receipts.GenerateDownloadURL(ctx, m.ReceiptKey)
		if err != nil {
			s.logger.Warn("Failed to sign receipt URL",
				zap.String("expense_id", m.ExpenseID.String()),
				zap.Error(err),
			)
			continue
		}
		resp.Materials[i].ReceiptURL = url
		resp.Materials[i].ReceiptExpiresAt = &expiresAt
	}
}

// RecordSettlementAdjustment adds a signed delta to the administrator share
// of the task linked to a final budget.
func (s *Service) RecordSettlementAdjustment(ctx context.Context, caller shared.Caller, req RecordAdjustmentRequest) (*SettlementAdjustmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "record_adjustment")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBudgetID, req.BudgetFinalID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if err := caller.RequireAdmin(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	budget, err := s.repos.Budgets.FindByID(ctx, req.BudgetFinalID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	adj, err := settlement.NewSettlementAdjustment(budget, req.Amount, req.Note, caller.UserID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.repos.Adjustments.Create(ctx, adj); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save settlement adjustment: %w", err)
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, settlement.NewSettlementAdjustmentRecordedEvent(adj)); err != nil {
			s.logger.Warn("Failed to publish domain events", zap.Error(err))
		}
	}

	s.logger.Info("Settlement adjustment recorded",
		zap.String("budget_final_id", adj.BudgetFinalID.String()),
		zap.String("task_id", adj.TaskID.String()),
		zap.String("amount", adj.Amount.String()),
	)
	resp := ToAdjustmentResponse(adj)
	return &resp, nil
}
