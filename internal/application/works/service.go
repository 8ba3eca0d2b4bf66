package works

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/domain/works"
	"github.com/maintledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrReceiptStorageDisabled is returned for receipt uploads when no bucket is configured
var ErrReceiptStorageDisabled = shared.NewDomainError("RECEIPT_STORAGE_DISABLED", "Receipt storage is not configured")

// ReceiptStorage presigns receipt uploads and confirms they happened
type ReceiptStorage interface {
	GenerateUploadURL(ctx context.Context, key, contentType string) (string, time.Time, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// Repositories groups the works repositories
type Repositories struct {
	Tasks       works.TaskRepository
	BudgetBases works.BudgetBaseRepository
	Budgets     works.BudgetFinalRepository
	Workers     works.WorkerRepository
	WorkEntries works.WorkEntryRepository
	Expenses    works.ExpenseRepository
}

// Service handles the intake side of the engine: tasks, budgets and their
// lifecycle, workers, work logs and expenses.
type Service struct {
	txScope        TransactionScope
	repos          Repositories
	receipts       ReceiptStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new works Service
func NewService(txScope TransactionScope, repos Repositories, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{txScope: txScope, repos: repos, logger: logger}
}

// SetReceiptStorage enables receipt uploads
func (s *Service) SetReceiptStorage(storage ReceiptStorage) {
	s.receipts = storage
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateTask opens a pending task assigned to a supervisor
func (s *Service) CreateTask(ctx context.Context, caller shared.Caller, req CreateTaskRequest) (*TaskResponse, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	task, err := works.NewTask(req.Title, req.BuildingRef, req.SupervisorID)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Tasks.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	s.logger.Info("Task created",
		zap.String("task_id", task.ID.String()),
		zap.String("supervisor_id", task.SupervisorID.String()),
	)
	resp := ToTaskResponse(task)
	return &resp, nil
}

// loadTaskFor returns the task when the caller is an admin or its supervisor
func (s *Service) loadTaskFor(ctx context.Context, caller shared.Caller, taskID uuid.UUID) (*works.Task, error) {
	if err := caller.RequireAuthenticated(); err != nil {
		return nil, err
	}
	task, err := s.repos.Tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !task.IsSupervisedBy(caller.UserID) {
		return nil, shared.ErrForbidden.WithMessage("Supervisors can only work on their own tasks")
	}
	return task, nil
}

// CreateBudgetBase records the estimate of a task. Admins and the task's
// supervisor may do so.
func (s *Service) CreateBudgetBase(ctx context.Context, caller shared.Caller, req CreateBudgetBaseRequest) (*BudgetBaseResponse, error) {
	task, err := s.loadTaskFor(ctx, caller, req.TaskID)
	if err != nil {
		return nil, err
	}
	base, err := works.NewBudgetBase(task.ID, req.Total)
	if err != nil {
		return nil, err
	}
	if err := s.repos.BudgetBases.Save(ctx, base); err != nil {
		return nil, fmt.Errorf("failed to save base budget: %w", err)
	}
	resp := ToBudgetBaseResponse(base)
	return &resp, nil
}

// CreateBudgetFinal creates a draft final budget with its lines
func (s *Service) CreateBudgetFinal(ctx context.Context, caller shared.Caller, req CreateBudgetFinalRequest) (*BudgetFinalResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "budget", "create")
	defer span.End()

	if err := caller.RequireAdmin(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.TaskID != nil {
		if _, err := s.repos.Tasks.FindByID(ctx, *req.TaskID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	if req.BudgetBaseID != nil {
		base, err := s.repos.BudgetBases.FindByID(ctx, *req.BudgetBaseID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if req.TaskID != nil && base.TaskID != *req.TaskID {
			err := shared.ErrInvalidInput.WithMessage("The base budget belongs to another task")
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	items := make([]works.BudgetItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = works.BudgetItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			IsMaterial:  it.IsMaterial,
		}
	}

	budget, err := works.NewBudgetFinal(req.Code, req.AdministratorID, req.TaskID, req.BudgetBaseID, items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.repos.Budgets.Save(ctx, budget); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrBudgetID, budget.ID.String())
	s.logger.Info("Final budget created",
		zap.String("budget_final_id", budget.ID.String()),
		zap.String("code", budget.Code),
		zap.Int("items", len(budget.Items)),
	)
	resp := ToBudgetFinalResponse(budget)
	return &resp, nil
}

// SendBudget moves a draft budget to enviado
func (s *Service) SendBudget(ctx context.Context, caller shared.Caller, budgetID uuid.UUID) (*BudgetFinalResponse, error) {
	return s.transition(ctx, caller, budgetID, "send", (*works.BudgetFinal).Send)
}

// ApproveBudget accepts a budget; a pending task linked to it becomes presupuestado
func (s *Service) ApproveBudget(ctx context.Context, caller shared.Caller, budgetID uuid.UUID) (*BudgetFinalResponse, error) {
	return s.transition(ctx, caller, budgetID, "approve", (*works.BudgetFinal).Approve)
}

// RejectBudget closes a budget as rechazado
func (s *Service) RejectBudget(ctx context.Context, caller shared.Caller, budgetID uuid.UUID) (*BudgetFinalResponse, error) {
	return s.transition(ctx, caller, budgetID, "reject", (*works.BudgetFinal).Reject)
}

func (s *Service) transition(
	ctx context.Context,
	caller shared.Caller,
	budgetID uuid.UUID,
	op string,
	apply func(*works.BudgetFinal) error,
) (*BudgetFinalResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "budget", op)
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBudgetID, budgetID.String(),
		telemetry.SpanAttrActorID, caller.UserID.String(),
	)

	if err := caller.RequireAdmin(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		updated *works.BudgetFinal
		events  []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		budget, err := repos.BudgetRepo().FindByIDForUpdate(ctx, budgetID)
		if err != nil {
			return err
		}
		if err := apply(budget); err != nil {
			return err
		}
		if err := repos.BudgetRepo().Save(ctx, budget); err != nil {
			return fmt.Errorf("failed to update budget: %w", err)
		}

		if budget.Approved && budget.TaskID != nil {
			task, err := repos.TaskRepo().FindByIDForUpdate(ctx, *budget.TaskID)
			if err != nil {
				return err
			}
			if task.Status == works.TaskStatusPending {
				task.MarkBudgeted()
				if err := repos.TaskRepo().Save(ctx, task); err != nil {
					return fmt.Errorf("failed to update task: %w", err)
				}
			}
		}

		events = budget.GetDomainEvents()
		budget.ClearDomainEvents()
		updated = budget
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish domain events", zap.Error(err))
		}
	}

	s.logger.Info("Final budget status changed",
		zap.String("budget_final_id", updated.ID.String()),
		zap.String("status", updated.Status.String()),
	)
	resp := ToBudgetFinalResponse(updated)
	return &resp, nil
}

// GetBudgetFinal returns a final budget with its lines
func (s *Service) GetBudgetFinal(ctx context.Context, caller shared.Caller, budgetID uuid.UUID) (*BudgetFinalResponse, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	budget, err := s.repos.Budgets.FindByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	resp := ToBudgetFinalResponse(budget)
	return &resp, nil
}

// RegisterWorker adds a field worker with a daily rate
func (s *Service) RegisterWorker(ctx context.Context, caller shared.Caller, req RegisterWorkerRequest) (*WorkerResponse, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	worker, err := works.NewWorker(req.Name, req.DailyRate)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Workers.Save(ctx, worker); err != nil {
		return nil, fmt.Errorf("failed to save worker: %w", err)
	}
	resp := ToWorkerResponse(worker)
	return &resp, nil
}

// RecordWorkEntry logs a day of a worker on a task
func (s *Service) RecordWorkEntry(ctx context.Context, caller shared.Caller, req RecordWorkEntryRequest) (*WorkEntryResponse, error) {
	task, err := s.loadTaskFor(ctx, caller, req.TaskID)
	if err != nil {
		return nil, err
	}
	worker, err := s.repos.Workers.FindByID(ctx, req.WorkerID)
	if err != nil {
		return nil, err
	}
	if !worker.Active {
		return nil, shared.ErrInvalidState.WithMessage("The worker is not active")
	}

	entry, err := works.NewWorkEntry(task.ID, worker.ID, req.Date, works.DayType(req.DayType))
	if err != nil {
		return nil, err
	}
	if err := s.repos.WorkEntries.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save work entry: %w", err)
	}
	resp := ToWorkEntryResponse(entry)
	return &resp, nil
}

// RequestReceiptUpload issues a receipt key and a presigned URL to upload the file to
func (s *Service) RequestReceiptUpload(ctx context.Context, caller shared.Caller, req ReceiptUploadRequest) (*ReceiptUploadResponse, error) {
	task, err := s.loadTaskFor(ctx, caller, req.TaskID)
	if err != nil {
		return nil, err
	}
	if s.receipts == nil {
		return nil, ErrReceiptStorageDisabled
	}

	key, err := works.NewReceiptKey(task.ID, req.ContentType)
	if err != nil {
		return nil, err
	}
	url, expiresAt, err := s.receipts.GenerateUploadURL(ctx, key, strings.ToLower(strings.TrimSpace(req.ContentType)))
	if err != nil {
		return nil, fmt.Errorf("failed to presign receipt upload: %w", err)
	}
	return &ReceiptUploadResponse{ReceiptKey: key, UploadURL: url, ExpiresAt: expiresAt}, nil
}

// RecordExpense records a real cost of a task. A receipt key must have been
// issued for the same task and, when storage is configured, the file must
// already be uploaded.
func (s *Service) RecordExpense(ctx context.Context, caller shared.Caller, req RecordExpenseRequest) (*ExpenseResponse, error) {
	task, err := s.loadTaskFor(ctx, caller, req.TaskID)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(req.ReceiptKey)
	if key != "" {
		if !works.IsReceiptKeyOf(key, task.ID) {
			return nil, shared.ErrInvalidInput.WithMessage("The receipt key was not issued for this task")
		}
		if s.receipts != nil {
			exists, err := s.receipts.ObjectExists(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("failed to check receipt: %w", err)
			}
			if !exists {
				return nil, works.ErrReceiptNotUploaded
			}
		}
	}

	expense, err := works.NewExpense(task.ID, works.ExpenseCategory(req.Category), req.Amount, req.Description, key)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Expenses.Save(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	s.logger.Info("Expense recorded",
		zap.String("task_id", task.ID.String()),
		zap.String("category", string(expense.Category)),
		zap.String("amount", expense.Amount.String()),
		zap.Bool("has_receipt", expense.ReceiptKey != ""),
	)
	resp := ToExpenseResponse(expense)
	return &resp, nil
}
