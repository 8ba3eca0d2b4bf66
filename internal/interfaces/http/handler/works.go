package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	worksapp "github.com/maintledger/backend/internal/application/works"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/interfaces/http/middleware"
)

// WorksOperations is the task and budget intake used by WorksHandler
type WorksOperations interface {
	CreateTask(ctx context.Context, caller shared.Caller, req worksapp.CreateTaskRequest) (*worksapp.TaskResponse, error)
	CreateBudgetBase(ctx context.Context, caller shared.Caller, req worksapp.CreateBudgetBaseRequest) (*worksapp.BudgetBaseResponse, error)
	CreateBudgetFinal(ctx context.Context, caller shared.Caller, req worksapp.CreateBudgetFinalRequest) (*worksapp.BudgetFinalResponse, error)
	GetBudgetFinal(ctx context.Context, caller shared.Caller, budgetID uuid.UUID) (*worksapp.BudgetFinalResponse, error)
	SendBudget(ctx context.Context, caller shared.Caller, budgetID uuid.UUID) (*worksapp.BudgetFinalResponse, error)
	ApproveBudget(ctx context.Context, caller shared.Caller, budgetID uuid.UUID) (*worksapp.BudgetFinalResponse, error)
	RejectBudget(ctx context.Context, caller shared.Caller, budgetID uuid.UUID) (*worksapp.BudgetFinalResponse, error)
	RegisterWorker(ctx context.Context, caller shared.Caller, req worksapp.RegisterWorkerRequest) (*worksapp.WorkerResponse, error)
	RecordWorkEntry(ctx context.Context, caller shared.Caller, req worksapp.RecordWorkEntryRequest) (*worksapp.WorkEntryResponse, error)
	RequestReceiptUpload(ctx context.Context, caller shared.Caller, req worksapp.ReceiptUploadRequest) (*worksapp.ReceiptUploadResponse, error)
	RecordExpense(ctx context.Context, caller shared.Caller, req worksapp.RecordExpenseRequest) (*worksapp.ExpenseResponse, error)
}

var _ WorksOperations = (*worksapp.Service)(nil)

// WorksHandler serves tasks, budgets, workers and task costs
type WorksHandler struct {
	BaseHandler
	works WorksOperations
}

// NewWorksHandler creates a new WorksHandler
func NewWorksHandler(works WorksOperations) *WorksHandler {
	return &WorksHandler{works: works}
}

// CreateTask opens a task.
// POST /tasks
func (h *WorksHandler) CreateTask(c *gin.Context) {
	var req worksapp.CreateTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}

	task, err := h.works.CreateTask(c.Request.Context(), middleware.GetCaller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Task created", task)
}

// CreateBudgetBase records a supervisor estimate.
// POST /budgets/base
func (h *WorksHandler) CreateBudgetBase(c *gin.Context) {
	var req worksapp.CreateBudgetBaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	budget, err := h.works.CreateBudgetBase(c.Request.Context(), middleware.GetCaller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Base budget created", budget)
}

// CreateBudgetFinal creates a draft final budget.
// POST /budgets/final
func (h *WorksHandler) CreateBudgetFinal(c *gin.Context) {
	var req worksapp.CreateBudgetFinalRequest
	if !h.BindJSON(c, &req) {
		return
	}

	budget, err := h.works.CreateBudgetFinal(c.Request.Context(), middleware.GetCaller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Final budget created", budget)
}

// GetBudgetFinal returns a final budget with its lines.
// GET /budgets/final/:id
func (h *WorksHandler) GetBudgetFinal(c *gin.Context) {
	budgetID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	budget, err := h.works.GetBudgetFinal(c.Request.Context(), middleware.GetCaller(c), budgetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "", budget)
}

type budgetTransition func(ctx context.Context, caller shared.Caller, budgetID uuid.UUID) (*worksapp.BudgetFinalResponse, error)

func (h *WorksHandler) transition(c *gin.Context, fn budgetTransition, message string) {
	budgetID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	budget, err := fn(c.Request.Context(), middleware.GetCaller(c), budgetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, message, budget)
}

// SendBudget POST /budgets/final/:id/send
func (h *WorksHandler) SendBudget(c *gin.Context) {
	h.transition(c, h.works.SendBudget, "Budget sent")
}

// ApproveBudget POST /budgets/final/:id/approve
func (h *WorksHandler) ApproveBudget(c *gin.Context) {
	h.transition(c, h.works.ApproveBudget, "Budget approved")
}

// RejectBudget POST /budgets/final/:id/reject
func (h *WorksHandler) RejectBudget(c *gin.Context) {
	h.transition(c, h.works.RejectBudget, "Budget rejected")
}

// RegisterWorker adds a worker.
// POST /workers
func (h *WorksHandler) RegisterWorker(c *gin.Context) {
	var req worksapp.RegisterWorkerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	worker, err := h.works.RegisterWorker(c.Request.Context(), middleware.GetCaller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Worker registered", worker)
}

// RecordWorkEntry logs a worker day on a task.
// POST /tasks/:id/work-entries
func (h *WorksHandler) RecordWorkEntry(c *gin.Context) {
	taskID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req worksapp.RecordWorkEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TaskID = taskID

	entry, err := h.works.RecordWorkEntry(c.Request.Context(), middleware.GetCaller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Work entry recorded", entry)
}

// RequestReceiptUpload returns a presigned upload URL for a receipt.
// POST /tasks/:id/receipts
func (h *WorksHandler) RequestReceiptUpload(c *gin.Context) {
	taskID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req worksapp.ReceiptUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TaskID = taskID

	upload, err := h.works.RequestReceiptUpload(c.Request.Context(), middleware.GetCaller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Upload URL issued", upload)
}

// RecordExpense records a real cost of a task.
// POST /tasks/:id/expenses
func (h *WorksHandler) RecordExpense(c *gin.Context) {
	taskID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req worksapp.RecordExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TaskID = taskID

	expense, err := h.works.RecordExpense(c.Request.Context(), middleware.GetCaller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Expense recorded", expense)
}
