package works

import (
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/works"
	"github.com/shopspring/decimal"
)

// CreateTaskRequest opens a maintenance task for a supervisor
type CreateTaskRequest struct {
	Title        string    `json:"title" binding:"required,min=1,max=200"`
	BuildingRef  string    `json:"building_ref" binding:"max=100"`
	SupervisorID uuid.UUID `json:"supervisor_id" binding:"required"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	BuildingRef  string    `json:"building_ref,omitempty"`
	Status       string    `json:"status"`
	SupervisorID uuid.UUID `json:"supervisor_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateBudgetBaseRequest records the supervisor's estimate of a task
type CreateBudgetBaseRequest struct {
	TaskID uuid.UUID       `json:"task_id" binding:"required"`
	Total  decimal.Decimal `json:"total"`
}

// BudgetBaseResponse represents a base budget in API responses
type BudgetBaseResponse struct {
	ID        uuid.UUID       `json:"id"`
	TaskID    uuid.UUID       `json:"task_id"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// BudgetItemRequest is one line of a new final budget
type BudgetItemRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IsMaterial  bool            `json:"is_material"`
}

// CreateBudgetFinalRequest creates a draft final budget with its lines
type CreateBudgetFinalRequest struct {
	Code            string              `json:"code" binding:"required,max=40"`
	AdministratorID uuid.UUID           `json:"administrator_id" binding:"required"`
	TaskID          *uuid.UUID          `json:"task_id"`
	BudgetBaseID    *uuid.UUID          `json:"budget_base_id"`
	Items           []BudgetItemRequest `json:"items" binding:"dive"`
}

// BudgetItemResponse represents a final budget line
type BudgetItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	IsMaterial  bool            `json:"is_material"`
}

// BudgetFinalResponse represents a final budget in API responses
type BudgetFinalResponse struct {
	ID              uuid.UUID            `json:"id"`
	Code            string               `json:"code"`
	AdministratorID uuid.UUID            `json:"administrator_id"`
	TaskID          *uuid.UUID           `json:"task_id,omitempty"`
	BudgetBaseID    *uuid.UUID           `json:"budget_base_id,omitempty"`
	Total           decimal.Decimal      `json:"total"`
	Status          string               `json:"status"`
	Approved        bool                 `json:"approved"`
	Rejected        bool                 `json:"rejected"`
	CanBeInvoiced   bool                 `json:"can_be_invoiced"`
	Items           []BudgetItemResponse `json:"items"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// RegisterWorkerRequest adds a field worker
type RegisterWorkerRequest struct {
	Name      string          `json:"name" binding:"required,max=120"`
	DailyRate decimal.Decimal `json:"daily_rate" binding:"required"`
}

// WorkerResponse represents a worker in API responses
type WorkerResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	DailyRate decimal.Decimal `json:"daily_rate"`
	Active    bool            `json:"active"`
}

// RecordWorkEntryRequest logs a worker's day on a task
type RecordWorkEntryRequest struct {
	TaskID   uuid.UUID `json:"-"`
	WorkerID uuid.UUID `json:"worker_id" binding:"required"`
	Date     time.Time `json:"date" binding:"required"`
	DayType  string    `json:"day_type" binding:"required,oneof=dia_completo medio_dia"`
}

// WorkEntryResponse represents a work log entry
type WorkEntryResponse struct {
	ID       uuid.UUID `json:"id"`
	TaskID   uuid.UUID `json:"task_id"`
	WorkerID uuid.UUID `json:"worker_id"`
	Date     time.Time `json:"date"`
	DayType  string    `json:"day_type"`
}

// RecordExpenseRequest records a real cost of a task. ReceiptKey is the
// key returned by RequestReceiptUpload once the file was uploaded.
type RecordExpenseRequest struct {
	TaskID      uuid.UUID       `json:"-"`
	Category    string          `json:"category" binding:"required,oneof=materiales otros"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"max=500"`
	ReceiptKey  string          `json:"receipt_key" binding:"max=255"`
}

// ExpenseResponse represents a task expense
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	TaskID      uuid.UUID       `json:"task_id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	ReceiptKey  string          `json:"receipt_key,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ReceiptUploadRequest asks for a presigned upload of a receipt
type ReceiptUploadRequest struct {
	TaskID      uuid.UUID `json:"-"`
	ContentType string    `json:"content_type" binding:"required"`
}

// ReceiptUploadResponse carries where and until when a receipt can be uploaded
type ReceiptUploadResponse struct {
	ReceiptKey string    `json:"receipt_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ToTaskResponse converts a task
func ToTaskResponse(t *works.Task) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		BuildingRef:  t.BuildingRef,
		Status:       t.Status.String(),
		SupervisorID: t.SupervisorID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// ToBudgetBaseResponse converts a base budget
func ToBudgetBaseResponse(b *works.BudgetBase) BudgetBaseResponse {
	return BudgetBaseResponse{
		ID:        b.ID,
		TaskID:    b.TaskID,
		Total:     b.Total,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
	}
}

// ToBudgetFinalResponse converts a final budget with its lines
func ToBudgetFinalResponse(b *works.BudgetFinal) BudgetFinalResponse {
	resp := BudgetFinalResponse{
		ID:              b.ID,
		Code:            b.Code,
		AdministratorID: b.AdministratorID,
		TaskID:          b.TaskID,
		BudgetBaseID:    b.BudgetBaseID,
		Total:           b.Total,
		Status:          b.Status.String(),
		Approved:        b.Approved,
		Rejected:        b.Rejected,
		CanBeInvoiced:   b.CanBeInvoiced(),
		Items:           make([]BudgetItemResponse, len(b.Items)),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	for i, item := range b.Items {
		resp.Items[i] = BudgetItemResponse{
			ID:          item.ID,
			Position:    item.Position,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
			IsMaterial:  item.IsMaterial,
		}
	}
	return resp
}

// ToWorkerResponse converts a worker
func ToWorkerResponse(w *works.Worker) WorkerResponse {
	return WorkerResponse{ID: w.ID, Name: w.Name, DailyRate: w.DailyRate, Active: w.Active}
}

// ToWorkEntryResponse converts a work entry
func ToWorkEntryResponse(e *works.WorkEntry) WorkEntryResponse {
	return WorkEntryResponse{
		ID:       e.ID,
		TaskID:   e.TaskID,
		WorkerID: e.WorkerID,
		Date:     e.Date,
		DayType:  string(e.DayType),
	}
}

// ToExpenseResponse converts an expense
func ToExpenseResponse(e *works.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		TaskID:      e.TaskID,
		Category:    string(e.Category),
		Amount:      e.Amount,
		Description: e.Description,
		ReceiptKey:  e.ReceiptKey,
		CreatedAt:   e.CreatedAt,
	}
}
