package works

import (
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BudgetBaseStatus is the status of a supervisor-authored estimate
type BudgetBaseStatus string

const (
	BudgetBaseStatusDraft    BudgetBaseStatus = "borrador"
	BudgetBaseStatusApproved BudgetBaseStatus = "aprobado"
	BudgetBaseStatusRejected BudgetBaseStatus = "rechazado"
)

// IsValid checks if the status is a known BudgetBaseStatus
func (s BudgetBaseStatus) IsValid() bool {
	switch s {
	case BudgetBaseStatusDraft, BudgetBaseStatusApproved, BudgetBaseStatusRejected:
		return true
	}
	return false
}

// BudgetBase is the supervisor's cost estimate for a task. Its total is the
// baseline against which real expenses are measured at settlement time.
type BudgetBase struct {
	shared.BaseAggregateRoot
	TaskID uuid.UUID
	Total  decimal.Decimal
	Status BudgetBaseStatus
}

// NewBudgetBase creates a draft base budget for a task
func NewBudgetBase(taskID uuid.UUID, total decimal.Decimal) (*BudgetBase, error) {
	if taskID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TASK", "Task ID cannot be empty")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Base budget total cannot be negative")
	}
	return &BudgetBase{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TaskID:            taskID,
		Total:             total,
		Status:            BudgetBaseStatusDraft,
	}, nil
}

// Approve marks the base budget approved
func (b *BudgetBase) Approve() error {
	if b.Status == BudgetBaseStatusRejected {
		return shared.ErrInvalidState.WithMessage("A rejected base budget cannot be approved")
	}
	b.Status = BudgetBaseStatusApproved
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}
