package settlement

import (
	"strings"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/domain/works"
	"github.com/shopspring/decimal"
)

// ErrBudgetWithoutTask is returned when a settlement adjustment targets a budget with no task
var ErrBudgetWithoutTask = shared.NewDomainError("BUDGET_WITHOUT_TASK", "The budget is not linked to a task and cannot be settled")

// SettlementAdjustment is a manual, signed delta added to the administrator's
// share of a task settlement. It is recorded against a final budget and has
// nothing to do with invoice margin adjustments.
type SettlementAdjustment struct {
	shared.BaseEntity
	BudgetFinalID uuid.UUID
	TaskID        uuid.UUID
	Amount        decimal.Decimal
	Note          string
	CreatedBy     uuid.UUID
}

// NewSettlementAdjustment records an adjustment for the task of the budget
func NewSettlementAdjustment(budget *works.BudgetFinal, amount decimal.Decimal, note string, createdBy uuid.UUID) (*SettlementAdjustment, error) {
	if budget == nil {
		return nil, shared.ErrInvalidInput.WithMessage("Budget is required")
	}
	if budget.TaskID == nil {
		return nil, ErrBudgetWithoutTask
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Adjustment amount cannot be zero")
	}
	if createdBy == uuid.Nil {
		return nil, shared.ErrUnauthorized.WithMessage("The adjustment author is required")
	}
	return &SettlementAdjustment{
		BaseEntity:    shared.NewBaseEntity(),
		BudgetFinalID: budget.ID,
		TaskID:        *budget.TaskID,
		Amount:        amount,
		Note:          strings.TrimSpace(note),
		CreatedBy:     createdBy,
	}, nil
}
