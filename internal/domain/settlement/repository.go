package settlement

import (
	"context"

	"github.com/google/uuid"
)

// AdjustmentRepository defines persistence operations for settlement adjustments
type AdjustmentRepository interface {
	Create(ctx context.Context, adjustment *SettlementAdjustment) error
	FindByTask(ctx context.Context, taskID uuid.UUID) ([]SettlementAdjustment, error)
	FindByBudgetFinal(ctx context.Context, budgetFinalID uuid.UUID) ([]SettlementAdjustment, error)
}
